package schedule

import (
	"fmt"
	"time"
)

// Week returns exactly 7 consecutive days covering the week that contains
// anchor, starting on g.WeekStart. Month and year boundaries inside the
// window are handled by plain calendar arithmetic.
func (g Generator) Week(anchor string, appts []Appointment, now time.Time) ([]DailyAppointments, error) {
	day, err := ParseDate(anchor, g.location())
	if err != nil {
		return nil, fmt.Errorf("invalid anchor date %q: %w", anchor, err)
	}
	start := g.WeekStartOf(day)

	week := make([]DailyAppointments, 0, 7)
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i).Format(DateLayout)
		slots, err := g.Day(date, appts, now)
		if err != nil {
			return nil, err
		}
		week = append(week, DailyAppointments{Date: date, Slots: slots})
	}
	return week, nil
}

// WeekStartOf returns the first day of the week containing t.
func (g Generator) WeekStartOf(t time.Time) time.Time {
	back := int(t.Weekday()-g.WeekStart+7) % 7
	t = t.AddDate(0, 0, -back)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, g.location())
}
