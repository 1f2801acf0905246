package schedule

import (
	"fmt"
	"time"
)

// MonthDay is one cell of a month grid. Cells outside the anchor month
// pad the grid to whole weeks; their appointments are still listed.
type MonthDay struct {
	Day          int           `json:"day"`
	Date         string        `json:"date"`
	InMonth      bool          `json:"inMonth"`
	IsToday      bool          `json:"isToday"`
	Appointments []Appointment `json:"appointments"`
}

// Month returns the month grid for the month containing anchor: every day
// from the week start before the 1st through the week end after the last
// day, so the cell count is always a multiple of 7.
func (g Generator) Month(anchor string, appts []Appointment, now time.Time) ([]MonthDay, error) {
	parsed, err := ParseDate(anchor, g.location())
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", anchor, err)
	}

	start, end := g.MonthBounds(parsed)
	month := parsed.Month()

	byDate := make(map[string][]Appointment, len(appts))
	for _, appt := range appts {
		date := NormalizeDate(appt.Date)
		byDate[date] = append(byDate[date], appt)
	}

	today := now.In(g.location()).Format(DateLayout)
	var cells []MonthDay
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format(DateLayout)
		cells = append(cells, MonthDay{
			Day:          day.Day(),
			Date:         date,
			InMonth:      day.Month() == month,
			IsToday:      date == today,
			Appointments: byDate[date],
		})
	}
	return cells, nil
}

// MonthBounds returns the first and last day of the padded month grid
// containing t: the week start on or before the 1st and the week end on
// or after the month's last day.
func (g Generator) MonthBounds(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, g.location())
	last := first.AddDate(0, 1, -1)
	return g.WeekStartOf(first), g.WeekStartOf(last).AddDate(0, 0, 6)
}
