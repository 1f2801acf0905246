package schedule

import (
	"fmt"
	"time"
)

// Generator computes slot grids. The zero value uses a Sunday week start
// and UTC.
type Generator struct {
	WeekStart time.Weekday
	Location  *time.Location
}

func (g Generator) location() *time.Location {
	if g.Location == nil {
		return time.UTC
	}
	return g.Location
}

// Day returns the full ordered slot grid for one date. Occupancy is derived
// from appointments by exact (date, time) equality; past/future status is
// computed against now and must be recomputed by callers on each render.
func (g Generator) Day(date string, appts []Appointment, now time.Time) ([]Slot, error) {
	day, err := ParseDate(date, g.location())
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	occupied := occupancyFor(NormalizeDate(date), appts)

	slots := make([]Slot, 0, SlotsPerDay)
	for hour := OpeningHour; hour < ClosingHour; hour++ {
		for _, minute := range [2]int{0, 30} {
			label := fmt.Sprintf("%02d:%02d", hour, minute)
			instant := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, g.location())

			slot := Slot{
				Time:          label,
				IsPast:        instant.Before(now),
				AppointmentID: occupied[label],
			}
			slot.IsAvailable = slot.AppointmentID == ""
			slot.IsFree = slot.IsAvailable && !slot.IsPast
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

// Availability returns the public booking projection: for each of days
// consecutive dates starting at from, the times still free and not past.
func (g Generator) Availability(from string, days int, appts []Appointment, now time.Time) ([]DayAvailability, error) {
	start, err := ParseDate(from, g.location())
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", from, err)
	}

	out := make([]DayAvailability, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		date := day.Format(DateLayout)
		grid, err := g.Day(date, appts, now)
		if err != nil {
			return nil, err
		}
		open := make([]string, 0, len(grid))
		for _, slot := range grid {
			if slot.IsFree {
				open = append(open, slot.Time)
			}
		}
		out = append(out, DayAvailability{Day: day.Day(), Date: date, Slots: open})
	}
	return out, nil
}

// SlotInstant resolves a (date, time) pair to the moment the slot begins.
func (g Generator) SlotInstant(date, timeOfDay string) (time.Time, error) {
	day, err := ParseDate(date, g.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	clockTime, err := time.Parse(TimeLayout, timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", timeOfDay, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clockTime.Hour(), clockTime.Minute(), 0, 0, g.location()), nil
}

// occupancyFor maps grid times to appointment ids for one date. When
// upstream data carries two bookings for the same slot the first one wins;
// duplicates remain an upstream error.
func occupancyFor(date string, appts []Appointment) map[string]string {
	occupied := make(map[string]string, len(appts))
	for _, appt := range appts {
		if NormalizeDate(appt.Date) != date {
			continue
		}
		if _, taken := occupied[appt.Time]; taken {
			continue
		}
		occupied[appt.Time] = appt.ID
	}
	return occupied
}
