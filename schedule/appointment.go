// Package schedule holds the booking domain model and the slot-grid
// computation shared by the scheduler service and its clients.
package schedule

import (
	"strings"
	"time"
)

const (
	// Business hours and slot width are policy constants, not store data.
	OpeningHour  = 8
	ClosingHour  = 18
	SlotInterval = 30 * time.Minute

	// SlotsPerDay is the size of a full daily grid: 08:00 through 17:30.
	SlotsPerDay = (ClosingHour - OpeningHour) * 2

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment is one confirmed booking occupying a (date, time) slot.
// The store assigns the id; a booking is never rescheduled in place,
// changing it is cancel + recreate.
type Appointment struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	CPF   string `json:"cpf,omitempty"`
}

// Slot is one bookable 30-minute unit of a business day.
type Slot struct {
	Time          string `json:"time"`
	IsAvailable   bool   `json:"isAvailable"`
	IsPast        bool   `json:"isPast"`
	IsFree        bool   `json:"isFree"`
	AppointmentID string `json:"appointmentId,omitempty"`
}

// DailyAppointments is a day's full slot grid with occupancy annotations.
type DailyAppointments struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

// DayAvailability is the public booking projection of one day: the times
// still open for booking, in grid order.
type DayAvailability struct {
	Day   int      `json:"day"`
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// NormalizeDate reduces an appointment date to date-only granularity so
// "2024-06-10", "2024-06-10T00:00:00Z" and friends all compare equal.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	return raw
}

// ParseDate parses an ISO date string in the given location.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, NormalizeDate(raw), loc)
}

// ValidTime reports whether t is a grid time: "HH:MM" on a half-hour
// boundary inside business hours.
func ValidTime(t string) bool {
	parsed, err := time.Parse(TimeLayout, t)
	if err != nil || t != parsed.Format(TimeLayout) {
		return false
	}
	if parsed.Hour() < OpeningHour || parsed.Hour() >= ClosingHour {
		return false
	}
	return parsed.Minute() == 0 || parsed.Minute() == 30
}
