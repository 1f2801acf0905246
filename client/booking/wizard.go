// Package booking implements the public booking flow: pick a date, pick a
// time, enter contact details, submit.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agendago/agendago/client/api"
	"github.com/agendago/agendago/schedule"
)

// State is the wizard's position in the flow. Transitions only move one
// step at a time; Back never loses entered details.
type State int

const (
	SelectingDate State = iota + 1
	SelectingTime
	EnteringDetails
	Submitting
	Submitted
	SubmitFailed
)

func (s State) String() string {
	switch s {
	case SelectingDate:
		return "selecting-date"
	case SelectingTime:
		return "selecting-time"
	case EnteringDetails:
		return "entering-details"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case SubmitFailed:
		return "submit-failed"
	default:
		return "unknown"
	}
}

// BookingAPI is the slice of the scheduler boundary the wizard needs.
// *api.Client satisfies it.
type BookingAPI interface {
	Available(ctx context.Context) ([]schedule.DayAvailability, error)
	Schedule(ctx context.Context, req api.ScheduleRequest) (schedule.Appointment, error)
}

// Details are the contact fields entered on the final step.
type Details struct {
	CPF   string
	Name  string
	Email string
}

var (
	ErrNoAvailability  = errors.New("no availability loaded")
	ErrUnknownDate     = errors.New("date is not open for booking")
	ErrTimeUnavailable = errors.New("time is not free on the selected date")
	ErrWrongState      = errors.New("operation not valid in current state")
	ErrInFlight        = errors.New("a submission is already in flight")
)

// MissingFieldError reports a presence-validation failure; no request is
// issued while one holds.
type MissingFieldError struct{ Field string }

func (e *MissingFieldError) Error() string { return e.Field + " is required" }

// Wizard drives a single booking session. It is not safe for concurrent
// use; like the UI it models, one session mutates it at a time.
type Wizard struct {
	api BookingAPI

	state     State
	days      []schedule.DayAvailability
	date      string
	timeOfDay string
	details   Details

	confirmed *schedule.Appointment
	submitErr error
}

func NewWizard(client BookingAPI) *Wizard {
	return &Wizard{api: client, state: SelectingDate}
}

func (w *Wizard) State() State { return w.state }

// Selection returns the current (date, time) choice; either may be empty.
func (w *Wizard) Selection() (date, timeOfDay string) { return w.date, w.timeOfDay }

func (w *Wizard) Details() Details { return w.details }

// Confirmed returns the booked appointment after a successful submit.
func (w *Wizard) Confirmed() *schedule.Appointment { return w.confirmed }

// SubmitError returns the failure behind a SubmitFailed state.
func (w *Wizard) SubmitError() error { return w.submitErr }

// Days returns the loaded availability window.
func (w *Wizard) Days() []schedule.DayAvailability { return w.days }

// Load fetches the availability window the date step renders.
func (w *Wizard) Load(ctx context.Context) error {
	days, err := w.api.Available(ctx)
	if err != nil {
		return fmt.Errorf("loading availability: %w", err)
	}
	w.days = days
	return nil
}

// SelectDate picks a day and always clears any previously selected time:
// a slot chosen on one day may not exist or be free on another.
func (w *Wizard) SelectDate(date string) error {
	if w.state == Submitting {
		return ErrInFlight
	}
	if len(w.days) == 0 {
		return ErrNoAvailability
	}
	day := w.dayFor(date)
	if day == nil || len(day.Slots) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownDate, date)
	}
	w.date = date
	w.timeOfDay = ""
	w.state = SelectingTime
	return nil
}

// SelectTime validates the choice against the selected date's open slots.
func (w *Wizard) SelectTime(timeOfDay string) error {
	if w.state != SelectingTime {
		return fmt.Errorf("%w: %s", ErrWrongState, w.state)
	}
	day := w.dayFor(w.date)
	if day == nil || !contains(day.Slots, timeOfDay) {
		return fmt.Errorf("%w: %s %s", ErrTimeUnavailable, w.date, timeOfDay)
	}
	w.timeOfDay = timeOfDay
	w.state = EnteringDetails
	return nil
}

// SetDetails stores the contact fields. Values are kept across Back so a
// user changing the date does not retype them.
func (w *Wizard) SetDetails(d Details) error {
	if w.state != EnteringDetails && w.state != SubmitFailed {
		return fmt.Errorf("%w: %s", ErrWrongState, w.state)
	}
	w.details = Details{
		CPF:   strings.TrimSpace(d.CPF),
		Name:  strings.TrimSpace(d.Name),
		Email: strings.TrimSpace(d.Email),
	}
	return nil
}

// Back moves exactly one state backward. Entered details survive; the
// time selection survives a step back to SelectingTime but is cleared if
// the user then changes the date.
func (w *Wizard) Back() error {
	switch w.state {
	case SelectingTime:
		w.state = SelectingDate
	case EnteringDetails, SubmitFailed:
		w.state = SelectingTime
	default:
		return fmt.Errorf("%w: %s", ErrWrongState, w.state)
	}
	return nil
}

// Submit books the selected slot. All of date, time, name, email, and cpf
// must be present or no request is issued. While a request is in flight
// further submissions are rejected; a failure leaves everything entered
// intact and Submit may be called again.
func (w *Wizard) Submit(ctx context.Context) error {
	switch w.state {
	case EnteringDetails, SubmitFailed:
	case Submitting:
		return ErrInFlight
	default:
		return fmt.Errorf("%w: %s", ErrWrongState, w.state)
	}

	if err := w.validate(); err != nil {
		return err
	}

	w.state = Submitting
	appt, err := w.api.Schedule(ctx, api.ScheduleRequest{
		Date:  w.date,
		Time:  w.timeOfDay,
		CPF:   w.details.CPF,
		Name:  w.details.Name,
		Email: w.details.Email,
	})
	if err != nil {
		w.state = SubmitFailed
		w.submitErr = err
		return err
	}

	w.state = Submitted
	w.submitErr = nil
	w.confirmed = &appt
	return nil
}

func (w *Wizard) validate() error {
	for _, f := range []struct{ name, value string }{
		{"date", w.date},
		{"time", w.timeOfDay},
		{"name", w.details.Name},
		{"email", w.details.Email},
		{"cpf", w.details.CPF},
	} {
		if strings.TrimSpace(f.value) == "" {
			return &MissingFieldError{Field: f.name}
		}
	}
	return nil
}

func (w *Wizard) dayFor(date string) *schedule.DayAvailability {
	for i := range w.days {
		if w.days[i].Date == date {
			return &w.days[i]
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
