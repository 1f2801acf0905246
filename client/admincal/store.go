// Package admincal holds the administrative calendar's client-side state:
// a re-fetchable week or month cache plus create/cancel operations against
// the appointment store.
package admincal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agendago/agendago/libs/clock"
	"github.com/agendago/agendago/schedule"
)

// AdminAPI is the slice of the scheduler boundary the calendar needs.
// *api.Client satisfies it.
type AdminAPI interface {
	Week(ctx context.Context, date string) ([]schedule.DailyAppointments, error)
	Month(ctx context.Context, date string) ([]schedule.MonthDay, error)
	Search(ctx context.Context, query string) ([]schedule.Appointment, error)
	Get(ctx context.Context, id string) (schedule.Appointment, error)
	Create(ctx context.Context, appt schedule.Appointment) (schedule.Appointment, error)
	Cancel(ctx context.Context, id string) error
}

var (
	ErrPastSlot     = errors.New("slot is in the past")
	ErrMissingField = errors.New("date, time, and name are required")
)

// ViewMode selects which calendar projection is displayed.
type ViewMode int

const (
	// ViewWeek shows the 7-day slot grid.
	ViewWeek ViewMode = iota + 1
	// ViewMonth shows the week-padded month overview.
	ViewMonth
)

// IntentKind says what clicking a slot should open.
type IntentKind int

const (
	// IntentCreate pre-fills a new-appointment form with the slot.
	IntentCreate IntentKind = iota + 1
	// IntentView shows the booked appointment with a cancel action.
	IntentView
)

// Intent is the outcome of selecting a slot in the grid.
type Intent struct {
	Kind        IntentKind
	Date        string
	Time        string
	Appointment *schedule.Appointment
}

// Store caches one week or one month of the calendar. The external store
// stays the single source of truth: every mutation completes first and is
// then reconciled by re-fetching the current view, never by splicing local
// state.
type Store struct {
	api AdminAPI
	clk clock.Clock

	mu      sync.Mutex
	anchor  string
	view    ViewMode
	week    []schedule.DailyAppointments
	month   []schedule.MonthDay
	loadErr error
	loadSeq uint64
}

func NewStore(client AdminAPI, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.System()
	}
	return &Store{api: client, clk: clk, view: ViewWeek}
}

// LoadWeek fetches the week containing anchor. On failure the previously
// loaded week stays visible and the error is surfaced via Err. A newer
// LoadWeek supersedes an in-flight older one: only the most recently
// started call may publish its result.
func (s *Store) LoadWeek(ctx context.Context, anchor string) error {
	s.mu.Lock()
	s.anchor = anchor
	s.view = ViewWeek
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	week, err := s.api.Week(ctx, anchor)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.loadSeq {
		// A later load started while this one was in flight; its result
		// wins regardless of arrival order.
		return nil
	}
	if err != nil {
		s.loadErr = fmt.Errorf("loading week of %s: %w", anchor, err)
		return s.loadErr
	}
	s.week = week
	s.loadErr = nil
	return nil
}

// LoadMonth fetches the month containing anchor and switches the store to
// the month view. Failure and supersede semantics match LoadWeek.
func (s *Store) LoadMonth(ctx context.Context, anchor string) error {
	s.mu.Lock()
	s.anchor = anchor
	s.view = ViewMonth
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	month, err := s.api.Month(ctx, anchor)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.loadSeq {
		return nil
	}
	if err != nil {
		s.loadErr = fmt.Errorf("loading month of %s: %w", anchor, err)
		return s.loadErr
	}
	s.month = month
	s.loadErr = nil
	return nil
}

// Week returns the cached weekly view.
func (s *Store) Week() []schedule.DailyAppointments {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.week
}

// Month returns the cached month view.
func (s *Store) Month() []schedule.MonthDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.month
}

// View returns which projection the store currently tracks.
func (s *Store) View() ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Err returns the error behind the current view, if any.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Anchor returns the date whose week is displayed.
func (s *Store) Anchor() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchor
}

// Create books a slot on behalf of a customer. Email is optional for
// admin-created bookings. The create must resolve before the reconciling
// fetch is issued so the reload cannot observe pre-mutation state.
func (s *Store) Create(ctx context.Context, date, timeOfDay, name, email string) error {
	if strings.TrimSpace(date) == "" || strings.TrimSpace(timeOfDay) == "" || strings.TrimSpace(name) == "" {
		return ErrMissingField
	}
	_, err := s.api.Create(ctx, schedule.Appointment{
		Date:  date,
		Time:  timeOfDay,
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
	})
	if err != nil {
		// Local cache untouched; the store may have raced us and the
		// caller decides whether to reload and re-pick.
		return err
	}
	return s.reload(ctx)
}

// Cancel destroys an appointment and reconciles. The delete is always
// awaited; reloading before it completes could show the slot still taken.
func (s *Store) Cancel(ctx context.Context, id string) error {
	if err := s.api.Cancel(ctx, id); err != nil {
		return err
	}
	return s.reload(ctx)
}

// Search passes an admin search query through to the store.
func (s *Store) Search(ctx context.Context, query string) ([]schedule.Appointment, error) {
	return s.api.Search(ctx, query)
}

// SelectSlot resolves a click on the grid. Free future slots open a
// pre-filled create intent; occupied slots open a view/cancel intent after
// fetching the full record, since the grid projection carries only the id.
func (s *Store) SelectSlot(ctx context.Context, date string, slot schedule.Slot) (Intent, error) {
	if slot.IsPast {
		return Intent{}, fmt.Errorf("%w: %s %s", ErrPastSlot, date, slot.Time)
	}
	if slot.IsAvailable {
		return Intent{Kind: IntentCreate, Date: date, Time: slot.Time}, nil
	}
	appt, err := s.api.Get(ctx, slot.AppointmentID)
	if err != nil {
		return Intent{}, fmt.Errorf("loading appointment %s: %w", slot.AppointmentID, err)
	}
	return Intent{Kind: IntentView, Date: date, Time: slot.Time, Appointment: &appt}, nil
}

// Previous steps the anchor back one week or one month, matching the
// current view, and reloads.
func (s *Store) Previous(ctx context.Context) error {
	return s.shiftAnchor(ctx, -1)
}

// Next steps the anchor forward one week or one month, matching the
// current view, and reloads.
func (s *Store) Next(ctx context.Context) error {
	return s.shiftAnchor(ctx, 1)
}

// Today re-anchors the current view on the current date and reloads.
func (s *Store) Today(ctx context.Context) error {
	return s.load(ctx, s.clk.Now().Format(schedule.DateLayout))
}

func (s *Store) shiftAnchor(ctx context.Context, steps int) error {
	s.mu.Lock()
	anchor := s.anchor
	view := s.view
	s.mu.Unlock()

	base, err := anchorOrNow(anchor, s.clk)
	if err != nil {
		return err
	}
	var next time.Time
	if view == ViewMonth {
		next = base.AddDate(0, steps, 0)
	} else {
		next = base.AddDate(0, 0, 7*steps)
	}
	return s.load(ctx, next.Format(schedule.DateLayout))
}

func (s *Store) reload(ctx context.Context) error {
	s.mu.Lock()
	anchor := s.anchor
	s.mu.Unlock()
	if anchor == "" {
		anchor = s.clk.Now().Format(schedule.DateLayout)
	}
	return s.load(ctx, anchor)
}

// load refreshes whichever projection is active without changing views.
func (s *Store) load(ctx context.Context, anchor string) error {
	s.mu.Lock()
	view := s.view
	s.mu.Unlock()
	if view == ViewMonth {
		return s.LoadMonth(ctx, anchor)
	}
	return s.LoadWeek(ctx, anchor)
}

func anchorOrNow(anchor string, clk clock.Clock) (time.Time, error) {
	if anchor == "" {
		return clk.Now(), nil
	}
	return schedule.ParseDate(anchor, time.UTC)
}
