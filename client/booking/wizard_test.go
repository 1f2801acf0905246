package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/agendago/agendago/client/api"
	"github.com/agendago/agendago/schedule"
)

type fakeAPI struct {
	days     []schedule.DayAvailability
	loadErr  error
	schedErr error

	scheduleCalls int
	lastRequest   api.ScheduleRequest
}

func (f *fakeAPI) Available(context.Context) ([]schedule.DayAvailability, error) {
	return f.days, f.loadErr
}

func (f *fakeAPI) Schedule(_ context.Context, req api.ScheduleRequest) (schedule.Appointment, error) {
	f.scheduleCalls++
	f.lastRequest = req
	if f.schedErr != nil {
		return schedule.Appointment{}, f.schedErr
	}
	return schedule.Appointment{
		ID: "new", Date: req.Date, Time: req.Time, Name: req.Name, Email: req.Email, CPF: req.CPF,
	}, nil
}

func twoOpenDays() []schedule.DayAvailability {
	return []schedule.DayAvailability{
		{Day: 10, Date: "2024-06-10", Slots: []string{"09:00", "09:30"}},
		{Day: 11, Date: "2024-06-11", Slots: []string{"14:00"}},
		{Day: 12, Date: "2024-06-12", Slots: nil},
	}
}

func loadedWizard(t *testing.T, f *fakeAPI) *Wizard {
	t.Helper()
	w := NewWizard(f)
	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return w
}

func TestSelectDateClearsTime(t *testing.T) {
	w := loadedWizard(t, &fakeAPI{days: twoOpenDays()})
	if err := w.SelectDate("2024-06-10"); err != nil {
		t.Fatalf("SelectDate failed: %v", err)
	}
	if err := w.SelectTime("09:00"); err != nil {
		t.Fatalf("SelectTime failed: %v", err)
	}
	if err := w.SelectDate("2024-06-11"); err != nil {
		t.Fatalf("re-selecting date failed: %v", err)
	}
	if _, tm := w.Selection(); tm != "" {
		t.Fatalf("time selection should be cleared, got %q", tm)
	}
	if w.State() != SelectingTime {
		t.Fatalf("expected SelectingTime, got %s", w.State())
	}
	// The old day's slot is not valid on the new day.
	if err := w.SelectTime("09:00"); !errors.Is(err, ErrTimeUnavailable) {
		t.Fatalf("expected ErrTimeUnavailable, got %v", err)
	}
}

func TestSelectDateRejectsFullOrUnknownDay(t *testing.T) {
	w := loadedWizard(t, &fakeAPI{days: twoOpenDays()})
	if err := w.SelectDate("2024-06-12"); !errors.Is(err, ErrUnknownDate) {
		t.Fatalf("day with no open slots: expected ErrUnknownDate, got %v", err)
	}
	if err := w.SelectDate("2030-01-01"); !errors.Is(err, ErrUnknownDate) {
		t.Fatalf("unknown day: expected ErrUnknownDate, got %v", err)
	}
}

func TestBackPreservesDetails(t *testing.T) {
	w := loadedWizard(t, &fakeAPI{days: twoOpenDays()})
	mustAdvance(t, w, "2024-06-10", "09:00")
	if err := w.SetDetails(Details{Name: "Alice", Email: "alice@x.com", CPF: "111"}); err != nil {
		t.Fatalf("SetDetails failed: %v", err)
	}

	if err := w.Back(); err != nil {
		t.Fatalf("Back failed: %v", err)
	}
	if w.State() != SelectingTime {
		t.Fatalf("expected SelectingTime, got %s", w.State())
	}
	if err := w.Back(); err != nil {
		t.Fatalf("Back failed: %v", err)
	}
	if w.State() != SelectingDate {
		t.Fatalf("expected SelectingDate, got %s", w.State())
	}

	if got := w.Details(); got.Name != "Alice" || got.Email != "alice@x.com" || got.CPF != "111" {
		t.Fatalf("details lost across Back: %+v", got)
	}
}

func TestSubmitRejectsMissingFieldsWithoutNetworkCall(t *testing.T) {
	f := &fakeAPI{days: twoOpenDays()}
	w := loadedWizard(t, f)
	mustAdvance(t, w, "2024-06-10", "09:00")
	if err := w.SetDetails(Details{Name: "Alice", Email: "", CPF: "111"}); err != nil {
		t.Fatalf("SetDetails failed: %v", err)
	}

	err := w.Submit(context.Background())
	var missing *MissingFieldError
	if !errors.As(err, &missing) || missing.Field != "email" {
		t.Fatalf("expected missing email, got %v", err)
	}
	if f.scheduleCalls != 0 {
		t.Fatalf("no network call should be issued, got %d", f.scheduleCalls)
	}
	if w.State() != EnteringDetails {
		t.Fatalf("validation failure should not change state, got %s", w.State())
	}
}

func TestSubmitSuccess(t *testing.T) {
	f := &fakeAPI{days: twoOpenDays()}
	w := loadedWizard(t, f)
	mustAdvance(t, w, "2024-06-10", "09:30")
	if err := w.SetDetails(Details{Name: "Alice", Email: "alice@x.com", CPF: "111"}); err != nil {
		t.Fatalf("SetDetails failed: %v", err)
	}

	if err := w.Submit(context.Background()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if w.State() != Submitted {
		t.Fatalf("expected Submitted, got %s", w.State())
	}
	got := w.Confirmed()
	if got == nil || got.Date != "2024-06-10" || got.Time != "09:30" {
		t.Fatalf("unexpected confirmation: %+v", got)
	}
	if f.lastRequest.CPF != "111" {
		t.Fatalf("cpf not forwarded: %+v", f.lastRequest)
	}
}

func TestSubmitFailureKeepsDataAndAllowsRetry(t *testing.T) {
	f := &fakeAPI{days: twoOpenDays(), schedErr: errors.New("store unreachable")}
	w := loadedWizard(t, f)
	mustAdvance(t, w, "2024-06-10", "09:00")
	if err := w.SetDetails(Details{Name: "Alice", Email: "alice@x.com", CPF: "111"}); err != nil {
		t.Fatalf("SetDetails failed: %v", err)
	}

	if err := w.Submit(context.Background()); err == nil {
		t.Fatal("expected submit failure")
	}
	if w.State() != SubmitFailed {
		t.Fatalf("expected SubmitFailed, got %s", w.State())
	}
	if got := w.Details(); got.Name != "Alice" {
		t.Fatalf("details lost on failure: %+v", got)
	}

	f.schedErr = nil
	if err := w.Submit(context.Background()); err != nil {
		t.Fatalf("retry should succeed without re-entering data: %v", err)
	}
	if f.scheduleCalls != 2 {
		t.Fatalf("expected 2 schedule calls, got %d", f.scheduleCalls)
	}
}

func TestSubmitConflictSurfacedDistinctly(t *testing.T) {
	f := &fakeAPI{days: twoOpenDays(), schedErr: api.ErrSlotTaken}
	w := loadedWizard(t, f)
	mustAdvance(t, w, "2024-06-10", "09:00")
	_ = w.SetDetails(Details{Name: "Carl", Email: "carl@x.com", CPF: "333"})

	err := w.Submit(context.Background())
	if !errors.Is(err, api.ErrSlotTaken) {
		t.Fatalf("conflict must surface as ErrSlotTaken, got %v", err)
	}
	if !errors.Is(w.SubmitError(), api.ErrSlotTaken) {
		t.Fatalf("SubmitError should carry the conflict, got %v", w.SubmitError())
	}
}

func TestSubmitBlockedWhileInFlight(t *testing.T) {
	f := &fakeAPI{days: twoOpenDays()}
	w := loadedWizard(t, f)
	mustAdvance(t, w, "2024-06-10", "09:00")
	_ = w.SetDetails(Details{Name: "Alice", Email: "alice@x.com", CPF: "111"})

	// Force the in-flight state directly; the flow is single-threaded so
	// this is the only way to observe it.
	w.state = Submitting
	if err := w.Submit(context.Background()); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	if f.scheduleCalls != 0 {
		t.Fatal("in-flight guard must not issue a second request")
	}
}

func mustAdvance(t *testing.T, w *Wizard, date, timeOfDay string) {
	t.Helper()
	if err := w.SelectDate(date); err != nil {
		t.Fatalf("SelectDate failed: %v", err)
	}
	if err := w.SelectTime(timeOfDay); err != nil {
		t.Fatalf("SelectTime failed: %v", err)
	}
}
