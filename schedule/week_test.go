package schedule

import (
	"testing"
	"time"
)

func TestWeek_SevenConsecutiveDays(t *testing.T) {
	var g Generator // Sunday start
	// 2024-06-12 is a Wednesday; its week runs Sun 09 .. Sat 15.
	week, err := g.Week("2024-06-12", nil, noon)
	if err != nil {
		t.Fatalf("Week failed: %v", err)
	}
	if len(week) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week))
	}
	if week[0].Date != "2024-06-09" || week[6].Date != "2024-06-15" {
		t.Fatalf("unexpected window: %s .. %s", week[0].Date, week[6].Date)
	}
	for i := 1; i < 7; i++ {
		prev, _ := ParseDate(week[i-1].Date, time.UTC)
		cur, _ := ParseDate(week[i].Date, time.UTC)
		if !cur.Equal(prev.AddDate(0, 0, 1)) {
			t.Fatalf("days not consecutive at index %d: %s -> %s", i, week[i-1].Date, week[i].Date)
		}
	}
	for _, day := range week {
		if len(day.Slots) != SlotsPerDay {
			t.Fatalf("%s: expected %d slots, got %d", day.Date, SlotsPerDay, len(day.Slots))
		}
	}
}

func TestWeek_MondayStart(t *testing.T) {
	g := Generator{WeekStart: time.Monday}
	week, err := g.Week("2024-06-12", nil, noon)
	if err != nil {
		t.Fatalf("Week failed: %v", err)
	}
	if week[0].Date != "2024-06-10" || week[6].Date != "2024-06-16" {
		t.Fatalf("unexpected window: %s .. %s", week[0].Date, week[6].Date)
	}
}

func TestWeek_SpansYearBoundary(t *testing.T) {
	var g Generator
	// 2024-12-31 is a Tuesday; Sunday-start week runs 2024-12-29 .. 2025-01-04.
	week, err := g.Week("2024-12-31", nil, noon)
	if err != nil {
		t.Fatalf("Week failed: %v", err)
	}
	if week[0].Date != "2024-12-29" || week[6].Date != "2025-01-04" {
		t.Fatalf("unexpected window: %s .. %s", week[0].Date, week[6].Date)
	}
}

func TestWeek_AnchorOnWeekStart(t *testing.T) {
	var g Generator
	// 2024-06-09 is a Sunday itself.
	week, err := g.Week("2024-06-09", nil, noon)
	if err != nil {
		t.Fatalf("Week failed: %v", err)
	}
	if week[0].Date != "2024-06-09" {
		t.Fatalf("anchor on week start should not shift back, got %s", week[0].Date)
	}
}

func TestWeek_CarriesOccupancy(t *testing.T) {
	appts := []Appointment{
		{ID: "a1", Date: "2024-06-10", Time: "09:00", Name: "Alice"},
	}
	var g Generator
	week, err := g.Week("2024-06-10", appts, noon)
	if err != nil {
		t.Fatalf("Week failed: %v", err)
	}
	var monday *DailyAppointments
	for i := range week {
		if week[i].Date == "2024-06-10" {
			monday = &week[i]
		}
	}
	if monday == nil {
		t.Fatal("2024-06-10 missing from its own week")
	}
	if got := slotAt(t, monday.Slots, "09:00"); got.IsAvailable || got.AppointmentID != "a1" {
		t.Fatalf("expected 09:00 occupied by a1, got %+v", got)
	}
	if got := slotAt(t, monday.Slots, "09:30"); !got.IsAvailable {
		t.Fatal("09:30 should be available")
	}
}
