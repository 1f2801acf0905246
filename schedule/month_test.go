package schedule

import (
	"testing"
	"time"
)

func TestMonth_PaddedToWholeWeeks(t *testing.T) {
	var g Generator // Sunday start
	// June 2024 starts on a Saturday and ends on a Sunday, so the padded
	// grid runs Sun 2024-05-26 .. Sat 2024-07-06.
	cells, err := g.Month("2024-06-15", nil, noon)
	if err != nil {
		t.Fatalf("Month failed: %v", err)
	}
	if len(cells)%7 != 0 {
		t.Fatalf("cell count %d is not a multiple of 7", len(cells))
	}
	if len(cells) != 42 {
		t.Fatalf("expected 42 cells, got %d", len(cells))
	}
	if cells[0].Date != "2024-05-26" || cells[len(cells)-1].Date != "2024-07-06" {
		t.Fatalf("unexpected grid: %s .. %s", cells[0].Date, cells[len(cells)-1].Date)
	}
}

func TestMonth_InMonthAndTodayFlags(t *testing.T) {
	var g Generator
	cells, err := g.Month("2024-06-15", nil, noon)
	if err != nil {
		t.Fatalf("Month failed: %v", err)
	}
	byDate := make(map[string]MonthDay, len(cells))
	for _, cell := range cells {
		byDate[cell.Date] = cell
	}
	if byDate["2024-05-26"].InMonth {
		t.Fatal("2024-05-26 marked in month")
	}
	if !byDate["2024-06-01"].InMonth || !byDate["2024-06-30"].InMonth {
		t.Fatal("June days not marked in month")
	}
	if byDate["2024-07-01"].InMonth {
		t.Fatal("2024-07-01 marked in month")
	}
	for _, cell := range cells {
		if got := cell.IsToday; got != (cell.Date == "2024-06-10") {
			t.Fatalf("%s: isToday = %v", cell.Date, got)
		}
	}
	if byDate["2024-06-10"].Day != 10 {
		t.Fatalf("expected day number 10, got %d", byDate["2024-06-10"].Day)
	}
}

func TestMonth_GroupsAppointmentsByDay(t *testing.T) {
	appts := []Appointment{
		{ID: "a1", Date: "2024-06-10", Time: "09:00", Name: "Alice"},
		{ID: "a2", Date: "2024-06-10", Time: "14:00", Name: "Bob"},
		{ID: "a3", Date: "2024-05-26T00:00:00Z", Time: "10:00", Name: "Carol"},
	}
	var g Generator
	cells, err := g.Month("2024-06-15", appts, noon)
	if err != nil {
		t.Fatalf("Month failed: %v", err)
	}
	byDate := make(map[string]MonthDay, len(cells))
	for _, cell := range cells {
		byDate[cell.Date] = cell
	}
	if got := byDate["2024-06-10"].Appointments; len(got) != 2 {
		t.Fatalf("expected 2 appointments on 2024-06-10, got %d", len(got))
	}
	// Timestamped dates normalize onto their calendar day, and padding
	// cells outside the month still carry their appointments.
	if got := byDate["2024-05-26"].Appointments; len(got) != 1 || got[0].ID != "a3" {
		t.Fatalf("expected a3 on 2024-05-26, got %+v", got)
	}
	if got := byDate["2024-06-11"].Appointments; len(got) != 0 {
		t.Fatalf("expected empty day, got %d appointments", len(got))
	}
}

func TestMonth_MondayStart(t *testing.T) {
	g := Generator{WeekStart: time.Monday}
	// Monday-start padding for June 2024 runs Mon 2024-05-27 .. Sun 2024-06-30.
	cells, err := g.Month("2024-06-15", nil, noon)
	if err != nil {
		t.Fatalf("Month failed: %v", err)
	}
	if cells[0].Date != "2024-05-27" || cells[len(cells)-1].Date != "2024-06-30" {
		t.Fatalf("unexpected grid: %s .. %s", cells[0].Date, cells[len(cells)-1].Date)
	}
	if len(cells) != 35 {
		t.Fatalf("expected 35 cells, got %d", len(cells))
	}
}

func TestMonth_RejectsInvalidDate(t *testing.T) {
	var g Generator
	if _, err := g.Month("June 2024", nil, noon); err == nil {
		t.Fatal("expected error for invalid anchor")
	}
}
