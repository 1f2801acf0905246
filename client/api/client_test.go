package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agendago/agendago/schedule"
)

func TestErrorTaxonomy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /appointment/missing":
			http.Error(w, "appointment not found", http.StatusNotFound)
		case "POST /schedule":
			http.Error(w, "time slot already booked", http.StatusConflict)
		case "POST /appointment":
			http.Error(w, "missing required fields", http.StatusBadRequest)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := c.Schedule(ctx, ScheduleRequest{Date: "2024-06-10", Time: "09:00", CPF: "1", Name: "n", Email: "e"}); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// GET /appointments hits the fake's default branch: an unmapped
	// status surfaces as a plain APIError.
	_, err = c.List(ctx)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected APIError 500, got %v", err)
	}

	_, err = c.Create(ctx, schedule.Appointment{})
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected APIError 400, got %v", err)
	}
}

func TestRegisterConflictIsEmailTaken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "email already registered", http.StatusConflict)
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	err := c.Register(context.Background(), "Ana", "ana@x.com", "secret")
	if !errors.Is(err, ErrEmailRegistered) {
		t.Fatalf("expected ErrEmailRegistered, got %v", err)
	}
	if errors.Is(err, ErrSlotTaken) {
		t.Fatal("register conflict must not read as a slot conflict")
	}
}

func TestWeekPassesAnchorDate(t *testing.T) {
	var gotDate string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar/week" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		gotDate = r.URL.Query().Get("date")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	if _, err := c.Week(context.Background(), "2024-06-10"); err != nil {
		t.Fatalf("Week failed: %v", err)
	}
	if gotDate != "2024-06-10" {
		t.Fatalf("expected date query 2024-06-10, got %q", gotDate)
	}
}

func TestMonthDecodesGrid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar/month" || r.URL.Query().Get("date") != "2024-06-10" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"day":26,"date":"2024-05-26","inMonth":false,"isToday":false,"appointments":[{"id":"a1","date":"2024-05-26","time":"10:00","name":"Carol"}]}]`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	cells, err := c.Month(context.Background(), "2024-06-10")
	if err != nil {
		t.Fatalf("Month failed: %v", err)
	}
	if len(cells) != 1 || cells[0].InMonth || len(cells[0].Appointments) != 1 {
		t.Fatalf("unexpected cells: %+v", cells)
	}
	if cells[0].Appointments[0].ID != "a1" {
		t.Fatalf("unexpected appointment: %+v", cells[0].Appointments[0])
	}
}

func TestBaseURLWithPathPrefix(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c, _ := New(srv.URL + "/api/")
	if _, err := c.Available(context.Background()); err != nil {
		t.Fatalf("Available failed: %v", err)
	}
	if gotPath != "/api/available" {
		t.Fatalf("expected /api/available, got %q", gotPath)
	}
}
