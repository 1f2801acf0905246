package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/agendago/agendago/libs/clock"
	"github.com/agendago/agendago/schedule"
	"github.com/agendago/agendago/services/scheduler-service/internal/storage"
)

// availabilityDays is the window the public booking page pages across.
const availabilityDays = 14

type AppointmentStore interface {
	Create(ctx context.Context, appt schedule.Appointment) error
	GetByID(ctx context.Context, id string) (schedule.Appointment, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]schedule.Appointment, error)
	Between(ctx context.Context, from, to string) ([]schedule.Appointment, error)
	Search(ctx context.Context, query string) ([]schedule.Appointment, error)
}

type UserStore interface {
	Create(ctx context.Context, user storage.User) error
}

type SchedulerHandler struct {
	store  AppointmentStore
	users  UserStore
	gen    schedule.Generator
	clk    clock.Clock
	logger *slog.Logger
}

func NewSchedulerHandler(store AppointmentStore, users UserStore, gen schedule.Generator, clk clock.Clock, logger *slog.Logger) *SchedulerHandler {
	if clk == nil {
		clk = clock.System()
	}
	return &SchedulerHandler{store: store, users: users, gen: gen, clk: clk, logger: logger}
}

type createAppointmentRequest struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Name  string `json:"name"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Available serves the public booking projection: the free, non-past
// slots over the next two weeks.
func (h *SchedulerHandler) Available(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := h.clk.Now()
	from := now.Format(schedule.DateLayout)
	to := now.AddDate(0, 0, availabilityDays-1).Format(schedule.DateLayout)

	appts, err := h.store.Between(r.Context(), from, to)
	if err != nil {
		h.logger.Error("loading appointments failed", "err", err)
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}
	days, err := h.gen.Availability(from, availabilityDays, appts, now)
	if err != nil {
		http.Error(w, "failed to compute availability", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

// Week serves the admin calendar grid for the week containing ?date=.
func (h *SchedulerHandler) Week(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := h.clk.Now()
	anchor := strings.TrimSpace(r.URL.Query().Get("date"))
	if anchor == "" {
		anchor = now.Format(schedule.DateLayout)
	}
	parsed, err := schedule.ParseDate(anchor, nil)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	weekStart := h.gen.WeekStartOf(parsed)
	from := weekStart.Format(schedule.DateLayout)
	to := weekStart.AddDate(0, 0, 6).Format(schedule.DateLayout)
	appts, err := h.store.Between(r.Context(), from, to)
	if err != nil {
		h.logger.Error("loading appointments failed", "err", err)
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}
	days, err := h.gen.Week(anchor, appts, now)
	if err != nil {
		http.Error(w, "failed to compute week", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

// Month serves the admin calendar month grid for the month containing
// ?date=, padded to whole weeks.
func (h *SchedulerHandler) Month(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := h.clk.Now()
	anchor := strings.TrimSpace(r.URL.Query().Get("date"))
	if anchor == "" {
		anchor = now.Format(schedule.DateLayout)
	}
	parsed, err := schedule.ParseDate(anchor, nil)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	start, end := h.gen.MonthBounds(parsed)
	from := start.Format(schedule.DateLayout)
	to := end.Format(schedule.DateLayout)
	appts, err := h.store.Between(r.Context(), from, to)
	if err != nil {
		h.logger.Error("loading appointments failed", "err", err)
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}
	days, err := h.gen.Month(anchor, appts, now)
	if err != nil {
		http.Error(w, "failed to compute month", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

// Appointments lists every booking in the store.
func (h *SchedulerHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	appts, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("listing appointments failed", "err", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []schedule.Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

// Appointment dispatches /appointment: GET searches by name, email, or
// cpf; POST creates a booking on the admin's behalf with contact fields
// optional.
func (h *SchedulerHandler) Appointment(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.search(w, r)
	case http.MethodPost:
		h.create(w, r, false)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Schedule is the public create boundary: every field is required.
func (h *SchedulerHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.create(w, r, true)
}

// AppointmentByID serves GET and DELETE on /appointment/{id}.
func (h *SchedulerHandler) AppointmentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/appointment/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "appointment id required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		appt, err := h.store.GetByID(r.Context(), id)
		if err != nil {
			if storage.IsNotFound(err) {
				http.Error(w, "appointment not found", http.StatusNotFound)
				return
			}
			h.logger.Error("loading appointment failed", "err", err, "id", id)
			http.Error(w, "failed to load appointment", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	case http.MethodDelete:
		if err := h.store.Delete(r.Context(), id); err != nil {
			if storage.IsNotFound(err) {
				http.Error(w, "appointment not found", http.StatusNotFound)
				return
			}
			h.logger.Error("deleting appointment failed", "err", err, "id", id)
			http.Error(w, "failed to delete appointment", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Register creates an admin account. Duplicate email is a conflict, kept
// distinct from validation failures so clients can prompt accordingly.
func (h *SchedulerHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "name, email, and password are required", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}
	user := storage.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		}
		h.logger.Error("creating user failed", "err", err)
		http.Error(w, "failed to create user", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}

func (h *SchedulerHandler) search(w http.ResponseWriter, r *http.Request) {
	// The search page queries with an empty string on first load; an
	// empty query matches everything.
	query := strings.TrimSpace(r.URL.Query().Get("search"))
	if query == "" {
		h.Appointments(w, r)
		return
	}
	appts, err := h.store.Search(r.Context(), query)
	if err != nil {
		h.logger.Error("search failed", "err", err)
		http.Error(w, "failed to search appointments", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []schedule.Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

func (h *SchedulerHandler) create(w http.ResponseWriter, r *http.Request, requireContact bool) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Date = schedule.NormalizeDate(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.CPF = strings.TrimSpace(req.CPF)

	if requireContact {
		if req.Date == "" || req.Time == "" || req.CPF == "" || req.Name == "" || req.Email == "" {
			http.Error(w, "date, time, cpf, name, and email are required", http.StatusBadRequest)
			return
		}
	} else if req.Date == "" || req.Time == "" || req.Name == "" {
		http.Error(w, "date, time, and name are required", http.StatusBadRequest)
		return
	}
	if _, err := schedule.ParseDate(req.Date, nil); err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	if !schedule.ValidTime(req.Time) {
		http.Error(w, "time must fall on the booking grid", http.StatusBadRequest)
		return
	}
	instant, err := h.gen.SlotInstant(req.Date, req.Time)
	if err != nil {
		http.Error(w, "invalid slot", http.StatusBadRequest)
		return
	}
	if instant.Before(h.clk.Now()) {
		http.Error(w, "slot is in the past", http.StatusUnprocessableEntity)
		return
	}

	appt := schedule.Appointment{
		ID:    uuid.NewString(),
		Date:  req.Date,
		Time:  req.Time,
		Name:  req.Name,
		Email: req.Email,
		CPF:   req.CPF,
	}
	if err := h.store.Create(r.Context(), appt); err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		h.logger.Error("creating appointment failed", "err", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
