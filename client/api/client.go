// Package api is the Go client for the appointment-service HTTP boundary.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agendago/agendago/schedule"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client talks to a scheduler endpoint (the gateway in production, the
// scheduler service directly in development).
type Client struct {
	base  *url.URL
	httpc *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mostly for tests.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	c := &Client{
		base: base,
		httpc: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ScheduleRequest is the public booking payload. Every field is required
// at this boundary.
type ScheduleRequest struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	CPF   string `json:"cpf"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Available lists the upcoming days with their still-open times.
func (c *Client) Available(ctx context.Context) ([]schedule.DayAvailability, error) {
	var out []schedule.DayAvailability
	if err := c.get(ctx, "/available", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Week returns the annotated slot grid for the week containing date.
// An empty date means the current week.
func (c *Client) Week(ctx context.Context, date string) ([]schedule.DailyAppointments, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	var out []schedule.DailyAppointments
	if err := c.get(ctx, "/calendar/week", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Month returns the week-padded month grid containing date, with
// appointments grouped onto their days. An empty date means the current
// month.
func (c *Client) Month(ctx context.Context, date string) ([]schedule.MonthDay, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	var out []schedule.MonthDay
	if err := c.get(ctx, "/calendar/month", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search lists appointments matching query on name, email, or cpf. An
// empty query matches everything.
func (c *Client) Search(ctx context.Context, query string) ([]schedule.Appointment, error) {
	q := url.Values{}
	q.Set("search", query)
	var out []schedule.Appointment
	if err := c.get(ctx, "/appointment", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every appointment known to the store.
func (c *Client) List(ctx context.Context) ([]schedule.Appointment, error) {
	var out []schedule.Appointment
	if err := c.get(ctx, "/appointments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches the full appointment record, including the contact fields
// that slot projections omit.
func (c *Client) Get(ctx context.Context, id string) (schedule.Appointment, error) {
	var out schedule.Appointment
	if err := c.get(ctx, "/appointment/"+url.PathEscape(id), nil, &out); err != nil {
		return schedule.Appointment{}, err
	}
	return out, nil
}

// Schedule books a slot through the public flow.
func (c *Client) Schedule(ctx context.Context, req ScheduleRequest) (schedule.Appointment, error) {
	var out schedule.Appointment
	if err := c.post(ctx, "/schedule", req, &out); err != nil {
		return schedule.Appointment{}, err
	}
	return out, nil
}

// Create books a slot through the admin flow; email and cpf may be empty.
func (c *Client) Create(ctx context.Context, appt schedule.Appointment) (schedule.Appointment, error) {
	var out schedule.Appointment
	if err := c.post(ctx, "/appointment", appt, &out); err != nil {
		return schedule.Appointment{}, err
	}
	return out, nil
}

// Cancel destroys an appointment. Cancelling an id that is already gone
// returns ErrNotFound.
func (c *Client) Cancel(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/appointment/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Register creates an admin user.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	err := c.post(ctx, "/auth/register", body, nil)
	if errors.Is(err, ErrSlotTaken) {
		// 409 on this endpoint means the email, not a slot, is taken.
		return fmt.Errorf("%w: %s", ErrEmailRegistered, email)
	}
	return err
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	return http.NewRequestWithContext(ctx, method, u.String(), body)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
