package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrSlotTaken means the requested (date, time) is already booked.
	// Recovery is picking another slot, not retrying the same request,
	// so callers must be able to tell it from transport failure.
	ErrSlotTaken = errors.New("time slot already booked")

	ErrNotFound = errors.New("appointment not found")

	ErrEmailRegistered = errors.New("email already registered")
)

// APIError carries a non-2xx response that is neither a conflict nor a
// missing record.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scheduler returned %d: %s", e.Status, e.Message)
}

func errorFromResponse(resp *http.Response) error {
	msg := readErrorMessage(resp.Body)
	switch resp.StatusCode {
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrSlotTaken, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	default:
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
}

func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
