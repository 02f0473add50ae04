package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/felixgeelhaar/fortify/ferrors"
)

// Failure kinds. Match them with errors.Is.
var (
	ErrRateLimited     = errors.New("rate limited")
	ErrUnavailable     = errors.New("provider unavailable")
	ErrRejected        = errors.New("request rejected")
	ErrInvalidResponse = errors.New("invalid response")
	ErrTruncated       = errors.New("response truncated")
)

// Error is a failed provider call.
type Error struct {
	Provider string
	Purpose  Purpose
	Kind     error

	// Status is the HTTP status the provider answered with, or 0.
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Provider, e.Purpose, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// statusError builds an Error from an HTTP status. Status 0 means the request
// never got an answer.
func statusError(provider string, purpose Purpose, status int, err error) *Error {
	kind := ErrUnavailable
	switch {
	case status == http.StatusTooManyRequests:
		kind = ErrRateLimited
	case status >= 400 && status < 500:
		kind = ErrRejected
	}
	return &Error{Provider: provider, Purpose: purpose, Kind: kind, Status: status, Err: err}
}

func invalidResponse(provider string, purpose Purpose, err error) *Error {
	return &Error{Provider: provider, Purpose: purpose, Kind: ErrInvalidResponse, Err: err}
}

// Retryable reports whether another attempt could succeed. An invalid
// response is retried because model output varies between calls.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ferrors.ErrCircuitOpen):
		return false
	case errors.Is(err, ErrRejected), errors.Is(err, ErrTruncated):
		return false
	}
	return true
}
