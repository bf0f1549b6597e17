package domain

import "net/http"

// Result is the outcome of a credential-record operation: either Ok with data,
// or a failure carrying an HTTP-status-like code plus one or more messages.
// Business failures (not found, conflict, bad token) always travel through
// Result; only infrastructure faults are returned as plain errors.
type Result[T any] struct {
	Success bool     `json:"success"`
	Data    T        `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Code    int      `json:"code,omitempty"`
}

func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func Fail[T any](code int, msgs ...string) Result[T] {
	return Result[T]{Success: false, Code: code, Errors: msgs}
}

// Err maps a failure Result onto the matching domain sentinel so handlers can
// reuse the same error-to-status mapping as the rest of the services.
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}
	switch r.Code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	default:
		return ErrBadRequest
	}
}

// Message joins the failure messages for user-facing output.
func (r Result[T]) Message() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msg := r.Errors[0]
	for _, m := range r.Errors[1:] {
		msg += "; " + m
	}
	return msg
}
