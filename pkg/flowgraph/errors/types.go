package errors

import (
	"fmt"
	"time"
)

// HTTPError is a non-2xx response from an HTTP backend.
type HTTPError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("HTTP %d at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// TimeoutError indicates an operation did not finish in time.
type TimeoutError struct {
	Operation string
	After     time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout after %s: %s", e.After, e.Operation)
}

// MalformedResponseError indicates a backend answered with something that
// is not a usable completion: an empty text, an undecodable body, or an
// error payload.
type MalformedResponseError struct {
	Source string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	msg := "malformed response"
	if e.Source != "" {
		msg += " from " + e.Source
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the decoding error, if any.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
