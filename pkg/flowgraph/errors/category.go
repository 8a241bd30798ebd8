// Package errors classifies backend failures and retries the transient ones.
//
// Errors are sorted into two categories:
//   - Transient: retrying will likely help (rate limits, 5xx, timeouts)
//   - Permanent: retrying won't help (bad requests, malformed output)
//
// WithRetryContext uses the category to decide whether to try again.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Category represents how an error should be handled.
type Category int

const (
	// CategoryTransient indicates retry will likely help.
	CategoryTransient Category = iota

	// CategoryPermanent indicates retry won't help.
	CategoryPermanent
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTransient:
		return "transient"
	case CategoryPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with its category and context.
type CategorizedError struct {
	// Err is the underlying error.
	Err error

	// Category indicates how this error should be handled.
	Category Category

	// Attempts is the number of attempts that have been made.
	Attempts int

	// Context describes what operation was being attempted.
	Context string
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (category: %s, attempts: %d)",
			e.Context, e.Err, e.Category, e.Attempts)
	}
	return fmt.Sprintf("%s (category: %s, attempts: %d)",
		e.Err, e.Category, e.Attempts)
}

// Unwrap returns the underlying error.
func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// Transient marks err as retryable.
func Transient(err error, op string) *CategorizedError {
	return &CategorizedError{Err: err, Category: CategoryTransient, Context: op}
}

// Permanent marks err as not retryable.
func Permanent(err error, op string) *CategorizedError {
	return &CategorizedError{Err: err, Category: CategoryPermanent, Context: op}
}

// transientError is implemented by errors that know whether they are
// worth retrying.
type transientError interface {
	Transient() bool
}

// timeoutError matches net.Error and similar.
type timeoutError interface {
	Timeout() bool
}

// Categorize determines how an error should be handled.
// Unknown errors are permanent.
func Categorize(err error) Category {
	if err == nil {
		return CategoryPermanent
	}

	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Category
	}

	// Cancellation is the caller's decision; a deadline is not.
	if errors.Is(err, context.Canceled) {
		return CategoryPermanent
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTransient
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusTooManyRequests:
			return CategoryTransient
		case httpErr.StatusCode >= 500:
			return CategoryTransient
		default:
			return CategoryPermanent
		}
	}

	var timeout *TimeoutError
	if errors.As(err, &timeout) {
		return CategoryTransient
	}

	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return CategoryPermanent
	}

	var te transientError
	if errors.As(err, &te) {
		if te.Transient() {
			return CategoryTransient
		}
		return CategoryPermanent
	}

	var ne timeoutError
	if errors.As(err, &ne) && ne.Timeout() {
		return CategoryTransient
	}

	return CategoryPermanent
}

// IsRetryable reports whether the error should be retried.
func IsRetryable(err error) bool {
	return Categorize(err) == CategoryTransient
}
