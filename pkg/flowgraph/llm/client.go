// Package llm provides the text-generation backends used by handler nodes.
//
// A Client performs one completion call. Generator narrows a Client to the
// prompt-in, text-out contract the intent graph needs, and converts every
// failure into a *BackendError.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	fgerrors "github.com/randalmurphal/intentgraph/pkg/flowgraph/errors"
)

// Client is a completion backend.
// Implementations must be safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// BackendError reports a failed or unusable backend call.
type BackendError struct {
	// Op names the operation that failed ("complete", "generate", ...).
	Op string
	// Err is the underlying cause.
	Err error
	// Retryable reports whether trying again may succeed.
	Retryable bool
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// Transient lets fgerrors.Categorize classify backend failures.
func (e *BackendError) Transient() bool {
	return e.Retryable
}

// NewError creates a BackendError.
func NewError(op string, err error, retryable bool) *BackendError {
	return &BackendError{Op: op, Err: err, Retryable: retryable}
}

// ErrEmptyResponse indicates the backend answered with no content.
var ErrEmptyResponse = errors.New("empty response")

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// clientGenerator sends each prompt as a single user message.
type clientGenerator struct {
	client Client
}

// NewGenerator adapts client to Generator.
//
// Errors that are not already a *BackendError are wrapped in one, and a
// response whose content is blank fails with ErrEmptyResponse.
func NewGenerator(client Client) Generator {
	return &clientGenerator{client: client}
}

func (g *clientGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Complete(ctx, CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	})
	if err != nil {
		return "", AsBackendError("generate", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", NewError("generate", &fgerrors.MalformedResponseError{
			Source: "completion",
			Reason: "no content",
			Err:    ErrEmptyResponse,
		}, false)
	}
	return resp.Content, nil
}

// AsBackendError returns err as a *BackendError, wrapping it when needed.
// Returns nil for a nil err.
func AsBackendError(op string, err error) *BackendError {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be
	}
	return NewError(op, err, fgerrors.IsRetryable(err))
}
