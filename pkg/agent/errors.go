package agent

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/intentgraph/pkg/flowgraph"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/llm"
)

// ErrorKind classifies a failed run.
type ErrorKind uint8

// Kinds of run failure.
const (
	// KindInternal covers panics, state-merge violations, cancellation and
	// any other failure that is neither routing nor backend.
	KindInternal ErrorKind = iota
	// KindRouting means the router's decision had no matching edge.
	KindRouting
	// KindBackend means the text-generation backend failed.
	KindBackend
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindRouting:
		return "routing"
	case KindBackend:
		return "backend"
	default:
		return "internal"
	}
}

// RunError reports a failed RunOnce.
// errors.As reaches the underlying *flowgraph.RoutingError or
// *llm.BackendError.
type RunError struct {
	Kind  ErrorKind
	RunID string
	// Node is the node that failed, if known.
	Node string
	Err  error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s error at %s: %v", e.Kind, e.Node, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RunError) Unwrap() error {
	return e.Err
}

// newRunError classifies err from a graph run.
func newRunError(runID string, err error) *RunError {
	runErr := &RunError{Kind: KindInternal, RunID: runID, Err: err}

	var routingErr *flowgraph.RoutingError
	var backendErr *llm.BackendError
	var nodeErr *flowgraph.NodeError
	var panicErr *flowgraph.PanicError
	switch {
	case errors.As(err, &routingErr):
		runErr.Kind = KindRouting
		runErr.Node = routingErr.FromNode
		return runErr
	case errors.As(err, &backendErr):
		runErr.Kind = KindBackend
	}

	switch {
	case errors.As(err, &nodeErr):
		runErr.Node = nodeErr.NodeID
	case errors.As(err, &panicErr):
		runErr.Node = panicErr.NodeID
	}
	return runErr
}
