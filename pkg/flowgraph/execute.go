package flowgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/randalmurphal/intentgraph/pkg/flowgraph/checkpoint"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Run executes the graph with the given initial state.
// Returns the final state and any error encountered.
//
// On success, returns the state produced by the terminal node (or by the
// last node before END when no terminal is set).
// On error, returns the state at the point of failure (useful for debugging).
//
// Execution flow:
//  1. Start at the entry point node
//  2. Check for cancellation
//  3. Execute the current node
//  4. Stop if it was the terminal node
//  5. Determine the next node (via fixed or conditional edge)
//  6. Repeat until END is reached or an error occurs
//
// Example:
//
//	ctx := flowgraph.NewContext(context.Background())
//	result, err := compiled.Run(ctx, initialState)
//	if err != nil {
//	    // result contains state at point of failure
//	}
func (cg *CompiledGraph[S]) Run(ctx Context, state S, opts ...RunOption) (result S, runErr error) {
	if ctx == nil {
		return state, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.runID == "" {
		cfg.runID = ctx.RunID()
	}
	if cfg.checkpointStore != nil && cfg.runID == "" {
		return state, ErrRunIDRequired
	}

	startTime := time.Now()
	observability.LogRunStart(cfg.logger, cfg.runID)

	var tracingCtx context.Context = ctx
	if cfg.tracingEnabled {
		var runSpan trace.Span
		tracingCtx, runSpan = cfg.spans.StartRunSpan(ctx, cfg.graphName, cfg.runID)
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	var nodeCount int
	result, nodeCount, runErr = cg.execute(tracingCtx, ctx, state, &cfg)

	duration := time.Since(startTime)
	durationMs := float64(duration.Milliseconds())

	cfg.metrics.RecordGraphRun(tracingCtx, runErr == nil, duration)

	if runErr != nil {
		observability.LogRunError(cfg.logger, cfg.runID, runErr, durationMs, lastNodeOf(runErr))
	} else {
		observability.LogRunComplete(cfg.logger, cfg.runID, durationMs, nodeCount)
	}

	return result, runErr
}

// lastNodeOf extracts the failing node from an execution error, if any.
func lastNodeOf(err error) string {
	var nodeErr *NodeError
	var panicErr *PanicError
	var routingErr *RoutingError
	var maxErr *MaxIterationsError
	var cancelErr *CancellationError
	switch {
	case errors.As(err, &nodeErr):
		return nodeErr.NodeID
	case errors.As(err, &panicErr):
		return panicErr.NodeID
	case errors.As(err, &routingErr):
		return routingErr.FromNode
	case errors.As(err, &maxErr):
		return maxErr.LastNodeID
	case errors.As(err, &cancelErr):
		return cancelErr.NodeID
	}
	return ""
}

// execute runs the traversal loop.
// tracingCtx carries span context; fgCtx is the flowgraph Context.
// Returns the final state, node count, and any error.
func (cg *CompiledGraph[S]) execute(tracingCtx context.Context, fgCtx Context, state S, cfg *runConfig) (S, int, error) {
	current := cg.entryPoint
	iterations := 0
	prevNode := ""
	nodeCount := 0

	for current != END {
		iterations++
		if iterations > cfg.maxIterations {
			return state, nodeCount, &MaxIterationsError{
				Max:        cfg.maxIterations,
				LastNodeID: current,
				State:      state,
			}
		}

		select {
		case <-fgCtx.Done():
			return state, nodeCount, &CancellationError{
				NodeID: current,
				State:  state,
				Cause:  fgCtx.Err(),
			}
		default:
		}

		observability.LogNodeStart(cfg.logger, current)

		nodeTracingCtx := tracingCtx
		var spanCtx context.Context
		var nodeSpan trace.Span
		if cfg.tracingEnabled {
			nodeTracingCtx, nodeSpan = cfg.spans.StartNodeSpan(tracingCtx, current)
			spanCtx = nodeTracingCtx
		}

		nodeStart := time.Now()

		var nodeErr error
		state, nodeErr = cg.executeNode(fgCtx, spanCtx, current, state)

		nodeDuration := time.Since(nodeStart)

		cfg.metrics.RecordNodeExecution(nodeTracingCtx, current, nodeDuration, nodeErr)
		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(nodeSpan, nodeErr)
		}

		if nodeErr != nil {
			observability.LogNodeError(cfg.logger, current, nodeErr)
			return state, nodeCount, nodeErr
		}
		observability.LogNodeComplete(cfg.logger, current, float64(nodeDuration.Milliseconds()))
		nodeCount++

		for _, observe := range cfg.observers {
			observe(current, state)
		}

		next, err := cg.nextNode(fgCtx, tracingCtx, state, current, cfg)
		if err != nil {
			return state, nodeCount, err
		}

		if cfg.checkpointStore != nil {
			if err := cg.saveCheckpoint(tracingCtx, cfg, current, prevNode, state, next); err != nil {
				return state, nodeCount, err
			}
		}

		prevNode = current
		current = next
	}

	return state, nodeCount, nil
}

// saveCheckpoint writes a journal entry for the node that just completed.
func (cg *CompiledGraph[S]) saveCheckpoint(ctx context.Context, cfg *runConfig, nodeID, prevNodeID string, state S, nextNode string) error {
	fail := func(op string, err error) error {
		if cfg.checkpointFailureFatal {
			return &CheckpointError{NodeID: nodeID, Op: op, Err: err}
		}
		observability.LogCheckpointError(cfg.logger, nodeID, op, err)
		return nil
	}

	stateBytes, err := json.Marshal(state)
	if err != nil {
		return fail("serialize", err)
	}

	cfg.sequence++
	rec, err := checkpoint.New(cfg.runID, nodeID, cfg.sequence, stateBytes, nextNode).
		WithPrevNode(prevNodeID).
		Record()
	if err != nil {
		return fail("marshal", err)
	}

	if err := cfg.checkpointStore.Append(ctx, rec); err != nil {
		return fail("save", err)
	}

	sizeBytes := len(rec.Data)
	observability.LogCheckpoint(cfg.logger, nodeID, sizeBytes)
	cfg.metrics.RecordCheckpoint(ctx, nodeID, int64(sizeBytes))

	return nil
}

// executeNode executes a single node with panic recovery.
// spanCtx, when non-nil, carries the node span into the node's Context.
// Returns the new state and any error (including wrapped panics).
func (cg *CompiledGraph[S]) executeNode(ctx Context, spanCtx context.Context, nodeID string, state S) (result S, err error) {
	fn, exists := cg.getNode(nodeID)
	if !exists {
		// Compile guarantees every reachable target exists.
		return state, &NodeError{
			NodeID: nodeID,
			Op:     "lookup",
			Err:    fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID),
		}
	}

	nodeCtx := ctx
	if ec, ok := ctx.(*executionContext); ok {
		if spanCtx != nil {
			ec = ec.withTracing(spanCtx)
		}
		nodeCtx = ec.withNodeID(nodeID)
	}

	defer func() {
		if r := recover(); r != nil {
			result = state
			err = &PanicError{
				NodeID: nodeID,
				Value:  r,
				Stack:  string(debug.Stack()),
			}
		}
	}()

	result, err = fn(nodeCtx, state)
	if err != nil {
		return result, &NodeError{
			NodeID: nodeID,
			Op:     "execute",
			Err:    err,
		}
	}

	return result, nil
}

// nextNode determines the node that follows current.
// The terminal node always leads to END; otherwise the conditional edge
// is resolved if present, else the fixed edge is followed.
func (cg *CompiledGraph[S]) nextNode(ctx Context, tracingCtx context.Context, state S, current string, cfg *runConfig) (string, error) {
	if current == cg.terminal {
		return END, nil
	}

	if edge, exists := cg.getConditional(current); exists {
		routerCtx := ctx
		if ec, ok := ctx.(*executionContext); ok {
			routerCtx = ec.withNodeID(current)
		}

		key, next, err := edge.resolve(routerCtx, state)
		if err != nil {
			return "", &RoutingError{FromNode: current, Key: key, Err: err}
		}

		if next != END {
			if _, exists := cg.getNode(next); !exists {
				return "", &RoutingError{
					FromNode: current,
					Key:      key,
					Err:      ErrRouterTargetNotFound,
				}
			}
		}

		observability.LogRoute(cfg.logger, current, key, next)
		cfg.metrics.RecordRoute(tracingCtx, current, key)
		cfg.spans.AddSpanEvent(tracingCtx, "route.selected",
			attribute.String("from_node", current),
			attribute.String("key", key),
			attribute.String("target", next))
		return next, nil
	}

	next, exists := cg.getEdge(current)
	if !exists {
		// Compile rejects non-terminal nodes without an outgoing edge.
		return "", &NodeError{
			NodeID: current,
			Op:     "routing",
			Err:    fmt.Errorf("%w: %s", ErrNoOutgoingEdge, current),
		}
	}

	return next, nil
}
