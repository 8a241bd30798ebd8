package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/intentgraph/pkg/flowgraph"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/checkpoint"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/llm"
)

// GraphName identifies the intent graph in traces.
const GraphName = "intentgraph"

// Observer receives the final state of every successful run, from the
// terminal node. It runs on the caller's goroutine.
type Observer func(s State)

// Result is the outcome of a successful run.
type Result struct {
	// Text is the generated answer.
	Text string
	// Intent is the intent the request was classified as.
	Intent Intent
	// RunID identifies the run in logs, traces and the journal.
	RunID string
	// Path lists the nodes visited, in order.
	Path []string
	// Duration is the wall time of the run.
	Duration time.Duration
}

// Agent runs requests through the intent graph.
// It is immutable after New and safe for concurrent use if its
// Generator is.
type Agent struct {
	graph   *flowgraph.CompiledGraph[State]
	logger  *slog.Logger
	runOpts []flowgraph.RunOption
}

type options struct {
	templates Templates
	observer  Observer
	logger    *slog.Logger
	lifecycle bool
	journal   checkpoint.Store
	metrics   bool
	tracing   bool
	extra     []flowgraph.RunOption
}

// Option configures an Agent.
type Option func(*options)

// WithTemplates replaces the handler templates.
func WithTemplates(t Templates) Option {
	return func(o *options) { o.templates = t }
}

// WithObserver registers fn to receive the final state of each successful run.
func WithObserver(fn Observer) Option {
	return func(o *options) { o.observer = fn }
}

// WithLogger sets the logger handed to nodes. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLifecycleLogging enables run and node lifecycle logs on the agent's logger.
func WithLifecycleLogging(enabled bool) Option {
	return func(o *options) { o.lifecycle = enabled }
}

// WithJournal records a snapshot of the state after every node in store,
// keyed by the run ID. Journal write failures are logged, not fatal.
func WithJournal(store checkpoint.Store) Option {
	return func(o *options) { o.journal = store }
}

// WithMetrics enables OpenTelemetry metrics through the global meter provider.
func WithMetrics(enabled bool) Option {
	return func(o *options) { o.metrics = enabled }
}

// WithTracing enables OpenTelemetry spans through the global tracer provider.
func WithTracing(enabled bool) Option {
	return func(o *options) { o.tracing = enabled }
}

// WithRunOptions passes extra options to every graph run, applied after
// the agent's own. Use it to record to explicit providers, e.g.
// flowgraph.WithMetricsRecorder or flowgraph.WithSpanManager.
func WithRunOptions(opts ...flowgraph.RunOption) Option {
	return func(o *options) { o.extra = append(o.extra, opts...) }
}

// New builds and compiles the intent graph around gen.
func New(gen llm.Generator, opts ...Option) (*Agent, error) {
	if gen == nil {
		return nil, errors.New("agent: generator is required")
	}

	o := options{
		templates: DefaultTemplates(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	compiled, err := buildGraph(gen, o.templates, o.observer).Compile()
	if err != nil {
		return nil, fmt.Errorf("agent: compile graph: %w", err)
	}

	runOpts := []flowgraph.RunOption{
		flowgraph.WithGraphName(GraphName),
		flowgraph.WithMetrics(o.metrics),
		flowgraph.WithTracing(o.tracing),
	}
	if o.lifecycle {
		runOpts = append(runOpts, flowgraph.WithObservabilityLogger(o.logger))
	}
	if o.journal != nil {
		runOpts = append(runOpts, flowgraph.WithCheckpointing(o.journal))
	}
	runOpts = append(runOpts, o.extra...)

	return &Agent{graph: compiled, logger: o.logger, runOpts: runOpts}, nil
}

// Graph returns the compiled intent graph, for inspection and export.
func (a *Agent) Graph() *flowgraph.CompiledGraph[State] {
	return a.graph
}

// RunOnce runs one request through the graph with a fresh State.
//
// On failure it returns a zero Result and a *RunError.
func (a *Agent) RunOnce(ctx context.Context, inputText string) (Result, error) {
	start := time.Now()
	fgCtx := flowgraph.NewContext(ctx, flowgraph.WithLogger(a.logger))
	runID := fgCtx.RunID()

	var path []string
	opts := append(a.runOpts[:len(a.runOpts):len(a.runOpts)],
		flowgraph.WithNodeObserver(func(nodeID string, _ any) {
			path = append(path, nodeID)
		}),
	)

	final, err := a.graph.Run(fgCtx, State{InputText: inputText}, opts...)
	if err != nil {
		return Result{}, newRunError(runID, err)
	}

	return Result{
		Text:     final.Result,
		Intent:   Classify(inputText),
		RunID:    runID,
		Path:     path,
		Duration: time.Since(start),
	}, nil
}
