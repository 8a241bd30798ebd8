package flowgraph

import (
	"log/slog"

	"github.com/randalmurphal/intentgraph/pkg/flowgraph/checkpoint"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/observability"
)

// runConfig holds configuration for graph execution.
type runConfig struct {
	maxIterations int
	runID         string

	// Observability
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
	graphName      string

	// Run journal
	checkpointStore        checkpoint.Store
	checkpointFailureFatal bool
	sequence               int

	observers []NodeObserver
}

// defaultRunConfig returns the default execution configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		maxIterations: 1000,
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
		graphName:     "flowgraph",
	}
}

// RunOption configures execution behavior.
type RunOption func(*runConfig)

// NodeObserver is called after each node completes successfully,
// with the node ID and the state it produced.
type NodeObserver func(nodeID string, state any)

// WithMaxIterations sets the maximum number of node executions.
// Default: 1000
//
// This prevents graphs with cycles from hanging forever. If a run
// exceeds this limit, Run returns a MaxIterationsError.
func WithMaxIterations(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithRunID sets the run identifier used for the journal and observability.
// Defaults to the Context's RunID.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithObservabilityLogger enables run and node lifecycle logging.
// A nil logger disables lifecycle logging (the default).
func WithObservabilityLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics for the run.
// Uses the global meter provider.
func WithMetrics(enabled bool) RunOption {
	return func(c *runConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans for the run and each node.
// Uses the global tracer provider.
func WithTracing(enabled bool) RunOption {
	return func(c *runConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithMetricsRecorder records run metrics to rec, e.g. one built with
// observability.NewMetricsRecorderWithMeter. A nil rec disables metrics.
func WithMetricsRecorder(rec observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if rec == nil {
			rec = observability.NoopMetrics{}
		}
		c.metrics = rec
	}
}

// WithSpanManager enables tracing through sm. A nil sm disables tracing.
func WithSpanManager(sm observability.SpanManager) RunOption {
	return func(c *runConfig) {
		c.tracingEnabled = sm != nil
		if sm == nil {
			sm = observability.NoopSpanManager{}
		}
		c.spans = sm
	}
}

// WithGraphName sets the name reported on run spans. Default: "flowgraph".
func WithGraphName(name string) RunOption {
	return func(c *runConfig) {
		if name != "" {
			c.graphName = name
		}
	}
}

// WithCheckpointing writes a journal entry to store after every node.
// Entries are keyed by run ID; see WithRunID.
func WithCheckpointing(store checkpoint.Store) RunOption {
	return func(c *runConfig) {
		c.checkpointStore = store
	}
}

// WithCheckpointFailureFatal makes journal write failures abort the run.
// By default they are logged and the run continues.
func WithCheckpointFailureFatal(fatal bool) RunOption {
	return func(c *runConfig) {
		c.checkpointFailureFatal = fatal
	}
}

// WithNodeObserver registers fn to be called after every successful node.
// Observers run synchronously on the run's goroutine.
func WithNodeObserver(fn NodeObserver) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}
