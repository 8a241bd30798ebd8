package flowgraph

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/intentgraph/pkg/flowgraph/checkpoint"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/observability"
)

func apply(opts ...RunOption) runConfig {
	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func TestDefaultRunConfig(t *testing.T) {
	cfg := defaultRunConfig()
	assert.Equal(t, 1000, cfg.maxIterations)
	assert.Equal(t, "flowgraph", cfg.graphName)
	assert.Nil(t, cfg.logger)
	assert.Nil(t, cfg.checkpointStore)
	assert.False(t, cfg.tracingEnabled)
	assert.IsType(t, observability.NoopMetrics{}, cfg.metrics)
	assert.IsType(t, observability.NoopSpanManager{}, cfg.spans)
}

func TestRunOptions(t *testing.T) {
	t.Run("max iterations ignores non-positive", func(t *testing.T) {
		assert.Equal(t, 5, apply(WithMaxIterations(5)).maxIterations)
		assert.Equal(t, 1000, apply(WithMaxIterations(0)).maxIterations)
		assert.Equal(t, 1000, apply(WithMaxIterations(-3)).maxIterations)
	})

	t.Run("graph name ignores empty", func(t *testing.T) {
		assert.Equal(t, "intents", apply(WithGraphName("intents")).graphName)
		assert.Equal(t, "flowgraph", apply(WithGraphName("")).graphName)
	})

	t.Run("run id and logger", func(t *testing.T) {
		logger := slog.Default()
		cfg := apply(WithRunID("r-1"), WithObservabilityLogger(logger))
		assert.Equal(t, "r-1", cfg.runID)
		assert.Same(t, logger, cfg.logger)
	})

	t.Run("checkpointing", func(t *testing.T) {
		store := checkpoint.NewMemoryStore()
		cfg := apply(WithCheckpointing(store), WithCheckpointFailureFatal(true))
		assert.Same(t, store, cfg.checkpointStore)
		assert.True(t, cfg.checkpointFailureFatal)
	})

	t.Run("nil observer is skipped", func(t *testing.T) {
		cfg := apply(WithNodeObserver(nil), WithNodeObserver(func(string, any) {}))
		assert.Len(t, cfg.observers, 1)
	})

	t.Run("metrics toggles", func(t *testing.T) {
		assert.IsType(t, observability.NoopMetrics{}, apply(WithMetrics(true), WithMetrics(false)).metrics)
		assert.IsType(t, observability.NoopMetrics{}, apply(WithMetricsRecorder(nil)).metrics)
	})

	t.Run("span manager", func(t *testing.T) {
		cfg := apply(WithSpanManager(observability.NoopSpanManager{}))
		assert.True(t, cfg.tracingEnabled)

		cfg = apply(WithTracing(true), WithSpanManager(nil))
		assert.False(t, cfg.tracingEnabled)
		assert.IsType(t, observability.NoopSpanManager{}, cfg.spans)
	})
}
