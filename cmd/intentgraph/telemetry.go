package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/randalmurphal/intentgraph/pkg/flowgraph"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/observability"
)

// telemetry owns the in-process OTel providers. Finished spans are logged
// as they end; metrics are collected and logged once on shutdown.
type telemetry struct {
	logger  *slog.Logger
	reader  *sdkmetric.ManualReader
	meters  *sdkmetric.MeterProvider
	tracers *sdktrace.TracerProvider
	runOpts []flowgraph.RunOption
}

func setupTelemetry(metrics, tracing bool, logger *slog.Logger) (*telemetry, error) {
	t := &telemetry{logger: logger}

	if metrics {
		t.reader = sdkmetric.NewManualReader()
		t.meters = sdkmetric.NewMeterProvider(sdkmetric.WithReader(t.reader))
		otel.SetMeterProvider(t.meters)

		rec, err := observability.NewMetricsRecorderWithMeter(t.meters.Meter("intentgraph"))
		if err != nil {
			return nil, fmt.Errorf("creating metrics recorder: %w", err)
		}
		t.runOpts = append(t.runOpts, flowgraph.WithMetricsRecorder(rec))
	}

	if tracing {
		t.tracers = sdktrace.NewTracerProvider(sdktrace.WithSyncer(&spanLogger{logger: logger}))
		// Backend clients start their spans on the global provider.
		otel.SetTracerProvider(t.tracers)
		t.runOpts = append(t.runOpts, flowgraph.WithSpanManager(
			observability.NewSpanManagerWithTracer(t.tracers.Tracer("intentgraph"))))
	}

	return t, nil
}

// RunOptions returns the graph run options that record to these providers.
func (t *telemetry) RunOptions() []flowgraph.RunOption {
	return t.runOpts
}

// Shutdown logs the collected metrics and stops the providers.
func (t *telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.meters != nil {
		var rm metricdata.ResourceMetrics
		if err := t.reader.Collect(ctx, &rm); err != nil {
			errs = append(errs, fmt.Errorf("collecting metrics: %w", err))
		} else {
			logMetrics(t.logger, rm)
		}
		errs = append(errs, t.meters.Shutdown(ctx))
	}
	if t.tracers != nil {
		errs = append(errs, t.tracers.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// logMetrics writes one line per data point of the counters and histograms.
func logMetrics(logger *slog.Logger, rm metricdata.ResourceMetrics) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					logger.Info("metric", append(attrArgs(dp.Attributes.ToSlice()),
						slog.String("name", m.Name),
						slog.Int64("value", dp.Value))...)
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					logger.Info("metric", append(attrArgs(dp.Attributes.ToSlice()),
						slog.String("name", m.Name),
						slog.Uint64("count", dp.Count),
						slog.Float64("sum", dp.Sum))...)
				}
			case metricdata.Histogram[int64]:
				for _, dp := range data.DataPoints {
					logger.Info("metric", append(attrArgs(dp.Attributes.ToSlice()),
						slog.String("name", m.Name),
						slog.Uint64("count", dp.Count),
						slog.Int64("sum", dp.Sum))...)
				}
			}
		}
	}
}

func attrArgs(kvs []attribute.KeyValue) []any {
	args := make([]any, 0, len(kvs))
	for _, kv := range kvs {
		args = append(args, slog.String(string(kv.Key), kv.Value.Emit()))
	}
	return args
}

// spanLogger is a SpanExporter that logs every finished span.
type spanLogger struct {
	logger *slog.Logger
}

func (e *spanLogger) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		args := []any{
			slog.String("name", s.Name()),
			slog.String("trace_id", s.SpanContext().TraceID().String()),
			slog.String("span_id", s.SpanContext().SpanID().String()),
			slog.Float64("duration_ms", float64(s.EndTime().Sub(s.StartTime()).Microseconds())/1000),
			slog.String("status", s.Status().Code.String()),
		}
		if s.Parent().IsValid() {
			args = append(args, slog.String("parent_id", s.Parent().SpanID().String()))
		}
		if s.Status().Description != "" {
			args = append(args, slog.String("error", s.Status().Description))
		}
		e.logger.Info("span", args...)
	}
	return nil
}

func (e *spanLogger) Shutdown(context.Context) error {
	return nil
}
