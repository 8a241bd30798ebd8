package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/intentgraph/internal/logging"
	"github.com/randalmurphal/intentgraph/internal/render"
	"github.com/randalmurphal/intentgraph/internal/settings"
	"github.com/randalmurphal/intentgraph/pkg/agent"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/checkpoint"
	fgerrors "github.com/randalmurphal/intentgraph/pkg/flowgraph/errors"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/llm"
)

// app is everything a command needs to answer requests.
type app struct {
	settings settings.Settings
	logger   *slog.Logger
	agent    *agent.Agent
	out      *render.Renderer

	journal   checkpoint.Store
	telemetry *telemetry
}

// newApp resolves settings and wires the backend, journal, telemetry and
// agent together. Call close when done.
func newApp(cmd *cobra.Command, f *rootFlags) (*app, error) {
	s, err := f.resolve(cmd)
	if err != nil {
		return nil, err
	}

	a := &app{
		settings: s,
		logger:   logging.New(s.LogLevel(), cmd.ErrOrStderr()),
	}

	a.out, err = render.New(cmd.OutOrStdout(), s.RenderMode())
	if err != nil {
		return nil, err
	}

	retryOpts := append(s.RetryOptions(), fgerrors.WithOnRetry(func(attempt int, err error, wait time.Duration) {
		a.logger.Warn("retrying backend call", "attempt", attempt, "wait", wait, "error", err)
	}))
	client, err := llm.NewClient(s.Backend.Provider, s.BackendConfig(), retryOpts...)
	if err != nil {
		return nil, err
	}

	templates, err := agent.ParseTemplates(s.Templates)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	opts := []agent.Option{
		agent.WithTemplates(templates),
		agent.WithLogger(a.logger),
		agent.WithLifecycleLogging(true),
	}

	if s.Journal.Path != "" {
		store, err := checkpoint.NewSQLiteStore(s.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("opening journal: %w", err)
		}
		a.journal = store
		opts = append(opts, agent.WithJournal(store))
	}

	if s.Telemetry.Metrics || s.Telemetry.Tracing {
		t, err := setupTelemetry(s.Telemetry.Metrics, s.Telemetry.Tracing,
			logging.New(slog.LevelInfo, cmd.ErrOrStderr()))
		if err != nil {
			a.close(cmd.Context())
			return nil, err
		}
		a.telemetry = t
		opts = append(opts, agent.WithRunOptions(t.RunOptions()...))
	}

	a.agent, err = agent.New(llm.NewGenerator(client), opts...)
	if err != nil {
		a.close(cmd.Context())
		return nil, err
	}

	a.logger.Debug("backend ready",
		slog.String("provider", s.Backend.Provider),
		slog.String("model", s.Backend.Model))
	return a, nil
}

// close flushes telemetry and closes the journal. Failures are logged.
func (a *app) close(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	var errs []error
	if a.telemetry != nil {
		errs = append(errs, a.telemetry.Shutdown(ctx))
	}
	if a.journal != nil {
		errs = append(errs, a.journal.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("shutdown failed", slog.String("error", err.Error()))
	}
}
