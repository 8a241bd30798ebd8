package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/intentgraph/internal/settings"
)

// rootFlags are the persistent flags. Each one overrides the config file
// only when set on the command line.
type rootFlags struct {
	configPath string
	provider   string
	model      string
	endpoint   string
	logLevel   string
	markdown   string
	journal    string
	metrics    bool
	tracing    bool
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "intentgraph",
		Short: "Route requests to intent-specific LLM handlers",
		Long: `intentgraph classifies each request as math, summary, explanation or
general query, sends it to a handler with a matching prompt, and prints
the answer. Without a subcommand it starts the interactive menu.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "Config file (.yaml, .yml or .json)")
	pf.StringVar(&f.provider, "provider", "", "Backend provider: ollama, claude-cli or mock")
	pf.StringVar(&f.model, "model", "", "Backend model (default: provider default)")
	pf.StringVar(&f.endpoint, "endpoint", "", "Backend endpoint (ollama)")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&f.markdown, "markdown", "", "Render answers as markdown: auto, always, never")
	pf.StringVar(&f.journal, "journal", "", "SQLite file to record each run's steps in")
	pf.BoolVar(&f.metrics, "metrics", false, "Log OpenTelemetry metrics on exit")
	pf.BoolVar(&f.tracing, "tracing", false, "Log OpenTelemetry spans as they finish")

	chatCmd := newChatCmd(f)
	rootCmd.AddCommand(chatCmd, newAskCmd(f), newClassifyCmd(), newGraphCmd(f), newJournalCmd(f))
	rootCmd.RunE = chatCmd.RunE

	return rootCmd
}

// Execute runs the root command. An interrupt cancels the running request.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

// resolve loads the config file and applies the flags set on cmd.
func (f *rootFlags) resolve(cmd *cobra.Command) (settings.Settings, error) {
	s, err := settings.Load(f.configPath)
	if err != nil {
		return s, err
	}

	changed := cmd.Flags().Changed
	if changed("provider") {
		s.Backend.Provider = f.provider
	}
	if changed("model") {
		s.Backend.Model = f.model
	}
	if changed("endpoint") {
		s.Backend.Endpoint = f.endpoint
	}
	if changed("log-level") {
		s.Log.Level = f.logLevel
	}
	if changed("markdown") {
		s.Render.Markdown = f.markdown
	}
	if changed("journal") {
		s.Journal.Path = f.journal
	}
	if changed("metrics") {
		s.Telemetry.Metrics = f.metrics
	}
	if changed("tracing") {
		s.Telemetry.Tracing = f.tracing
	}

	return s, s.Validate()
}
