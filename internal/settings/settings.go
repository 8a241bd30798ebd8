// Package settings holds the application settings loaded from an
// optional config file and overridden by command-line flags.
package settings

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/intentgraph/internal/logging"
	"github.com/randalmurphal/intentgraph/internal/render"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/config"
	fgerrors "github.com/randalmurphal/intentgraph/pkg/flowgraph/errors"
)

// Settings is the full application configuration.
type Settings struct {
	Backend   Backend           `mapstructure:"backend"`
	Log       Log               `mapstructure:"log"`
	Render    Render            `mapstructure:"render"`
	Templates map[string]string `mapstructure:"templates"`
	Journal   Journal           `mapstructure:"journal"`
	Telemetry Telemetry         `mapstructure:"telemetry"`
}

// Backend selects and configures the text-generation backend.
// Empty fields fall back to the provider's own defaults.
type Backend struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	Endpoint    string        `mapstructure:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Retry       Retry         `mapstructure:"retry"`

	// claude-cli only.
	Path    string `mapstructure:"path"`
	Workdir string `mapstructure:"workdir"`

	// mock only.
	Response string `mapstructure:"response"`
}

// Retry tunes the backoff between attempts when MaxAttempts is above 1.
// Zero values keep the library defaults.
type Retry struct {
	Backoff    time.Duration `mapstructure:"backoff"`
	MaxBackoff time.Duration `mapstructure:"max_backoff"`
	Jitter     *float64      `mapstructure:"jitter"`
}

// Log configures the application logger.
type Log struct {
	Level string `mapstructure:"level"`
}

// Render configures answer rendering.
type Render struct {
	Markdown string `mapstructure:"markdown"`
}

// Journal configures the per-run step journal.
type Journal struct {
	// Path is a SQLite file. Empty disables the journal.
	Path string `mapstructure:"path"`
}

// Telemetry toggles OpenTelemetry instrumentation.
type Telemetry struct {
	Metrics bool `mapstructure:"metrics"`
	Tracing bool `mapstructure:"tracing"`
}

// Default returns the settings used with no config file and no flags:
// the local Ollama server with its default model.
func Default() Settings {
	return Settings{
		Backend: Backend{
			Provider:    "ollama",
			Timeout:     5 * time.Minute,
			MaxAttempts: 1,
		},
		Log:    Log{Level: "warn"},
		Render: Render{Markdown: string(render.ModeAuto)},
	}
}

// Load returns the defaults overlaid with the file at path.
// An empty path returns the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	cfg, err := config.FromFile(path)
	if err != nil {
		return s, fmt.Errorf("loading settings: %w", err)
	}
	if err := cfg.Decode(&s); err != nil {
		return s, fmt.Errorf("loading settings from %s: %w", path, err)
	}
	return s, s.Validate()
}

// Validate checks the enumerated fields.
func (s Settings) Validate() error {
	if s.Backend.Provider == "" {
		return fmt.Errorf("backend.provider is required")
	}
	if s.Backend.MaxAttempts < 0 {
		return fmt.Errorf("backend.max_attempts must not be negative")
	}
	if r := s.Backend.Retry; r.Backoff < 0 || r.MaxBackoff < 0 {
		return fmt.Errorf("backend.retry backoffs must not be negative")
	}
	if j := s.Backend.Retry.Jitter; j != nil && (*j < 0 || *j > 1) {
		return fmt.Errorf("backend.retry.jitter must be between 0 and 1")
	}
	if _, err := logging.ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := render.ParseMode(s.Render.Markdown); err != nil {
		return fmt.Errorf("render.markdown: %w", err)
	}
	return nil
}

// LogLevel returns the parsed log level, warn if invalid.
func (s Settings) LogLevel() slog.Level {
	level, _ := logging.ParseLevel(s.Log.Level)
	return level
}

// RenderMode returns the parsed render mode, auto if invalid.
func (s Settings) RenderMode() render.Mode {
	mode, _ := render.ParseMode(s.Render.Markdown)
	return mode
}

// BackendConfig returns the backend section in the form provider
// factories read. Unset fields are omitted so factory defaults apply.
func (s Settings) BackendConfig() config.Config {
	b := s.Backend
	m := map[string]any{}
	set := func(key, val string) {
		if val != "" {
			m[key] = val
		}
	}
	set("model", b.Model)
	set("endpoint", b.Endpoint)
	set("path", b.Path)
	set("workdir", b.Workdir)
	set("response", b.Response)
	if b.Timeout > 0 {
		m["timeout"] = b.Timeout
	}
	if b.MaxAttempts > 0 {
		m["max_attempts"] = b.MaxAttempts
	}
	return config.New(m)
}

// RetryOptions returns the backoff overrides set in backend.retry.
func (s Settings) RetryOptions() []fgerrors.RetryOption {
	r := s.Backend.Retry
	var opts []fgerrors.RetryOption
	if r.Backoff > 0 {
		opts = append(opts, fgerrors.WithInitialBackoff(r.Backoff))
	}
	if r.MaxBackoff > 0 {
		opts = append(opts, fgerrors.WithMaxBackoff(r.MaxBackoff))
	}
	if r.Jitter != nil {
		opts = append(opts, fgerrors.WithJitter(*r.Jitter))
	}
	return opts
}
