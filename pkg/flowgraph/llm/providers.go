package llm

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/randalmurphal/intentgraph/pkg/flowgraph/config"
	fgerrors "github.com/randalmurphal/intentgraph/pkg/flowgraph/errors"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/registry"
)

// Factory builds a Client from a backend configuration section.
type Factory func(cfg config.Config) (Client, error)

// ErrUnknownProvider indicates no factory is registered under a name.
var ErrUnknownProvider = errors.New("unknown llm provider")

var providers = registry.New[string, Factory]()

func init() {
	RegisterProvider("ollama", func(cfg config.Config) (Client, error) {
		return NewOllama(
			WithEndpoint(cfg.String("endpoint", DefaultOllamaEndpoint)),
			WithOllamaModel(cfg.String("model", DefaultOllamaModel)),
			WithOllamaTimeout(cfg.Duration("timeout", 5*time.Minute)),
		), nil
	})
	RegisterProvider("claude-cli", func(cfg config.Config) (Client, error) {
		return NewClaudeCLI(
			WithClaudePath(cfg.String("path", "claude")),
			WithModel(cfg.String("model", "")),
			WithWorkdir(cfg.String("workdir", "")),
			WithTimeout(cfg.Duration("timeout", 5*time.Minute)),
		), nil
	})
	RegisterProvider("mock", func(cfg config.Config) (Client, error) {
		return NewMockClient(cfg.String("response", "This is a mock response.")), nil
	})
}

// RegisterProvider makes a backend available under name.
// Registering an existing name replaces it.
func RegisterProvider(name string, f Factory) {
	providers.Register(name, f)
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	return registry.SortedKeys(providers)
}

// NewClient builds the client registered under name.
//
// The "max_attempts" key, when above 1, wraps the client with WithRetries.
// retryOpts adjust the default backoff of that wrapper.
func NewClient(name string, cfg config.Config, retryOpts ...fgerrors.RetryOption) (Client, error) {
	factory, ok := providers.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownProvider, name, strings.Join(Providers(), ", "))
	}

	client, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", name, err)
	}

	if attempts := cfg.Int("max_attempts", 1); attempts > 1 {
		opts := append([]fgerrors.RetryOption{fgerrors.WithMaxAttempts(attempts)}, retryOpts...)
		client = WithRetries(client, fgerrors.NewRetryConfig(opts...))
	}
	return client, nil
}
