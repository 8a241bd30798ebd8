package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/randalmurphal/intentgraph/pkg/flowgraph/config"
	fgerrors "github.com/randalmurphal/intentgraph/pkg/flowgraph/errors"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviders_Builtin(t *testing.T) {
	assert.Subset(t, llm.Providers(), []string{"claude-cli", "mock", "ollama"})
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		cfg      map[string]any
		check    func(t *testing.T, c llm.Client)
	}{
		{
			name:     "ollama",
			provider: "ollama",
			cfg:      map[string]any{"endpoint": "http://gpu:11434", "model": "llama3", "timeout": "30s"},
			check: func(t *testing.T, c llm.Client) {
				assert.IsType(t, &llm.Ollama{}, c)
			},
		},
		{
			name:     "claude cli",
			provider: "claude-cli",
			cfg:      map[string]any{"model": "sonnet"},
			check: func(t *testing.T, c llm.Client) {
				assert.IsType(t, &llm.ClaudeCLI{}, c)
			},
		},
		{
			name:     "mock with response",
			provider: "mock",
			cfg:      map[string]any{"response": "canned"},
			check: func(t *testing.T, c llm.Client) {
				resp, err := c.Complete(context.Background(), llm.CompletionRequest{})
				require.NoError(t, err)
				assert.Equal(t, "canned", resp.Content)
			},
		},
		{
			name:     "retries wrap the client",
			provider: "mock",
			cfg:      map[string]any{"max_attempts": 3},
			check: func(t *testing.T, c llm.Client) {
				_, isMock := c.(*llm.MockClient)
				assert.False(t, isMock)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := llm.NewClient(tt.provider, config.New(tt.cfg))
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestNewClient_Unknown(t *testing.T) {
	_, err := llm.NewClient("gpt-9", config.New(nil))

	require.ErrorIs(t, err, llm.ErrUnknownProvider)
	assert.Contains(t, err.Error(), "ollama")
}

func TestRegisterProvider(t *testing.T) {
	llm.RegisterProvider("test-echo", func(cfg config.Config) (llm.Client, error) {
		return llm.NewMockClient(cfg.String("prefix", "") + "echo"), nil
	})

	c, err := llm.NewClient("test-echo", config.New(map[string]any{"prefix": ">"}))
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), llm.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, ">echo", resp.Content)
}

func TestNewClient_RetryOptions(t *testing.T) {
	llm.RegisterProvider("test-flaky", func(config.Config) (llm.Client, error) {
		return flakyClient(2, llm.NewError("complete", errors.New("overloaded"), true)), nil
	})

	var waits []time.Duration
	c, err := llm.NewClient("test-flaky", config.New(map[string]any{"max_attempts": 3}),
		fgerrors.WithInitialBackoff(time.Millisecond),
		fgerrors.WithMaxBackoff(2*time.Millisecond),
		fgerrors.WithJitter(0),
		fgerrors.WithOnRetry(func(_ int, _ error, wait time.Duration) {
			waits = append(waits, wait)
		}))
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), llm.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, waits)
}
