package llm_test

import (
	"context"
	"testing"

	"github.com/randalmurphal/intentgraph/pkg/flowgraph/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeCLI_Complete_NonExistentBinary(t *testing.T) {
	client := llm.NewClaudeCLI(llm.WithClaudePath("/nonexistent/claude-binary"))

	_, err := client.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Hello"}},
	})

	var be *llm.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "complete", be.Op)
	assert.False(t, be.Retryable)
}

func TestClaudeCLI_Complete_CancelledContext(t *testing.T) {
	client := llm.NewClaudeCLI(llm.WithClaudePath("/nonexistent/claude-binary"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, llm.CompletionRequest{})

	var be *llm.BackendError
	require.ErrorAs(t, err, &be)
	assert.ErrorIs(t, err, context.Canceled)
}
