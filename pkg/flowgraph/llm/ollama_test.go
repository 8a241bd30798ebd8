package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	fgerrors "github.com/randalmurphal/intentgraph/pkg/flowgraph/errors"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ollamaServer starts a test server that answers /api/generate with handler.
func ollamaServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestOllama_Complete(t *testing.T) {
	var got map[string]any
	srv := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":             "mistral",
			"response":          "4",
			"done":              true,
			"done_reason":       "stop",
			"prompt_eval_count": 7,
			"eval_count":        1,
		})
	})

	client := llm.NewOllama(llm.WithEndpoint(srv.URL + "/"))
	resp, err := client.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Solve this: 2 + 2"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "4", resp.Content)
	assert.Equal(t, "mistral", resp.Model)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, llm.TokenUsage{InputTokens: 7, OutputTokens: 1, TotalTokens: 8}, resp.Usage)

	assert.Equal(t, "mistral", got["model"])
	assert.Equal(t, "Solve this: 2 + 2", got["prompt"])
	assert.Equal(t, false, got["stream"])
	assert.NotContains(t, got, "options")
}

func TestOllama_RequestOptions(t *testing.T) {
	var got map[string]any
	srv := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"ok","done":true}`))
	})

	client := llm.NewOllama(llm.WithEndpoint(srv.URL), llm.WithOllamaModel("llama3"))
	resp, err := client.Complete(context.Background(), llm.CompletionRequest{
		SystemPrompt: "be brief",
		Model:        "phi3",
		MaxTokens:    64,
		Temperature:  0.2,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "phi3", resp.Model, "falls back to the requested model")
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, "phi3", got["model"])
	assert.Equal(t, "be brief", got["system"])
	opts, ok := got["options"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 64, opts["num_predict"])
	assert.EqualValues(t, 0.2, opts["temperature"])
}

func TestOllama_HTTPErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		message   string
		retryable bool
	}{
		{name: "model missing", status: http.StatusNotFound, body: `{"error":"model 'x' not found"}`, message: "model 'x' not found"},
		{name: "bad request", status: http.StatusBadRequest, body: "plain failure", message: "plain failure"},
		{name: "overloaded", status: http.StatusServiceUnavailable, body: `{"error":"busy"}`, message: "busy", retryable: true},
		{name: "rate limited", status: http.StatusTooManyRequests, body: "", message: "", retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := ollamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := llm.NewOllama(llm.WithEndpoint(srv.URL)).Complete(context.Background(), llm.CompletionRequest{})

			var be *llm.BackendError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tt.retryable, be.Retryable)

			var httpErr *fgerrors.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.message, httpErr.Message)
			assert.Equal(t, srv.URL+"/api/generate", httpErr.Endpoint)
		})
	}
}

func TestOllama_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "<html>"},
		{name: "error payload", body: `{"error":"out of memory"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := ollamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := llm.NewOllama(llm.WithEndpoint(srv.URL)).Complete(context.Background(), llm.CompletionRequest{})

			var malformed *fgerrors.MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, "ollama", malformed.Source)
			assert.False(t, fgerrors.IsRetryable(err))
		})
	}
}

func TestOllama_Timeout(t *testing.T) {
	srv := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	client := llm.NewOllama(llm.WithEndpoint(srv.URL), llm.WithOllamaTimeout(20*time.Millisecond))
	_, err := client.Complete(context.Background(), llm.CompletionRequest{})

	var timeout *fgerrors.TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, 20*time.Millisecond, timeout.After)
	assert.True(t, fgerrors.IsRetryable(err))
}

func TestOllama_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := llm.NewOllama(llm.WithEndpoint(url)).Complete(context.Background(), llm.CompletionRequest{})

	var be *llm.BackendError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, err.Error(), "calling ollama")
}

func TestOllama_WithHTTPClient(t *testing.T) {
	srv := ollamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":"via custom client","done":true}`))
	})

	client := llm.NewOllama(llm.WithEndpoint(srv.URL), llm.WithHTTPClient(srv.Client()))
	resp, err := client.Complete(context.Background(), llm.CompletionRequest{})

	require.NoError(t, err)
	assert.Equal(t, "via custom client", resp.Content)
}
