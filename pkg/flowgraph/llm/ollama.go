package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	fgerrors "github.com/randalmurphal/intentgraph/pkg/flowgraph/errors"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/observability"
	"go.opentelemetry.io/otel/attribute"
)

// Defaults for the Ollama client.
const (
	DefaultOllamaEndpoint = "http://localhost:11434"
	DefaultOllamaModel    = "mistral"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 4 << 10

// Ollama implements Client against an Ollama server's /api/generate endpoint.
type Ollama struct {
	endpoint   string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

// OllamaOption configures Ollama.
type OllamaOption func(*Ollama)

// NewOllama creates an Ollama client.
// Defaults to DefaultOllamaEndpoint, DefaultOllamaModel and a five minute timeout.
func NewOllama(opts ...OllamaOption) *Ollama {
	o := &Ollama{
		endpoint:   DefaultOllamaEndpoint,
		model:      DefaultOllamaModel,
		timeout:    5 * time.Minute,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.endpoint = strings.TrimRight(o.endpoint, "/")
	return o
}

// WithEndpoint sets the server base URL.
func WithEndpoint(url string) OllamaOption {
	return func(o *Ollama) {
		if url != "" {
			o.endpoint = url
		}
	}
}

// WithOllamaModel sets the default model.
func WithOllamaModel(model string) OllamaOption {
	return func(o *Ollama) {
		if model != "" {
			o.model = model
		}
	}
}

// WithOllamaTimeout bounds each request. Zero disables the limit.
func WithOllamaTimeout(d time.Duration) OllamaOption {
	return func(o *Ollama) { o.timeout = d }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) OllamaOption {
	return func(o *Ollama) {
		if c != nil {
			o.httpClient = c
		}
	}
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error"`
}

// Complete implements Client.
func (o *Ollama) Complete(ctx context.Context, req CompletionRequest) (resp *CompletionResponse, err error) {
	start := time.Now()

	model := o.model
	if req.Model != "" {
		model = req.Model
	}
	url := o.endpoint + "/api/generate"

	ctx, span := observability.StartClientSpan(ctx, "ollama.generate",
		attribute.String("llm.model", model),
		attribute.String("http.url", url),
	)
	defer func() { observability.EndSpanWithError(span, err) }()

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	body := ollamaRequest{
		Model:  model,
		Prompt: req.Prompt(),
		System: req.SystemPrompt,
	}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		body.Options = map[string]any{}
		if req.MaxTokens > 0 {
			body.Options["num_predict"] = req.MaxTokens
		}
		if req.Temperature > 0 {
			body.Options["temperature"] = req.Temperature
		}
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, NewError("complete", fmt.Errorf("encoding request: %w", err), false)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, NewError("complete", fmt.Errorf("creating request: %w", err), false)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := o.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewError("complete", &fgerrors.TimeoutError{Operation: "ollama generate", After: o.timeout}, true)
		}
		return nil, NewError("complete", fmt.Errorf("calling ollama: %w", err), fgerrors.IsRetryable(err))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		httpErr := &fgerrors.HTTPError{
			StatusCode: httpResp.StatusCode,
			Message:    errorMessage(httpResp.Body),
			Endpoint:   url,
		}
		return nil, NewError("complete", httpErr, fgerrors.IsRetryable(httpErr))
	}

	var out ollamaResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, NewError("complete", &fgerrors.MalformedResponseError{
			Source: "ollama",
			Reason: "undecodable body",
			Err:    err,
		}, false)
	}
	if out.Error != "" {
		return nil, NewError("complete", &fgerrors.MalformedResponseError{
			Source: "ollama",
			Reason: out.Error,
		}, false)
	}

	finish := out.DoneReason
	if finish == "" {
		finish = "stop"
	}
	if out.Model == "" {
		out.Model = model
	}

	return &CompletionResponse{
		Content:      out.Response,
		Model:        out.Model,
		FinishReason: finish,
		Usage: TokenUsage{
			InputTokens:  out.PromptEvalCount,
			OutputTokens: out.EvalCount,
			TotalTokens:  out.PromptEvalCount + out.EvalCount,
		},
		Duration: time.Since(start),
	}, nil
}

// errorMessage extracts the "error" field of an Ollama error body,
// falling back to the raw text.
func errorMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
