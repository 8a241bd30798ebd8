package llm

import (
	"context"

	fgerrors "github.com/randalmurphal/intentgraph/pkg/flowgraph/errors"
)

// retryingClient retries transient failures of the wrapped client.
type retryingClient struct {
	client Client
	cfg    fgerrors.RetryConfig
}

// WithRetries wraps client so that transient failures are retried with
// exponential backoff according to cfg. A cfg allowing a single attempt
// returns client unchanged.
//
// When every attempt fails the returned *BackendError wraps the
// *fgerrors.CategorizedError describing the attempts, which in turn wraps
// the last failure.
func WithRetries(client Client, cfg fgerrors.RetryConfig) Client {
	if cfg.MaxAttempts <= 1 {
		return client
	}
	return &retryingClient{client: client, cfg: cfg}
}

// Complete implements Client.
func (r *retryingClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	result := fgerrors.WithRetryContext(ctx, r.cfg, func(ctx context.Context) (*CompletionResponse, error) {
		return r.client.Complete(ctx, req)
	})
	if result.Err != nil {
		return nil, NewError("complete", result.Err, false)
	}
	return result.Value, nil
}
