// Package llm provides text-completion clients for the recommendation
// pipeline. It supports the Google generative language API and
// OpenAI-compatible chat completion endpoints.
//
// Clients return only real model text. Provider debug payloads, SDK error
// reprs and empty candidates are never surfaced as completion text; callers
// see an error instead and fall back to their deterministic paths.
package llm

import (
	"context"
	"errors"
	"time"
)

// Default configuration values.
const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultTimeout       = 30 * time.Second
	defaultMaxRetries    = 2
	defaultBaseBackoff   = 1 * time.Second
)

// Rate limiter defaults: 50 requests per minute.
const (
	defaultRateLimit = 50.0 / 60.0
	defaultBurst     = 5
)

// ErrNoContent indicates the provider returned a reply with no usable text.
var ErrNoContent = errors.New("no text content in completion response")

// ErrDisabled indicates the completion provider is configured off.
var ErrDisabled = errors.New("completion provider disabled")

// CompletionRequest describes one bounded text-completion call.
type CompletionRequest struct {
	System          string
	User            string
	Temperature     float64
	MaxOutputTokens int
}

// Completer issues bounded text-completion requests.
type Completer interface {
	// Complete returns the model's text reply. It returns an error when
	// the provider fails or the reply carries no usable text; callers are
	// expected to degrade to deterministic fallbacks.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Config holds provider configuration.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// retryableError wraps an error to indicate it can be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryableError checks if an error should be retried.
func isRetryableError(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
