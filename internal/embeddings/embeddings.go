// Package embeddings generates vector embeddings for free-text queries
// and vehicle listing documents.
//
// Two providers are supported: the Google generative language embedding
// API, and any OpenAI-compatible embedding endpoint (OpenAI itself or a
// local TEI server) via langchaingo.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "text-embedding-004"

	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "text-embedding-3-small"

	defaultTimeout   = 30 * time.Second
	defaultDimension = 3072
)

// Provider generates embeddings for queries and documents.
type Provider interface {
	// EmbedQuery embeds a single search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments embeds a batch of documents, one vector per input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector dimension the provider produces.
	Dimension() int
}

// Config holds configuration for an embedding provider.
type Config struct {
	// Model is the embedding model to use.
	Model string

	// APIKey is the provider API key. Optional for local
	// OpenAI-compatible servers.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// Dimension is the expected vector dimension.
	Dimension int

	// Timeout bounds each embedding request.
	Timeout time.Duration
}

// NewProvider builds an embedding provider for the configured backend.
func NewProvider(provider string, cfg Config) (Provider, error) {
	switch provider {
	case "gemini", "":
		return NewGeminiEmbedder(cfg)
	case "openai":
		return NewOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown embeddings provider %q", ErrInvalidConfig, provider)
	}
}
