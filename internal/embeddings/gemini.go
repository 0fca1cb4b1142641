package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GeminiEmbedder implements Provider using the Google generative language
// embedding REST API.
type GeminiEmbedder struct {
	model      string
	apiKey     string `json:"-"` // Never serialize API keys
	baseURL    string
	dimension  int
	httpClient *http.Client
}

// NewGeminiEmbedder creates a new Gemini embedding provider.
func NewGeminiEmbedder(cfg Config) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key required", ErrInvalidConfig)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	dimension := cfg.Dimension
	if dimension <= 0 {
		dimension = defaultDimension
	}

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &GeminiEmbedder{
		model:     model,
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		dimension: dimension,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// geminiEmbedContent is a single piece of content to embed.
type geminiEmbedContent struct {
	Parts []geminiEmbedPart `json:"parts"`
}

type geminiEmbedPart struct {
	Text string `json:"text"`
}

// geminiEmbedRequest is the embedContent request body.
type geminiEmbedRequest struct {
	Model                string             `json:"model,omitempty"`
	Content              geminiEmbedContent `json:"content"`
	TaskType             string             `json:"taskType,omitempty"`
	OutputDimensionality int                `json:"outputDimensionality,omitempty"`
}

type geminiEmbedding struct {
	Values []float32 `json:"values"`
}

type geminiEmbedResponse struct {
	Embedding geminiEmbedding `json:"embedding"`
}

type geminiBatchEmbedRequest struct {
	Requests []geminiEmbedRequest `json:"requests"`
}

type geminiBatchEmbedResponse struct {
	Embeddings []geminiEmbedding `json:"embeddings"`
}

// EmbedQuery embeds a single search query using the RETRIEVAL_QUERY task
// type.
func (g *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: query text cannot be empty", ErrEmptyInput)
	}

	req := geminiEmbedRequest{
		Content:              geminiEmbedContent{Parts: []geminiEmbedPart{{Text: text}}},
		TaskType:             "RETRIEVAL_QUERY",
		OutputDimensionality: g.dimension,
	}

	url := fmt.Sprintf("%s/models/%s:embedContent", g.baseURL, g.model)
	var resp geminiEmbedResponse
	if err := g.post(ctx, url, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}
	return resp.Embedding.Values, nil
}

// EmbedDocuments embeds a batch of documents with one batchEmbedContents
// call, using the RETRIEVAL_DOCUMENT task type.
func (g *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	batch := geminiBatchEmbedRequest{
		Requests: make([]geminiEmbedRequest, 0, len(texts)),
	}
	for _, text := range texts {
		batch.Requests = append(batch.Requests, geminiEmbedRequest{
			Model:                "models/" + g.model,
			Content:              geminiEmbedContent{Parts: []geminiEmbedPart{{Text: text}}},
			TaskType:             "RETRIEVAL_DOCUMENT",
			OutputDimensionality: g.dimension,
		})
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents", g.baseURL, g.model)
	var resp geminiBatchEmbedResponse
	if err := g.post(ctx, url, batch, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	vectors := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		vectors = append(vectors, e.Values)
	}
	return vectors, nil
}

// Dimension returns the configured output dimension.
func (g *GeminiEmbedder) Dimension() int {
	return g.dimension
}

func (g *GeminiEmbedder) post(ctx context.Context, url string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Ensure GeminiEmbedder implements Provider.
var _ Provider = (*GeminiEmbedder)(nil)
