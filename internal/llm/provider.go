package llm

import (
	"context"
	"fmt"
)

// NewCompleter creates a completion client for the given provider name.
// Supported providers: "gemini", "openai", "disabled".
func NewCompleter(provider string, cfg Config) (Completer, error) {
	switch provider {
	case "gemini", "":
		return NewGeminiClient(cfg)
	case "openai":
		return NewOpenAIClient(cfg)
	case "disabled":
		return disabledCompleter{}, nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", provider)
	}
}

// disabledCompleter fails every call. The pipeline's heuristic fallbacks
// carry the request end to end.
type disabledCompleter struct{}

func (disabledCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return "", ErrDisabled
}

var _ Completer = disabledCompleter{}
