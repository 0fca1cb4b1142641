package intent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/llm"
)

const systemPrompt = `You are a strict JSON information extractor for car-buying needs.

Given a short user description of what car they want, you MUST return ONLY a single JSON object
(no explanations, no markdown) with EXACTLY these keys:

{
  "family_size": int or null,
  "budget_band": "low" | "mid" | "high" | null,
  "usage": [string, ...],
  "preferences": [string, ...],
  "body_type_preference": [string, ...],
  "other": object
}

Mapping rules (VERY IMPORTANT):

1. FAMILY SIZE:
   - "small family", "young family", "new family" => 3
   - "family of 4", "two kids", "kids" (no number) => 4
   - "big family", "large family", "3 kids or more" => 5
   - If nothing family-related is mentioned => null.

2. BUDGET BAND:
   - "cheap", "low budget", "entry level" => "low"
   - "mid price", "mid price range", "average budget" => "mid"
   - "premium", "luxury", "high budget" => "high"
   - If user gives a price like 5-8 lakhs rupees:
       - <=6 lakhs => "low"
       - >6 and <=15 lakhs => "mid"
       - >15 lakhs => "high"
   - If nothing about price => null.

3. USAGE:
   - City / commuting:
       phrases: "city", "traffic", "daily commute", "daily commuting",
                "office commute", "office", "school run"
       => include "city"
   - Highway:
       phrases: "highway", "long drives", "road trips"
       => include "highway"
   - Offroad / outdoors:
       phrases: "offroad", "mountains", "hiking", "camping", "trails"
       => include "offroad"
   - Family use:
       phrases: "family", "families", "kids"
       => include "family"

4. PREFERENCES:
   - comfort: words like "comfortable", "comfort"
       => include "comfort"
   - safety: "safe", "safety", "airbags", "crash rating"
       => include "safety"
   - fuel economy: "mileage", "fuel efficient", "low fuel cost"
       => include "fuel_economy"
   - performance: "powerful", "performance", "sporty", "fast"
       => include "performance"
   - reliability: "reliable", "low maintenance"
       => include "reliability"

5. BODY TYPE PREFERENCE:
   - "hatchback" => ["hatchback"]
   - "sedan", "midsize car", "mid size car", "mid-size car", "saloon" => ["sedan"]
   - "suv", "jeep", "crossover" => ["suv"]
   - "mpv", "minivan" => ["mpv"]
   - if user says something like "small car for city" and no type word,
     you can leave this as [].

6. OTHER:
   - Any extra structured info you see (brand preferences, transmission choices, etc.)
     may go into "other" as a JSON object with primitive values only.

IMPORTANT:
- If you are not sure about a field, use null (for scalars) or [] (for lists).
- DO NOT hallucinate exact numbers if not implied (like family_size) but use the rules above.
- Output MUST be valid JSON, single object, no comments, no markdown.`

const fallbackPrompt = "VERY IMPORTANT: Return ONLY a single-line JSON object with these keys: " +
	"family_size, budget_band, usage, preferences, body_type_preference, other. " +
	"Make the JSON as short as possible. No explanation."

const (
	strictMaxTokens  = 150
	compactMaxTokens = 120
)

// truncationMarkers flag replies that are provider debug dumps or were
// cut off mid-generation.
var truncationMarkers = []string{
	"finish_reason=max_tokens",
	"max_tokens",
	"partial",
	"sdk_http_response",
	"candidates=",
}

// Extractor turns free-form user text into an Intent via a text-completion
// provider, with keyword heuristics as the terminal fallback.
type Extractor struct {
	completer llm.Completer
	logger    *zap.Logger
}

// NewExtractor creates an intent extractor.
func NewExtractor(completer llm.Completer, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{completer: completer, logger: logger}
}

// Extract derives an Intent from user text. It never fails: when the
// provider is unavailable or returns nothing salvageable, the result
// comes from keyword rules alone and carries the heuristic marker.
func (e *Extractor) Extract(ctx context.Context, userText string) Intent {
	raw := e.complete(ctx, llm.CompletionRequest{
		System:          systemPrompt,
		User:            "User description: " + userText + "\n\nRespond with the JSON object only.",
		Temperature:     0,
		MaxOutputTokens: strictMaxTokens,
	})

	if looksTruncated(raw) {
		e.logger.Debug("intent reply unusable, retrying with compact prompt",
			zap.Int("reply_len", len(raw)),
		)
		raw = e.complete(ctx, llm.CompletionRequest{
			System:          fallbackPrompt,
			User:            "User description: " + userText,
			Temperature:     0,
			MaxOutputTokens: compactMaxTokens,
		})
	}

	if strings.TrimSpace(raw) == "" {
		e.logger.Info("no usable completion, deriving intent heuristically")
		return heuristicIntent(userText)
	}

	jsonText := extractJSONObject(raw)
	if jsonText == "" {
		jsonText = raw
	}

	parsed, err := attemptJSONLoad(jsonText)
	if err != nil {
		e.logger.Warn("intent reply not parseable, deriving intent heuristically",
			zap.Error(err),
		)
		return heuristicIntent(userText)
	}

	obj, ok := parsed.(map[string]interface{})
	if !ok {
		e.logger.Warn("intent reply parsed to a non-object, deriving intent heuristically")
		return heuristicIntent(userText)
	}

	return enrich(fromParsed(obj), userText)
}

func (e *Extractor) complete(ctx context.Context, req llm.CompletionRequest) string {
	if e.completer == nil {
		return ""
	}
	text, err := e.completer.Complete(ctx, req)
	if err != nil {
		e.logger.Debug("completion failed", zap.Error(err))
		return ""
	}
	return text
}

// looksTruncated classifies a reply as unusable: empty, too short to be
// a JSON object, or carrying provider debug/truncation markers.
func looksTruncated(s string) bool {
	if s == "" {
		return true
	}
	if len(strings.TrimSpace(s)) < 5 {
		return true
	}
	check := strings.ToLower(s)
	for _, marker := range truncationMarkers {
		if strings.Contains(check, marker) {
			return true
		}
	}
	return false
}
