// Package reasons produces one-sentence, buyer-friendly justifications
// for ranked vehicle matches. A single batched completion call covers
// every match; candidates the provider skips (or a failed call entirely)
// fall back to deterministic rule-based sentences.
package reasons

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/llm"
	"github.com/fyrsmithlabs/matchd/internal/persona"
	"github.com/fyrsmithlabs/matchd/internal/scoring"
)

const maxReasonWords = 30

const batchSystemPrompt = "You are an assistant in a car recommendation app. " +
	"You explain to normal car buyers (non-technical) why each suggested car fits their needs.\n\n" +
	"RULES:\n" +
	"- Output ONLY a JSON array (no extra text).\n" +
	"- Each element: {\"id\": string, \"reason\": string}.\n" +
	"- reason: ONE sentence, <= 30 words, no technical terms, no scores.\n" +
	"- Do NOT invent new IDs or cars.\n" +
	"- Use simple, clear language suitable for an Indian car buyer.\n"

// Generator requests justification sentences from a completion provider.
type Generator struct {
	completer llm.Completer
	logger    *zap.Logger
}

// NewGenerator creates a justification generator.
func NewGenerator(completer llm.Completer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{completer: completer, logger: logger}
}

// reasonEntry is one element of the provider's JSON array reply.
type reasonEntry struct {
	ID     interface{} `json:"id"`
	Reason interface{} `json:"reason"`
}

// promptCar is the compact candidate projection sent to the provider.
type promptCar struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	BodyType  string      `json:"body_type"`
	PriceBand string      `json:"price_band"`
	Year      int         `json:"year,omitempty"`
	FuelType  string      `json:"fuel_type"`
	Seats     int         `json:"seats,omitempty"`
	Tags      []string    `json:"tags,omitempty"`
}

// Generate issues one batched completion call and returns a map from
// match ID to a validated sentence. It never fails: any provider error
// or malformed reply yields an empty map, leaving the caller to apply
// per-candidate fallback sentences.
func (g *Generator) Generate(ctx context.Context, userText string, p persona.Persona, matches []scoring.Match) map[string]string {
	if len(matches) == 0 || g.completer == nil {
		return map[string]string{}
	}

	cars := make([]promptCar, 0, len(matches))
	validIDs := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		validIDs[m.ID] = struct{}{}
		cars = append(cars, promptCar{
			ID:        m.ID,
			Name:      m.Name,
			BodyType:  m.Candidate.BodyType(),
			PriceBand: m.Candidate.PriceBand(),
			Year:      m.Candidate.Year(),
			FuelType:  m.Candidate.Fuel(),
			Seats:     m.Candidate.Seats(),
			Tags:      m.Candidate.Tags(),
		})
	}

	carsJSON, err := json.Marshal(cars)
	if err != nil {
		g.logger.Warn("failed to encode candidates for justification prompt", zap.Error(err))
		return map[string]string{}
	}
	personaJSON, err := json.Marshal(p)
	if err != nil {
		g.logger.Warn("failed to encode persona for justification prompt", zap.Error(err))
		return map[string]string{}
	}

	userPrompt := "User description:\n" + userText + "\n\n" +
		"Persona (system understanding of the user):\n" + string(personaJSON) + "\n\n" +
		"Cars to explain (JSON list):\n" + string(carsJSON) + "\n\n" +
		"For each car, return a JSON array of objects like:\n" +
		"[{\"id\": \"<same id>\", \"reason\": \"<one friendly sentence>\"}, ...]\n" +
		"Remember: JSON only, no explanations outside the array."

	raw, err := g.completer.Complete(ctx, llm.CompletionRequest{
		System:          batchSystemPrompt,
		User:            userPrompt,
		Temperature:     0.3,
		MaxOutputTokens: 200,
	})
	if err != nil {
		g.logger.Info("justification call failed, using fallback sentences", zap.Error(err))
		return map[string]string{}
	}
	if strings.TrimSpace(raw) == "" {
		return map[string]string{}
	}

	entries := parseReasonArray(raw)
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		id := stringifyID(e.ID)
		if id == "" {
			continue
		}
		if _, ok := validIDs[id]; !ok {
			continue
		}
		reason, ok := e.Reason.(string)
		if !ok {
			continue
		}
		reason = strings.TrimSpace(reason)
		if reason == "" {
			continue
		}
		out[id] = polishSentence(reason)
	}
	return out
}

// parseReasonArray parses the reply as a JSON array, salvaging the first
// bracket-balanced array substring when the whole reply does not parse.
func parseReasonArray(raw string) []reasonEntry {
	var entries []reasonEntry
	if err := json.Unmarshal([]byte(raw), &entries); err == nil {
		return entries
	}

	salvaged := findFirstBalancedArray(raw)
	if salvaged == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(salvaged), &entries); err != nil {
		return nil
	}
	return entries
}

// findFirstBalancedArray returns the first bracket-balanced JSON array in
// s, ignoring brackets inside string literals.
func findFirstBalancedArray(s string) string {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	esc := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if ch == '"' && !esc {
			inString = !inString
		}
		if ch == '\\' && !esc {
			esc = true
		} else {
			esc = false
		}
		if inString {
			continue
		}
		switch ch {
		case '[':
			depth++
		case ']':
			depth--
		}
		if depth == 0 {
			return s[start : i+1]
		}
	}
	return ""
}

// polishSentence truncates to the word budget and ensures terminal
// punctuation.
func polishSentence(reason string) string {
	words := strings.Fields(reason)
	if len(words) > maxReasonWords {
		reason = strings.Join(words[:maxReasonWords], " ")
	}
	if !strings.HasSuffix(reason, ".") && !strings.HasSuffix(reason, "!") && !strings.HasSuffix(reason, "?") {
		reason += "."
	}
	return reason
}

func stringifyID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		// Numeric IDs in the reply decode as float64.
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}
