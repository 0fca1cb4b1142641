// Package scoring ranks vehicle candidates against a buyer's intent and
// persona. Scoring is pure and deterministic: the same inputs always
// produce the same ranked list.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/matchd/internal/intent"
	"github.com/fyrsmithlabs/matchd/internal/persona"
	"github.com/fyrsmithlabs/matchd/internal/vehicles"
)

// Default blend weights and result size.
const (
	DefaultPersonaWeight   = 0.25
	DefaultHeuristicWeight = 0.15
	DefaultTopK            = 3
)

// Weights configures the score blend. Values are fixed at construction
// so concurrent requests share one immutable scorer.
type Weights struct {
	// Persona scales the persona-match sub-score.
	Persona float64

	// Heuristic scales the heuristic-quality sub-score.
	Heuristic float64

	// TopK bounds the number of matches returned.
	TopK int
}

// DefaultWeights returns the standard blend.
func DefaultWeights() Weights {
	return Weights{
		Persona:   DefaultPersonaWeight,
		Heuristic: DefaultHeuristicWeight,
		TopK:      DefaultTopK,
	}
}

// Match is a scored, ranked candidate.
type Match struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Score     int                    `json:"score"`
	Reasons   []string               `json:"reasons"`
	ImageURL  string                 `json:"image_url,omitempty"`
	PriceBand string                 `json:"price_band,omitempty"`
	BodyType  string                 `json:"body_type,omitempty"`
	Specs     map[string]interface{} `json:"specs"`

	// Candidate keeps the source listing for downstream justification.
	Candidate vehicles.Candidate `json:"-"`
}

// Scorer ranks candidates with a fixed weight blend.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer, filling unset weights with defaults.
func NewScorer(w Weights) *Scorer {
	if w.Persona == 0 {
		w.Persona = DefaultPersonaWeight
	}
	if w.Heuristic == 0 {
		w.Heuristic = DefaultHeuristicWeight
	}
	if w.TopK <= 0 {
		w.TopK = DefaultTopK
	}
	return &Scorer{weights: w}
}

// Score ranks candidates descending by blended score and returns at most
// TopK matches. Ties keep the candidates' input order. Reasons are left
// empty; the justification stage fills them.
func (s *Scorer) Score(in intent.Intent, p persona.Persona, candidates []vehicles.Candidate) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		semantic := normalizeSimilarity(float64(c.Similarity))
		personaScore := personaMatchScore(in, c)
		heuristic := heuristicBoost(in, c)

		final := semantic + s.weights.Persona*personaScore + s.weights.Heuristic*heuristic
		final = math.Max(0, math.Min(100, final))

		matches = append(matches, Match{
			ID:        c.ID,
			Name:      c.Name(),
			Score:     int(math.Round(final)),
			Reasons:   []string{},
			ImageURL:  c.ImageURL(),
			PriceBand: c.PriceBand(),
			BodyType:  c.BodyType(),
			Specs:     c.Specs(),
			Candidate: c,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > s.weights.TopK {
		matches = matches[:s.weights.TopK]
	}
	return matches
}

// normalizeSimilarity maps a provider similarity value onto 0..100.
// Negative values clamp to 0. Values above 2 are assumed to be distances
// and inverted via 1/(1+value). This is a guess about the collaborator's
// score scale; see the distance heuristic note in DESIGN.md.
func normalizeSimilarity(raw float64) float64 {
	s := raw
	if s < 0 {
		s = 0
	}
	if s > 2 {
		s = 1.0 / (1.0 + s)
	}
	s = math.Max(0, math.Min(1, s))
	return s * 100
}

// personaMatchScore scores structured persona fit on 0..100 from up to
// three independent checks, each counted only when its inputs are
// present. With no applicable check the score is a neutral 50.
func personaMatchScore(in intent.Intent, c vehicles.Candidate) float64 {
	var score, total float64

	band := c.PriceBand()
	if in.BudgetBand != "" && band != "" {
		total++
		if in.BudgetBand == band {
			score++
		}
	}

	seats := c.Seats()
	if in.FamilySize != nil && seats > 0 {
		total++
		if seats >= *in.FamilySize+1 {
			score++
		}
	}

	// The usage check is a single check no matter how many alignments
	// fire.
	body := c.BodyType()
	if len(in.Usage) > 0 && body != "" {
		total++
		aligned := (in.HasUsage("offroad") && strings.Contains(body, "suv")) ||
			(in.HasUsage("city") && containsAny(body, "hatch", "sedan", "compact")) ||
			(in.HasUsage("family") && containsAny(body, "mpv", "suv", "minivan", "estate"))
		if aligned {
			score++
		}
	}

	if total == 0 {
		return 50
	}
	return (score / total) * 100
}

// heuristicBoost scores standalone vehicle quality on 0..100: newer
// model years, lower mileage, cleaner fuel types, and a bonus for
// landing in the buyer's budget band.
func heuristicBoost(in intent.Intent, c vehicles.Candidate) float64 {
	var boost float64

	switch year := c.Year(); {
	case year >= 2022:
		boost += 30
	case year >= 2017:
		boost += 20
	case year >= 2012:
		boost += 10
	}

	switch km := c.KmDriven(); {
	case km <= 0:
		// unknown mileage earns nothing
	case km < 30000:
		boost += 25
	case km < 60000:
		boost += 15
	case km < 100000:
		boost += 5
	}

	fuel := c.Fuel()
	switch {
	case strings.Contains(fuel, "electric") || strings.Contains(fuel, "ev"):
		boost += 30
	case strings.Contains(fuel, "hybrid"):
		boost += 25
	case strings.Contains(fuel, "diesel"):
		boost += 20
	case strings.Contains(fuel, "petrol"):
		boost += 10
	}

	if in.BudgetBand != "" && in.BudgetBand == c.PriceBand() {
		boost += 25
	}

	return math.Min(100, boost)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
