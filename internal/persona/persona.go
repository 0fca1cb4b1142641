// Package persona derives a labeled driver profile from structured
// intent. Everything here is pure and deterministic: the same intent
// always produces the same persona.
package persona

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/matchd/internal/intent"
)

// Persona is a read-only view of an intent: a descriptive label, the
// needs scoring should favor, and human-readable constraints.
type Persona struct {
	Label          string   `json:"label"`
	PrimaryNeeds   []string `json:"primary_needs"`
	SecondaryNeeds []string `json:"secondary_needs"`
	Constraints    []string `json:"constraints"`
}

// HasPrimaryNeed reports whether the given need tag is present.
func (p Persona) HasPrimaryNeed(tag string) bool {
	for _, n := range p.PrimaryNeeds {
		if n == tag {
			return true
		}
	}
	return false
}

// Build derives a Persona from an Intent.
func Build(in intent.Intent) Persona {
	var primary, secondary, constraints []string

	if in.FamilySize != nil {
		constraints = append(constraints, fmt.Sprintf("seats >= %d", *in.FamilySize+1))
	}
	if in.BudgetBand != "" {
		constraints = append(constraints, fmt.Sprintf("budget_band == '%s'", in.BudgetBand))
	}
	if len(in.BodyTypePreference) > 0 {
		constraints = append(constraints, fmt.Sprintf("body_type in [%s]", strings.Join(in.BodyTypePreference, ", ")))
	}

	if in.HasUsage("offroad") {
		primary = append(primary, "ruggedness", "ground_clearance")
	}
	if in.HasUsage("city") {
		primary = append(primary, "easy_to_park", "fuel_economy")
	}
	if in.HasUsage("highway") {
		primary = append(primary, "stability", "comfort")
	}
	if in.HasUsage("family") || (in.FamilySize != nil && *in.FamilySize >= 3) {
		primary = append(primary, "space", "safety")
	}

	if prefContains(in.Preferences, "safety") {
		primary = append(primary, "safety")
	}
	if prefContains(in.Preferences, "fuel") {
		primary = append(primary, "fuel_economy")
	}
	if prefContains(in.Preferences, "performance") || prefContains(in.Preferences, "power") {
		primary = append(primary, "performance")
	}
	if prefContains(in.Preferences, "comfort") {
		primary = append(primary, "comfort")
	}

	if prefContains(in.Preferences, "luxury") || prefContains(in.Preferences, "premium") {
		secondary = append(secondary, "premium_features")
	}
	if prefEquals(in.Preferences, "ev") || prefEquals(in.Preferences, "electric") {
		secondary = append(secondary, "electric_or_hybrid")
	}

	p := Persona{
		Label:          "General Driver",
		PrimaryNeeds:   dedup(primary),
		SecondaryNeeds: dedup(secondary),
		Constraints:    dedup(constraints),
	}
	p.Label = chooseLabel(p, in)
	return p
}

// chooseLabel picks the persona label by a fixed priority cascade; the
// first matching rule wins.
func chooseLabel(p Persona, in intent.Intent) string {
	switch {
	case p.HasPrimaryNeed("ruggedness"):
		return "Outdoor / Adventure Driver"
	case p.HasPrimaryNeed("space") && p.HasPrimaryNeed("safety"):
		return "Family Driver"
	case in.BudgetBand == intent.BandLow:
		return "Budget Conscious Driver"
	case hasNeed(p.SecondaryNeeds, "electric_or_hybrid"):
		return "Eco / EV Enthusiast"
	case p.HasPrimaryNeed("performance"):
		return "Performance Oriented Driver"
	case p.HasPrimaryNeed("comfort") && in.HasUsage("city"):
		return "Comfort Commuter"
	default:
		return "General Driver"
	}
}

// prefContains reports whether any preference contains key as a
// substring, case-insensitively.
func prefContains(prefs []string, key string) bool {
	for _, p := range prefs {
		if strings.Contains(strings.ToLower(p), key) {
			return true
		}
	}
	return false
}

func prefEquals(prefs []string, key string) bool {
	for _, p := range prefs {
		if strings.ToLower(p) == key {
			return true
		}
	}
	return false
}

func hasNeed(needs []string, tag string) bool {
	for _, n := range needs {
		if n == tag {
			return true
		}
	}
	return false
}

// dedup removes duplicates preserving first-seen order. The result is
// never nil so personas serialize with empty arrays, not null.
func dedup(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
