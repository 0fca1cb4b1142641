// Package intent extracts structured buyer intent from free-text vehicle
// queries.
//
// The extractor asks a text-completion provider for strict JSON and then
// degrades through a chain of salvage strategies (fenced-block match,
// balanced-brace scan, whole-reply parse) down to a pure keyword pass.
// It never fails: any provider outage or malformed reply still yields a
// structurally valid Intent.
package intent

import (
	"sort"
	"strings"
)

// Budget bands recognized across the pipeline.
const (
	BandLow  = "low"
	BandMid  = "mid"
	BandHigh = "high"
)

// Intent is the structured interpretation of a buyer's free-text needs.
type Intent struct {
	// FamilySize is the stated or inferred household size, nil when the
	// text says nothing family-related.
	FamilySize *int `json:"family_size"`

	// BudgetBand is one of "low", "mid", "high", or "" when unset.
	BudgetBand string `json:"budget_band,omitempty"`

	// Usage holds tags from {city, highway, offroad, family}, sorted.
	Usage []string `json:"usage"`

	// Preferences holds open-vocabulary tags such as comfort, safety,
	// fuel_economy, performance, reliability. Sorted.
	Preferences []string `json:"preferences"`

	// BodyTypePreference is an ordered, deduplicated list of body-type
	// tags (hatchback, sedan, suv, mpv).
	BodyTypePreference []string `json:"body_type_preference"`

	// Other carries extra structured info that fits none of the fields
	// above. The "heuristic" key marks intents derived without any
	// usable provider output.
	Other map[string]interface{} `json:"other"`
}

// Heuristic reports whether this intent was derived purely from keyword
// rules because no usable provider output was available.
func (in Intent) Heuristic() bool {
	v, ok := in.Other["heuristic"]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// HasUsage reports whether the given usage tag is present.
func (in Intent) HasUsage(tag string) bool {
	for _, u := range in.Usage {
		if u == tag {
			return true
		}
	}
	return false
}

// empty returns an Intent with every collection initialized.
func empty() Intent {
	return Intent{
		Usage:              []string{},
		Preferences:        []string{},
		BodyTypePreference: []string{},
		Other:              map[string]interface{}{},
	}
}

// fromParsed builds an Intent from a decoded JSON object, tolerating
// missing keys and loosely typed values. Absent fields get their empty
// defaults; values of the wrong type are dropped.
func fromParsed(parsed map[string]interface{}) Intent {
	in := empty()

	if v, ok := parsed["family_size"]; ok {
		if n, ok := asInt(v); ok && n > 0 {
			in.FamilySize = &n
		}
	}
	if v, ok := parsed["budget_band"]; ok {
		if s, ok := v.(string); ok {
			band := strings.ToLower(strings.TrimSpace(s))
			switch band {
			case BandLow, BandMid, BandHigh:
				in.BudgetBand = band
			}
		}
	}
	in.Usage = stringList(parsed["usage"], true)
	in.Preferences = stringList(parsed["preferences"], true)
	in.BodyTypePreference = dedup(stringList(parsed["body_type_preference"], true))
	if v, ok := parsed["other"].(map[string]interface{}); ok {
		for k, val := range v {
			in.Other[k] = val
		}
	}
	return in
}

// finalize sorts the set-valued fields so equal intents compare equal.
func (in *Intent) finalize() {
	sort.Strings(in.Usage)
	sort.Strings(in.Preferences)
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

func stringList(v interface{}, lower bool) []string {
	out := []string{}
	items, ok := v.([]interface{})
	if !ok {
		return out
	}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if lower {
			s = strings.ToLower(s)
		}
		out = append(out, s)
	}
	return out
}

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
