package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// enrichmentRule adds usage and preference tags when any of its keywords
// appears as a substring of the lowercased user text.
type enrichmentRule struct {
	keywords []string
	usage    []string
	prefs    []string
}

var familyKeywords = []string{"family", "families", "kids"}

var enrichmentRules = []enrichmentRule{
	{
		keywords: familyKeywords,
		usage:    []string{"family"},
	},
	{
		// "commut" covers commute, commuter, commuting; a bare "city"
		// keyword would also match words like "capacity".
		keywords: []string{"commut", "city traffic", "city driving", "city use", "city car", "daily driving", "school run"},
		usage:    []string{"city"},
	},
	{
		keywords: []string{"highway", "long drives", "road trip"},
		usage:    []string{"highway"},
	},
	{
		keywords: []string{"hiking", "camp", "offroad", "off-road", "trail", "mountain"},
		usage:    []string{"offroad"},
		prefs:    []string{"ruggedness"},
	},
	{
		keywords: []string{"comfortable", "comfort"},
		prefs:    []string{"comfort"},
	},
	{
		keywords: []string{"safe", "safety", "airbags", "crash rating"},
		prefs:    []string{"safety"},
	},
	{
		keywords: []string{"mileage", "fuel efficient", "fuel efficiency", "low fuel cost"},
		prefs:    []string{"fuel_economy"},
	},
	{
		keywords: []string{"powerful", "performance", "sporty", "fast"},
		prefs:    []string{"performance"},
	},
	{
		keywords: []string{"reliable", "low maintenance"},
		prefs:    []string{"reliability"},
	},
}

var (
	midBudgetPhrases  = []string{"mid price range", "mid price", "mid-range", "mid range"}
	lowBudgetPhrases  = []string{"low budget", "cheap", "entry level", "entry-level"}
	highBudgetPhrases = []string{"high budget", "premium", "luxury"}

	smallFamilyPhrases = []string{"small family", "small families"}
	bigFamilyPhrases   = []string{"big family", "large family"}

	midsizePhrases = []string{"midsize car", "mid size car", "mid-size car"}

	lakhAmountRE = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:lakh|lac)`)
)

// enrich applies deterministic keyword rules over the lowercased user
// text. Rules only add tags and only fill scalars that are still unset;
// nothing already present is removed. Set-valued fields come back sorted.
func enrich(in Intent, userText string) Intent {
	text := strings.ToLower(userText)

	usage := toSet(in.Usage)
	prefs := toSet(in.Preferences)

	for _, rule := range enrichmentRules {
		if !containsAny(text, rule.keywords) {
			continue
		}
		for _, u := range rule.usage {
			usage[u] = struct{}{}
		}
		for _, p := range rule.prefs {
			prefs[p] = struct{}{}
		}
	}

	// Default the family size only when the text itself mentions a
	// family; a model-supplied family usage tag alone is not enough.
	if in.FamilySize == nil && containsAny(text, familyKeywords) {
		size := 3
		if containsAny(text, bigFamilyPhrases) {
			size = 5
		} else if containsAny(text, smallFamilyPhrases) {
			size = 3
		}
		in.FamilySize = &size
	}

	if in.BudgetBand == "" {
		in.BudgetBand = budgetBandFromText(text)
	}

	if containsAny(text, midsizePhrases) && !contains(in.BodyTypePreference, "sedan") {
		in.BodyTypePreference = append(in.BodyTypePreference, "sedan")
	}
	if _, ok := usage["offroad"]; ok && len(in.BodyTypePreference) == 0 {
		in.BodyTypePreference = append(in.BodyTypePreference, "suv")
	}

	in.Usage = fromSet(usage)
	in.Preferences = fromSet(prefs)
	in.finalize()
	return in
}

// budgetBandFromText maps budget phrases to a band, trying the mid
// phrases first so "mid price range" does not fall through to a price
// parse. A stated lakh amount is tiered at six and fifteen lakhs.
func budgetBandFromText(text string) string {
	switch {
	case containsAny(text, midBudgetPhrases):
		return BandMid
	case containsAny(text, lowBudgetPhrases):
		return BandLow
	case containsAny(text, highBudgetPhrases):
		return BandHigh
	}

	if m := lakhAmountRE.FindStringSubmatch(text); m != nil {
		amount, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			switch {
			case amount <= 6:
				return BandLow
			case amount <= 15:
				return BandMid
			default:
				return BandHigh
			}
		}
	}
	return ""
}

// heuristicIntent builds an Intent from keyword rules alone, marking it
// as heuristic-derived.
func heuristicIntent(userText string) Intent {
	in := empty()
	in.Other["heuristic"] = true
	return enrich(in, userText)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func contains(items []string, target string) bool {
	for _, s := range items {
		if s == target {
			return true
		}
	}
	return false
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[strings.ToLower(s)] = struct{}{}
	}
	return set
}

func fromSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}
