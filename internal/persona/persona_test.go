package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fyrsmithlabs/matchd/internal/intent"
)

func intPtr(n int) *int { return &n }

func TestBuildConstraints(t *testing.T) {
	in := intent.Intent{
		FamilySize:         intPtr(4),
		BudgetBand:         intent.BandMid,
		BodyTypePreference: []string{"suv", "mpv"},
	}

	p := Build(in)
	assert.Equal(t, []string{
		"seats >= 5",
		"budget_band == 'mid'",
		"body_type in [suv, mpv]",
	}, p.Constraints)
}

func TestBuildConstraintsOnlyForSetFields(t *testing.T) {
	p := Build(intent.Intent{})
	assert.Empty(t, p.Constraints)
	assert.NotNil(t, p.Constraints)
}

func TestBuildPrimaryNeedsFromUsage(t *testing.T) {
	tests := []struct {
		name string
		in   intent.Intent
		want []string
	}{
		{
			name: "offroad",
			in:   intent.Intent{Usage: []string{"offroad"}},
			want: []string{"ruggedness", "ground_clearance"},
		},
		{
			name: "city",
			in:   intent.Intent{Usage: []string{"city"}},
			want: []string{"easy_to_park", "fuel_economy"},
		},
		{
			name: "highway",
			in:   intent.Intent{Usage: []string{"highway"}},
			want: []string{"stability", "comfort"},
		},
		{
			name: "family usage",
			in:   intent.Intent{Usage: []string{"family"}},
			want: []string{"space", "safety"},
		},
		{
			name: "family size without usage tag",
			in:   intent.Intent{FamilySize: intPtr(3)},
			want: []string{"space", "safety"},
		},
		{
			name: "small family size alone does not imply space",
			in:   intent.Intent{FamilySize: intPtr(2)},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.in).PrimaryNeeds)
		})
	}
}

func TestBuildPreferenceSubstringMatching(t *testing.T) {
	in := intent.Intent{
		Preferences: []string{"Child Safety", "fuel_economy", "raw power", "comfortable"},
	}

	p := Build(in)
	assert.Equal(t, []string{"safety", "fuel_economy", "performance", "comfort"}, p.PrimaryNeeds)
}

func TestBuildSecondaryNeeds(t *testing.T) {
	t.Run("premium features", func(t *testing.T) {
		p := Build(intent.Intent{Preferences: []string{"luxury feel"}})
		assert.Equal(t, []string{"premium_features"}, p.SecondaryNeeds)
	})

	t.Run("electric requires exact preference", func(t *testing.T) {
		p := Build(intent.Intent{Preferences: []string{"electric"}})
		assert.Equal(t, []string{"electric_or_hybrid"}, p.SecondaryNeeds)

		p = Build(intent.Intent{Preferences: []string{"electric sunroof"}})
		assert.Empty(t, p.SecondaryNeeds)
	})
}

func TestBuildDeduplicatesPreservingOrder(t *testing.T) {
	in := intent.Intent{
		Usage:       []string{"city", "highway"},
		Preferences: []string{"fuel efficiency", "comfort"},
	}

	p := Build(in)
	// city contributes fuel_economy first; the preference must not repeat it.
	assert.Equal(t, []string{"easy_to_park", "fuel_economy", "stability", "comfort"}, p.PrimaryNeeds)
}

func TestLabelCascade(t *testing.T) {
	tests := []struct {
		name string
		in   intent.Intent
		want string
	}{
		{
			name: "outdoor wins over family",
			in:   intent.Intent{Usage: []string{"offroad", "family"}},
			want: "Outdoor / Adventure Driver",
		},
		{
			name: "family",
			in:   intent.Intent{Usage: []string{"family"}, BudgetBand: intent.BandLow},
			want: "Family Driver",
		},
		{
			name: "budget conscious",
			in:   intent.Intent{BudgetBand: intent.BandLow},
			want: "Budget Conscious Driver",
		},
		{
			name: "eco",
			in:   intent.Intent{Preferences: []string{"ev"}},
			want: "Eco / EV Enthusiast",
		},
		{
			name: "performance",
			in:   intent.Intent{Preferences: []string{"performance"}},
			want: "Performance Oriented Driver",
		},
		{
			name: "comfort commuter needs city usage",
			in:   intent.Intent{Usage: []string{"city"}, Preferences: []string{"comfort"}},
			want: "Comfort Commuter",
		},
		{
			name: "comfort without city stays general",
			in:   intent.Intent{Preferences: []string{"comfort"}},
			want: "General Driver",
		},
		{
			name: "nothing set",
			in:   intent.Intent{},
			want: "General Driver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.in).Label)
		})
	}
}

func TestBuildIsPure(t *testing.T) {
	in := intent.Intent{
		FamilySize:  intPtr(4),
		BudgetBand:  intent.BandMid,
		Usage:       []string{"city", "family"},
		Preferences: []string{"safety", "comfort"},
	}

	a := Build(in)
	b := Build(in)
	assert.Equal(t, a, b)
}
