package reasons

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fyrsmithlabs/matchd/internal/llm"
	"github.com/fyrsmithlabs/matchd/internal/persona"
	"github.com/fyrsmithlabs/matchd/internal/scoring"
	"github.com/fyrsmithlabs/matchd/internal/vehicles"
)

type stubCompleter struct {
	reply   string
	err     error
	lastReq llm.CompletionRequest
	calls   int
}

func (s *stubCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	s.calls++
	s.lastReq = req
	return s.reply, s.err
}

func match(id, name string, meta map[string]interface{}) scoring.Match {
	return scoring.Match{
		ID:        id,
		Name:      name,
		Candidate: vehicles.Candidate{ID: id, Metadata: meta},
	}
}

func TestGenerateParsesValidArray(t *testing.T) {
	completer := &stubCompleter{
		reply: `[{"id": "v1", "reason": "Fits your family with room to spare"}, {"id": "v2", "reason": "Cheap to run daily."}]`,
	}
	g := NewGenerator(completer, zaptest.NewLogger(t))

	out := g.Generate(context.Background(), "family car", persona.Persona{}, []scoring.Match{
		match("v1", "Ertiga", nil),
		match("v2", "Swift", nil),
	})

	require.Len(t, out, 2)
	assert.Equal(t, "Fits your family with room to spare.", out["v1"])
	assert.Equal(t, "Cheap to run daily.", out["v2"])

	assert.Equal(t, 1, completer.calls)
	assert.Equal(t, 0.3, completer.lastReq.Temperature)
	assert.Equal(t, 200, completer.lastReq.MaxOutputTokens)
}

func TestGeneratePromptCarriesCandidateProjection(t *testing.T) {
	completer := &stubCompleter{reply: `[]`}
	g := NewGenerator(completer, zaptest.NewLogger(t))

	g.Generate(context.Background(), "suv please", persona.Persona{Label: "Family Driver"}, []scoring.Match{
		match("v1", "Creta", map[string]interface{}{
			"body_type": "SUV", "price_band": "mid", "year": 2021,
			"fuel_type": "Petrol", "seats": 5, "tags": []string{"sunroof"},
		}),
	})

	prompt := completer.lastReq.User
	assert.Contains(t, prompt, `"id":"v1"`)
	assert.Contains(t, prompt, `"body_type":"suv"`)
	assert.Contains(t, prompt, `"price_band":"mid"`)
	assert.Contains(t, prompt, `"year":2021`)
	assert.Contains(t, prompt, `"seats":5`)
	assert.Contains(t, prompt, "Family Driver")
	assert.Contains(t, prompt, "suv please")
}

func TestGenerateSalvagesArrayFromProse(t *testing.T) {
	completer := &stubCompleter{
		reply: "Here are the reasons:\n[{\"id\": \"v1\", \"reason\": \"Good city car [compact]\"}]\nHope this helps!",
	}
	g := NewGenerator(completer, zaptest.NewLogger(t))

	out := g.Generate(context.Background(), "city car", persona.Persona{}, []scoring.Match{match("v1", "Swift", nil)})
	require.Len(t, out, 1)
	assert.Equal(t, "Good city car [compact].", out["v1"])
}

func TestGenerateDropsInvalidEntries(t *testing.T) {
	completer := &stubCompleter{
		reply: `[
			{"id": "v1", "reason": "Solid choice"},
			{"id": "intruder", "reason": "Not one of yours"},
			{"id": "v2", "reason": 42},
			{"id": "v2"},
			{"reason": "no id"},
			{"id": "v2", "reason": "   "}
		]`,
	}
	g := NewGenerator(completer, zaptest.NewLogger(t))

	out := g.Generate(context.Background(), "text", persona.Persona{}, []scoring.Match{
		match("v1", "A", nil),
		match("v2", "B", nil),
	})

	require.Len(t, out, 1)
	assert.Equal(t, "Solid choice.", out["v1"])
}

func TestGenerateNumericIDs(t *testing.T) {
	completer := &stubCompleter{reply: `[{"id": 7, "reason": "Nice"}]`}
	g := NewGenerator(completer, zaptest.NewLogger(t))

	out := g.Generate(context.Background(), "text", persona.Persona{}, []scoring.Match{match("7", "C", nil)})
	require.Len(t, out, 1)
	assert.Equal(t, "Nice.", out["7"])
}

func TestGenerateTruncatesLongReasons(t *testing.T) {
	long := strings.Repeat("word ", 40)
	completer := &stubCompleter{reply: `[{"id": "v1", "reason": "` + strings.TrimSpace(long) + `"}]`}
	g := NewGenerator(completer, zaptest.NewLogger(t))

	out := g.Generate(context.Background(), "text", persona.Persona{}, []scoring.Match{match("v1", "A", nil)})
	require.Len(t, out, 1)
	assert.Len(t, strings.Fields(out["v1"]), 30)
	assert.True(t, strings.HasSuffix(out["v1"], "."))
}

func TestGenerateEmptyOnFailure(t *testing.T) {
	tests := []struct {
		name      string
		completer *stubCompleter
	}{
		{name: "provider error", completer: &stubCompleter{err: errors.New("down")}},
		{name: "empty reply", completer: &stubCompleter{reply: "   "}},
		{name: "no array anywhere", completer: &stubCompleter{reply: "I cannot produce JSON today."}},
		{name: "unbalanced array", completer: &stubCompleter{reply: `[{"id": "v1", "reason": "cut off`}},
		{name: "array of scalars", completer: &stubCompleter{reply: `[1, 2, 3]`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(tt.completer, zaptest.NewLogger(t))
			out := g.Generate(context.Background(), "text", persona.Persona{}, []scoring.Match{match("v1", "A", nil)})
			assert.NotNil(t, out)
			assert.Empty(t, out)
		})
	}
}

func TestGenerateNoMatchesSkipsCall(t *testing.T) {
	completer := &stubCompleter{reply: "[]"}
	g := NewGenerator(completer, zaptest.NewLogger(t))

	out := g.Generate(context.Background(), "text", persona.Persona{}, nil)
	assert.Empty(t, out)
	assert.Equal(t, 0, completer.calls)
}

func TestFindFirstBalancedArray(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: `[1, 2]`, want: `[1, 2]`},
		{name: "in prose", input: `sure: [1, [2, 3]] done`, want: `[1, [2, 3]]`},
		{name: "brackets in strings", input: `x ["a ] b"] y`, want: `["a ] b"]`},
		{name: "unbalanced", input: `[1, 2`, want: ""},
		{name: "none", input: "nope", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findFirstBalancedArray(tt.input))
		})
	}
}

func TestFallbackSentences(t *testing.T) {
	tests := []struct {
		name    string
		persona persona.Persona
		meta    map[string]interface{}
		want    string
	}{
		{
			name: "nothing applicable",
			want: "This car is a well-rounded choice that fits your described needs.",
		},
		{
			name:    "comfort",
			persona: persona.Persona{PrimaryNeeds: []string{"comfort"}},
			want:    "Is comfortable to drive.",
		},
		{
			name:    "hybrid aware fuel economy",
			persona: persona.Persona{PrimaryNeeds: []string{"fuel_economy"}},
			meta:    map[string]interface{}{"fuel_type": "Hybrid"},
			want:    "Helps you save fuel with its hybrid setup.",
		},
		{
			name:    "plain fuel economy",
			persona: persona.Persona{PrimaryNeeds: []string{"fuel_economy"}},
			meta:    map[string]interface{}{"fuel_type": "Petrol"},
			want:    "Is fuel-efficient for everyday use.",
		},
		{
			name:    "space with seats",
			persona: persona.Persona{PrimaryNeeds: []string{"space"}},
			meta:    map[string]interface{}{"seats": 7},
			want:    "Has enough space for your family.",
		},
		{
			name:    "family label without seat data",
			persona: persona.Persona{Label: "Family Driver"},
			want:    "Offers practical space for family use.",
		},
		{
			name: "suv body clause",
			meta: map[string]interface{}{"body_type": "SUV"},
			want: "Gives you an SUV's higher driving position.",
		},
		{
			name: "sedan body clause",
			meta: map[string]interface{}{"body_type": "sedan"},
			want: "Has a balanced sedan design for daily commutes.",
		},
		{
			name: "recent year clause",
			meta: map[string]interface{}{"year": 2023},
			want: "Comes from a recent model year with modern features.",
		},
		{
			name: "at most three clauses joined",
			persona: persona.Persona{
				Label:        "Family Driver",
				PrimaryNeeds: []string{"comfort", "fuel_economy", "space", "safety"},
			},
			meta: map[string]interface{}{"seats": 7},
			want: "Is comfortable to drive, is fuel-efficient for everyday use, has enough space for your family.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := vehicles.Candidate{ID: "v1", Metadata: tt.meta}
			assert.Equal(t, tt.want, Fallback(tt.persona, c))
		})
	}
}

func TestFallbackIsPure(t *testing.T) {
	p := persona.Persona{Label: "Family Driver", PrimaryNeeds: []string{"space", "safety"}}
	c := vehicles.Candidate{ID: "v1", Metadata: map[string]interface{}{"seats": 7, "body_type": "suv"}}

	assert.Equal(t, Fallback(p, c), Fallback(p, c))
	assert.NotEmpty(t, Fallback(p, c))
}
