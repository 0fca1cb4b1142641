package vehicles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateName(t *testing.T) {
	tests := []struct {
		name      string
		candidate Candidate
		want      string
	}{
		{
			name:      "raw_name preferred",
			candidate: Candidate{ID: "v1", Metadata: map[string]interface{}{"raw_name": "Mahindra Thar LX", "name": "Thar"}},
			want:      "Mahindra Thar LX",
		},
		{
			name:      "name fallback",
			candidate: Candidate{ID: "v1", Metadata: map[string]interface{}{"name": "Thar"}},
			want:      "Thar",
		},
		{
			name:      "title fallback",
			candidate: Candidate{ID: "v1", Metadata: map[string]interface{}{"title": "Used Thar 2021"}},
			want:      "Used Thar 2021",
		},
		{
			name:      "id fallback",
			candidate: Candidate{ID: "v1", Metadata: map[string]interface{}{}},
			want:      "v1",
		},
		{
			name:      "unknown when nothing set",
			candidate: Candidate{},
			want:      "Unknown",
		},
		{
			name:      "whitespace-only raw_name skipped",
			candidate: Candidate{ID: "v9", Metadata: map[string]interface{}{"raw_name": "   "}},
			want:      "v9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.candidate.Name())
		})
	}
}

func TestCandidateNumericFields(t *testing.T) {
	c := Candidate{Metadata: map[string]interface{}{
		"year":      int64(2021), // integers come back from Qdrant as int64
		"seats":     float64(7),
		"km_driven": "45000",
		"price":     6.75,
	}}

	assert.Equal(t, 2021, c.Year())
	assert.Equal(t, 7, c.Seats())
	assert.Equal(t, 45000, c.KmDriven())
	assert.Equal(t, 6.75, c.Price())
}

func TestCandidateNumericFieldsTolerant(t *testing.T) {
	c := Candidate{Metadata: map[string]interface{}{
		"year":  "not a year",
		"seats": nil,
	}}

	assert.Equal(t, 0, c.Year())
	assert.Equal(t, 0, c.Seats())
	assert.Equal(t, 0, c.KmDriven())
	assert.Equal(t, 0.0, c.Price())
}

func TestCandidatePriceFallsBackToSellingPrice(t *testing.T) {
	c := Candidate{Metadata: map[string]interface{}{"selling_price": 550000}}
	assert.Equal(t, 550000.0, c.Price())
}

func TestCandidateFuel(t *testing.T) {
	assert.Equal(t, "diesel", Candidate{Metadata: map[string]interface{}{"fuel_type": "Diesel"}}.Fuel())
	assert.Equal(t, "petrol", Candidate{Metadata: map[string]interface{}{"fuel": "Petrol"}}.Fuel())
	assert.Equal(t, "", Candidate{}.Fuel())
}

func TestCandidateTags(t *testing.T) {
	tests := []struct {
		name      string
		candidate Candidate
		want      []string
	}{
		{
			name:      "string slice",
			candidate: Candidate{Metadata: map[string]interface{}{"tags": []string{"abs", "sunroof"}}},
			want:      []string{"abs", "sunroof"},
		},
		{
			name:      "interface slice from payload decoding",
			candidate: Candidate{Metadata: map[string]interface{}{"tags": []interface{}{"abs", "", "sunroof"}}},
			want:      []string{"abs", "sunroof"},
		},
		{
			name:      "absent",
			candidate: Candidate{},
			want:      nil,
		},
		{
			name:      "wrong type",
			candidate: Candidate{Metadata: map[string]interface{}{"tags": "abs"}},
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.candidate.Tags())
		})
	}
}

func TestCandidateSpecs(t *testing.T) {
	c := Candidate{ID: "v42", Metadata: map[string]interface{}{
		"make":       "Toyota",
		"raw_name":   "Toyota Innova Crysta",
		"year":       2020,
		"fuel_type":  "Diesel",
		"seats":      7,
		"price":      18.5,
		"price_band": "high",
		"km_driven":  30000,
	}}

	specs := c.Specs()
	assert.Equal(t, "Toyota", specs["make"])
	assert.Equal(t, "Toyota Innova Crysta", specs["model"]) // model falls back to raw_name
	assert.Equal(t, 2020, specs["year"])
	assert.Equal(t, "diesel", specs["fuel_type"])
	assert.Equal(t, 7, specs["seats"])
	assert.Equal(t, "high", specs["price_band"])
	assert.Equal(t, 30000, specs["km_driven"])
}
