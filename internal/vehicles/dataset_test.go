package vehicles

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowFromRecord(t *testing.T) {
	header := []string{"name", "year", "selling_price", "km_driven", "fuel", "seller_type", "transmission", "owner", "mileage", "engine", "max_power", "torque", "seats"}
	record := []string{"Maruti Swift Dzire VDI", "2014", "450000", "145500", "Diesel", "Individual", "Manual", "First Owner", "23.4 kmpl", "1248 CC", "74 bhp", "190Nm@ 2000rpm", "5"}

	row := RowFromRecord(header, record)
	assert.Equal(t, "Maruti Swift Dzire VDI", row.Name)
	assert.Equal(t, "2014", row.Year)
	assert.Equal(t, "450000", row.SellingPrice)
	assert.Equal(t, "5", row.Seats)
}

func TestRowFromRecordShortRecord(t *testing.T) {
	header := []string{"name", "year", "selling_price"}
	record := []string{"Hyundai i20", "2018"}

	row := RowFromRecord(header, record)
	assert.Equal(t, "Hyundai i20", row.Name)
	assert.Equal(t, "2018", row.Year)
	assert.Empty(t, row.SellingPrice)
}

func TestRowFromRecordPriceFallback(t *testing.T) {
	row := RowFromRecord([]string{"name", "price"}, []string{"Tata Nexon", "800000"})
	assert.Equal(t, "800000", row.SellingPrice)
}

func TestCanonicalID(t *testing.T) {
	a := DatasetRow{Name: "Maruti Swift Dzire VDI", Year: "2014"}
	b := DatasetRow{Name: "Maruti Swift Dzire VDI", Year: "2014"}
	c := DatasetRow{Name: "Maruti Swift Dzire VDI", Year: "2015"}

	// Qdrant rejects point IDs that are not UUIDs or unsigned ints.
	_, err := uuid.Parse(a.CanonicalID())
	require.NoError(t, err)

	assert.Equal(t, a.CanonicalID(), b.CanonicalID())
	assert.NotEqual(t, a.CanonicalID(), c.CanonicalID())

	// Surrounding whitespace does not change identity.
	d := DatasetRow{Name: "  Maruti Swift Dzire VDI  ", Year: " 2014 "}
	assert.Equal(t, a.CanonicalID(), d.CanonicalID())
}

func TestPayload(t *testing.T) {
	row := DatasetRow{
		Name:         "Maruti Swift Dzire VDI",
		Year:         "2014",
		SellingPrice: "450000",
		KmDriven:     "1,45,500",
		Fuel:         "Diesel",
		Transmission: "Manual",
		Engine:       "1248 CC",
		Seats:        "5",
		BodyType:     "sedan",
	}

	payload := row.Payload()
	assert.Equal(t, "Maruti Swift Dzire VDI", payload["raw_name"])
	assert.Equal(t, "Maruti", payload["make"])
	assert.Equal(t, "Swift Dzire VDI", payload["model"])
	assert.Equal(t, 2014, payload["year"])
	assert.Equal(t, 450000, payload["price"])
	assert.Equal(t, "mid", payload["price_band"])
	assert.Equal(t, 145500, payload["km_driven"])
	assert.Equal(t, 5, payload["seats"])
	assert.Equal(t, "1248 CC", payload["engine"])
	assert.Equal(t, "sedan", payload["body_type"])
}

func TestPayloadDropsMissingValues(t *testing.T) {
	row := DatasetRow{Name: "Mahindra Thar", Year: "not-a-year", SellingPrice: ""}

	payload := row.Payload()
	assert.NotContains(t, payload, "year")
	assert.NotContains(t, payload, "price")
	assert.NotContains(t, payload, "price_band")
	assert.NotContains(t, payload, "fuel")
}

func TestPriceBandFromPrice(t *testing.T) {
	tests := []struct {
		price int
		want  string
	}{
		{100_000, "low"},
		{399_999, "low"},
		{400_000, "mid"},
		{999_999, "mid"},
		{1_000_000, "high"},
		{2_500_000, "high"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, priceBandFromPrice(tt.price), "price %d", tt.price)
	}
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"450000", 450000, true},
		{"50,000", 50000, true},
		{"1197 CC", 1197, true},
		{"  5 ", 5, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseLeadingInt(tt.in)
		require.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestEmbeddingText(t *testing.T) {
	row := DatasetRow{
		Name:         "Maruti Swift Dzire VDI",
		Year:         "2014",
		SellingPrice: "450000",
		Fuel:         "Diesel",
		Seats:        "5",
		BodyType:     "sedan",
	}

	text := row.EmbeddingText()
	assert.Contains(t, text, "Maruti Swift Dzire VDI (2014)")
	assert.Contains(t, text, "Body type: sedan.")
	assert.Contains(t, text, "Fuel: Diesel.")
	assert.Contains(t, text, "Seats: 5.")
	assert.Contains(t, text, "Selling price: 450000 rupees.")
	assert.Contains(t, text, "Price band: mid.")
}

func TestEmbeddingTextFallsBackToRawName(t *testing.T) {
	row := DatasetRow{Name: "", Year: "2014"}
	text := row.EmbeddingText()
	assert.NotContains(t, text, "(")
}
