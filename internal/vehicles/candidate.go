// Package vehicles models vehicle listings stored in the vector index and
// the retrieval surface over them.
package vehicles

import (
	"strconv"
	"strings"
)

// Candidate is a vehicle listing returned from a similarity search. The
// payload schema varies across ingestion sources, so metadata access is
// tolerant: missing or oddly typed fields degrade to zero values instead
// of failing.
type Candidate struct {
	ID         string
	Similarity float32
	Metadata   map[string]interface{}
}

// Name resolves a display name for the listing. It prefers raw_name, then
// name, then title, then the listing ID, and finally "Unknown".
func (c Candidate) Name() string {
	for _, key := range []string{"raw_name", "name", "title"} {
		if s := c.stringField(key); s != "" {
			return s
		}
	}
	if c.ID != "" {
		return c.ID
	}
	return "Unknown"
}

// PriceBand returns the listing's price band ("low", "mid", "high"), or
// "" when absent.
func (c Candidate) PriceBand() string {
	return strings.ToLower(c.stringField("price_band"))
}

// BodyType returns the lowercased body type, or "" when absent.
func (c Candidate) BodyType() string {
	return strings.ToLower(c.stringField("body_type"))
}

// Fuel returns the lowercased fuel type, preferring fuel_type over fuel.
func (c Candidate) Fuel() string {
	if s := c.stringField("fuel_type"); s != "" {
		return strings.ToLower(s)
	}
	return strings.ToLower(c.stringField("fuel"))
}

// Transmission returns the lowercased transmission type, or "" when absent.
func (c Candidate) Transmission() string {
	return strings.ToLower(c.stringField("transmission"))
}

// Make returns the listing's make, or "" when absent.
func (c Candidate) Make() string {
	return c.stringField("make")
}

// Model returns the listing's model, falling back to raw_name.
func (c Candidate) Model() string {
	if s := c.stringField("model"); s != "" {
		return s
	}
	return c.stringField("raw_name")
}

// Drivetrain returns the listing's drivetrain, or "" when absent.
func (c Candidate) Drivetrain() string {
	return c.stringField("drivetrain")
}

// ImageURL returns the listing's image URL, or "" when absent.
func (c Candidate) ImageURL() string {
	return c.stringField("image_url")
}

// Year returns the model year, or 0 when absent or unparsable.
func (c Candidate) Year() int {
	return c.intField("year")
}

// Seats returns the seat count, or 0 when absent or unparsable.
func (c Candidate) Seats() int {
	return c.intField("seats")
}

// KmDriven returns the odometer reading in kilometres, or 0 when absent.
func (c Candidate) KmDriven() int {
	return c.intField("km_driven")
}

// Price returns the asking price, preferring price over selling_price,
// or 0 when absent.
func (c Candidate) Price() float64 {
	if v, ok := c.floatField("price"); ok {
		return v
	}
	v, _ := c.floatField("selling_price")
	return v
}

// Tags returns the listing's feature tags, or nil when absent.
func (c Candidate) Tags() []string {
	raw, ok := c.Metadata["tags"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				tags = append(tags, s)
			}
		}
		return tags
	default:
		return nil
	}
}

// Specs returns a compact structured projection of the listing used in
// API responses.
func (c Candidate) Specs() map[string]interface{} {
	return map[string]interface{}{
		"make":         c.Make(),
		"model":        c.Model(),
		"raw_name":     c.stringField("raw_name"),
		"year":         c.Year(),
		"fuel_type":    c.Fuel(),
		"seats":        c.Seats(),
		"price":        c.Price(),
		"price_band":   c.PriceBand(),
		"km_driven":    c.KmDriven(),
		"drivetrain":   c.Drivetrain(),
		"transmission": c.Transmission(),
		"tags":         c.Tags(),
	}
}

func (c Candidate) stringField(key string) string {
	raw, ok := c.Metadata[key]
	if !ok || raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func (c Candidate) intField(key string) int {
	raw, ok := c.Metadata[key]
	if !ok || raw == nil {
		return 0
	}
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func (c Candidate) floatField(key string) (float64, bool) {
	raw, ok := c.Metadata[key]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
