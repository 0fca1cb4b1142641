package vehicles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DatasetRow is one used-car listing from the source CSV. Fields keep
// the raw column text; numeric parsing happens while building the
// payload so rows with junk values degrade instead of failing.
type DatasetRow struct {
	Name         string
	Year         string
	SellingPrice string
	KmDriven     string
	Fuel         string
	SellerType   string
	Transmission string
	Owner        string
	Mileage      string
	Engine       string
	MaxPower     string
	Torque       string
	Seats        string
	BodyType     string
	ImageURL     string
}

// RowFromRecord maps a CSV record onto a DatasetRow using the header
// for column lookup. Unknown columns are ignored, missing ones stay
// empty.
func RowFromRecord(header, record []string) DatasetRow {
	fields := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(record) {
			fields[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(record[i])
		}
	}
	return DatasetRow{
		Name:         fields["name"],
		Year:         fields["year"],
		SellingPrice: firstNonEmpty(fields["selling_price"], fields["price"]),
		KmDriven:     fields["km_driven"],
		Fuel:         fields["fuel"],
		SellerType:   fields["seller_type"],
		Transmission: fields["transmission"],
		Owner:        fields["owner"],
		Mileage:      fields["mileage"],
		Engine:       fields["engine"],
		MaxPower:     fields["max_power"],
		Torque:       fields["torque"],
		Seats:        fields["seats"],
		BodyType:     fields["body_type"],
		ImageURL:     fields["image_url"],
	}
}

// CanonicalID derives a stable listing ID from the vehicle name and
// year, so re-ingesting the same dataset overwrites instead of
// duplicating. Qdrant only accepts UUIDs or unsigned ints as point IDs,
// so the hash is emitted as a name-based UUID.
func (r DatasetRow) CanonicalID() string {
	raw := fmt.Sprintf("%s__%s", strings.TrimSpace(r.Name), strings.TrimSpace(r.Year))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(raw)).String()
}

// Payload builds the index payload for the listing. Unparseable or
// missing values are dropped rather than stored as nulls.
func (r DatasetRow) Payload() map[string]interface{} {
	name := strings.TrimSpace(r.Name)
	parts := strings.Fields(name)
	mk := ""
	model := ""
	if len(parts) > 0 {
		mk = parts[0]
	}
	if len(parts) > 1 {
		model = strings.Join(parts[1:], " ")
	}

	payload := map[string]interface{}{
		"raw_name": name,
		"make":     mk,
		"model":    model,
	}

	putInt(payload, "year", r.Year)
	putInt(payload, "km_driven", r.KmDriven)
	putInt(payload, "seats", r.Seats)
	if price, ok := parseLeadingInt(r.SellingPrice); ok {
		payload["price"] = price
		payload["price_band"] = priceBandFromPrice(price)
	}

	putString(payload, "fuel", r.Fuel)
	putString(payload, "transmission", r.Transmission)
	putString(payload, "mileage", r.Mileage)
	putString(payload, "engine", r.Engine)
	putString(payload, "max_power", r.MaxPower)
	putString(payload, "torque", r.Torque)
	putString(payload, "seller_type", r.SellerType)
	putString(payload, "owner", r.Owner)
	putString(payload, "body_type", r.BodyType)
	putString(payload, "image_url", r.ImageURL)

	return payload
}

// EmbeddingText builds the natural-language summary the embedding
// model reads for similarity search.
func (r DatasetRow) EmbeddingText() string {
	payload := r.Payload()

	var parts []string
	title := strings.TrimSpace(fmt.Sprintf("%s %s (%s)", payload["make"], payload["model"], r.Year))
	if title == "()" || strings.HasPrefix(title, "(") {
		title = payload["raw_name"].(string)
	}
	parts = append(parts, title)

	appendField := func(label, key string) {
		if v, ok := payload[key]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v.", label, v))
		}
	}

	appendField("Body type", "body_type")
	appendField("Fuel", "fuel")
	appendField("Seats", "seats")
	if price, ok := payload["price"]; ok {
		parts = append(parts, fmt.Sprintf("Selling price: %v rupees.", price))
	}
	appendField("Price band", "price_band")
	appendField("Mileage", "mileage")
	appendField("Engine", "engine")
	appendField("Max power", "max_power")
	appendField("Torque", "torque")
	if km, ok := payload["km_driven"]; ok {
		parts = append(parts, fmt.Sprintf("Kilometers driven: %v km.", km))
	}
	appendField("Transmission", "transmission")
	appendField("Seller type", "seller_type")
	appendField("Owner", "owner")

	return strings.Join(parts, " ")
}

// priceBandFromPrice maps an absolute rupee price onto the coarse
// bands stored on every listing.
func priceBandFromPrice(price int) string {
	switch {
	case price < 400_000:
		return "low"
	case price < 1_000_000:
		return "mid"
	default:
		return "high"
	}
}

// parseLeadingInt extracts an integer from values like "50,000" or
// "1197 CC".
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	token := strings.Fields(s)[0]
	token = strings.ReplaceAll(token, ",", "")
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return n, true
}

func putInt(payload map[string]interface{}, key, raw string) {
	if n, ok := parseLeadingInt(raw); ok {
		payload[key] = n
	}
}

func putString(payload map[string]interface{}, key, raw string) {
	if v := strings.TrimSpace(raw); v != "" {
		payload[key] = v
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
