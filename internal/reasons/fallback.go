package reasons

import (
	"strings"

	"github.com/fyrsmithlabs/matchd/internal/persona"
	"github.com/fyrsmithlabs/matchd/internal/vehicles"
)

const genericReason = "This car is a well-rounded choice that fits your described needs."

// Fallback composes a deterministic one-sentence justification from the
// persona's primary needs and the candidate's metadata. Pure and total:
// no external call and no failure path, so every match is guaranteed a
// non-empty reason.
func Fallback(p persona.Persona, c vehicles.Candidate) string {
	var bits []string

	if p.HasPrimaryNeed("comfort") {
		bits = append(bits, "is comfortable to drive")
	}
	if p.HasPrimaryNeed("fuel_economy") {
		if strings.Contains(c.Fuel(), "hybrid") {
			bits = append(bits, "helps you save fuel with its hybrid setup")
		} else {
			bits = append(bits, "is fuel-efficient for everyday use")
		}
	}
	if p.HasPrimaryNeed("space") || strings.Contains(strings.ToLower(p.Label), "family") {
		if c.Seats() > 0 {
			bits = append(bits, "has enough space for your family")
		} else {
			bits = append(bits, "offers practical space for family use")
		}
	}
	if p.HasPrimaryNeed("safety") {
		bits = append(bits, "keeps your family's safety in mind")
	}
	if p.HasPrimaryNeed("easy_to_park") {
		bits = append(bits, "is easy to handle and park in the city")
	}

	switch c.BodyType() {
	case "suv":
		bits = append(bits, "gives you an SUV's higher driving position")
	case "sedan":
		bits = append(bits, "has a balanced sedan design for daily commutes")
	}

	if c.Year() >= 2022 {
		bits = append(bits, "comes from a recent model year with modern features")
	}

	if len(bits) == 0 {
		return genericReason
	}

	if len(bits) > 3 {
		bits = bits[:3]
	}
	sentence := strings.Join(bits, ", ")
	if !strings.HasSuffix(sentence, ".") && !strings.HasSuffix(sentence, "!") && !strings.HasSuffix(sentence, "?") {
		sentence += "."
	}
	return strings.ToUpper(sentence[:1]) + sentence[1:]
}
