package transform

import "strings"

// LocationComponents is the structured form of a raw location string.
// Nil fields persist as NULL; the "Unknown" substitution for country and
// full_location happens at insert time, not here.
type LocationComponents struct {
	City          *string
	StateProvince *string
	Country       *string
}

// ExtractLocationComponents parses a raw "city, state/province, country"
// string. The country argument is passed through unchanged. Rules:
//
//	""                     → nil city, nil state
//	"City"                 → city only
//	"City, X"              → city + state/province (X may be a state or a
//	                         country — no attempt to disambiguate)
//	"City, State, Country" → city + state/province, rest ignored
func ExtractLocationComponents(locationString, country *string) LocationComponents {
	out := LocationComponents{Country: country}

	if locationString == nil {
		return out
	}
	raw := strings.TrimSpace(*locationString)
	if raw == "" {
		return out
	}

	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	out.City = nonEmpty(parts[0])
	if len(parts) >= 2 {
		out.StateProvince = nonEmpty(parts[1])
	}
	return out
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
