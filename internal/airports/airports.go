// Package airports holds the static airport catalogue used to turn city names
// into IATA codes and to power autocomplete.
package airports

import (
	"strings"
)

type Airport struct {
	Code    string `json:"code"`
	City    string `json:"city"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Normalize turns a city name or airport code into an upper-case code.
// Known cities map through the alias table first, so "Goa" is GOI rather than
// a code. Anything else, including a three-letter code, is upper-cased as-is.
// Empty input yields "".
func Normalize(codeOrCity string) string {
	v := strings.ToLower(strings.TrimSpace(codeOrCity))
	if v == "" {
		return ""
	}
	if code, ok := cityCodes[v]; ok {
		return code
	}
	return strings.ToUpper(v)
}

// CodeForCity looks up a city or alias. ok is false for unknown names.
func CodeForCity(city string) (string, bool) {
	code, ok := cityCodes[strings.ToLower(strings.TrimSpace(city))]
	return code, ok
}

// IsKnownCode reports whether code is in the catalogue.
func IsKnownCode(code string) bool {
	_, ok := byCode(code)
	return ok
}

// CityByCode returns the catalogue city for code, or "" when unknown.
func CityByCode(code string) string {
	a, ok := byCode(code)
	if !ok {
		return ""
	}
	return a.City
}

// Search matches query against code, city and airport name. Exact code
// matches sort first; queries shorter than two characters return nothing.
func Search(query string, limit int) []Airport {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < 2 {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	var exact, partial []Airport
	seen := make(map[string]bool)
	for _, a := range catalogue {
		if seen[a.Code] {
			continue
		}
		code := strings.ToLower(a.Code)
		switch {
		case code == q:
			exact = append(exact, a)
		case strings.Contains(strings.ToLower(a.City), q),
			strings.Contains(strings.ToLower(a.Name), q),
			strings.Contains(code, q):
			partial = append(partial, a)
		default:
			continue
		}
		seen[a.Code] = true
	}

	out := append(exact, partial...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func byCode(code string) (Airport, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		return Airport{}, false
	}
	for _, a := range catalogue {
		if a.Code == c {
			return a, true
		}
	}
	return Airport{}, false
}
