package recovery

import (
	"strings"
	"unicode"

	"github.com/ent0n29/flightdesk/internal/airports"
)

// keywordWindow is how many words either side of a city are searched for a
// directional keyword.
const keywordWindow = 3

const maxCityWords = 4

type role int

const (
	roleNone role = iota
	roleOrigin
	roleDestination
)

func keywordRole(w string) role {
	switch w {
	case "from", "origin":
		return roleOrigin
	case "to", "destination":
		return roleDestination
	default:
		return roleNone
	}
}

type cityHit struct {
	code  string
	start int
	end   int // exclusive
}

// cityRoles finds city names in text and assigns each an origin or
// destination role from nearby keywords. A keyword before the city decides
// the role and scores higher the closer it is; a following "to" marks an
// origin with the lowest score. The best-scoring city wins each role.
func cityRoles(text string) (origin, destination string) {
	words := tokenize(text)
	hits := findCities(words)

	bestOrigin, bestDest := 0, 0
	for _, h := range hits {
		r, score := classify(words, h)
		switch r {
		case roleOrigin:
			if score > bestOrigin {
				bestOrigin, origin = score, h.code
			}
		case roleDestination:
			if score > bestDest {
				bestDest, destination = score, h.code
			}
		}
	}
	if origin == destination && origin != "" {
		// One city cannot be both ends; keep the stronger reading.
		if bestOrigin >= bestDest {
			destination = ""
		} else {
			origin = ""
		}
	}
	return origin, destination
}

func classify(words []string, h cityHit) (role, int) {
	for d := 1; d <= keywordWindow; d++ {
		i := h.start - d
		if i < 0 {
			break
		}
		if r := keywordRole(words[i]); r != roleNone {
			return r, keywordWindow + 2 - d
		}
	}
	for d := 0; d < keywordWindow; d++ {
		i := h.end + d
		if i >= len(words) {
			break
		}
		if keywordRole(words[i]) == roleDestination {
			return roleOrigin, 1
		}
		if keywordRole(words[i]) == roleOrigin {
			break
		}
	}
	return roleNone, 0
}

func findCities(words []string) []cityHit {
	var hits []cityHit
	for i := 0; i < len(words); {
		n := matchCity(words, i)
		if n == 0 {
			i++
			continue
		}
		code, _ := airports.CodeForCity(strings.Join(words[i:i+n], " "))
		hits = append(hits, cityHit{code: code, start: i, end: i + n})
		i += n
	}
	return hits
}

// matchCity returns the length of the longest city name starting at i.
func matchCity(words []string, i int) int {
	for n := maxCityWords; n >= 1; n-- {
		if i+n > len(words) {
			continue
		}
		if _, ok := airports.CodeForCity(strings.Join(words[i:i+n], " ")); ok {
			return n
		}
	}
	return 0
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
