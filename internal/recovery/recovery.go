// Package recovery re-derives booking state from the turn history. Every
// function is pure: the same turns always yield the same projection.
//
// Turns are expected oldest first. Scans run newest first and the first match
// per key wins, so a later mention always shadows an earlier one.
package recovery

import (
	"regexp"
	"strings"

	"github.com/ent0n29/flightdesk/internal/airports"
	"github.com/ent0n29/flightdesk/internal/conversation"
	"github.com/ent0n29/flightdesk/internal/memory"
	"github.com/ent0n29/flightdesk/internal/passenger"
)

// Source tells where recovered slots came from.
type Source string

const (
	SourceNone      Source = ""
	SourceSummary   Source = "summary"
	SourceHeuristic Source = "heuristic"
)

// SummaryMarker prefixes the assistant's restatement of understood search
// parameters. Slot summaries carrying it are authoritative.
const SummaryMarker = "I understood"

// Projection is everything recoverable from a history.
type Projection struct {
	Slots      conversation.Slots `json:"slots"`
	SlotSource Source             `json:"slot_source,omitempty"`
	Fields     passenger.Fields   `json:"booking_fields"`
	OfferID    string             `json:"offer_id,omitempty"`
}

// Project runs all recovery passes over turns.
func Project(turns []memory.Turn) Projection {
	slots, src := Slots(turns)
	return Projection{
		Slots:      slots,
		SlotSource: src,
		Fields:     BookingFields(turns),
		OfferID:    OfferID(turns),
	}
}

var (
	summaryOrigin = regexp.MustCompile(`(?i)Origin\s*:\s*([A-Z]{3})\b`)
	summaryDest   = regexp.MustCompile(`(?i)Destination\s*:\s*([A-Z]{3})\b`)
	summaryDate   = regexp.MustCompile(`(?i)Date\s*:\s*(\d{4}-\d{2}-\d{2})`)
	summaryAdults = regexp.MustCompile(`(?i)Adults?\s*:\s*(\d+)`)

	userOrigin     = regexp.MustCompile(`(?i)\b(?:origin|from)\s*:?\s*([a-z]{3})\b`)
	userDest       = regexp.MustCompile(`(?i)\b(?:destination|to)\s*:?\s*([a-z]{3})\b`)
	userDate       = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	userAdults     = regexp.MustCompile(`(?i)\b(?:adults?|passengers?)\s*:?\s*(\d+)\b`)
	userAdultsPost = regexp.MustCompile(`(?i)\b(\d+)\s+(?:adults?|passengers?)\b`)

	offerIDLabel = regexp.MustCompile(`(?i)Offer\s+ID\s*:\s*([A-Z0-9_]+)`)
	offerIDToken = regexp.MustCompile(`(?i)OFFER_[A-Z0-9_]+`)
)

// Slots recovers search slots. Assistant summaries containing SummaryMarker
// are authoritative: if any field is found in one, only summary-derived
// fields are returned and the looser user-message heuristics never run.
func Slots(turns []memory.Turn) (conversation.Slots, Source) {
	if s := slotsFromSummaries(turns); len(s) > 0 {
		return s, SourceSummary
	}
	if s := slotsFromUserTurns(turns); len(s) > 0 {
		return s, SourceHeuristic
	}
	return conversation.Slots{}, SourceNone
}

func slotsFromSummaries(turns []memory.Turn) conversation.Slots {
	slots := conversation.Slots{}
	for i := len(turns) - 1; i >= 0; i-- {
		t := turns[i]
		if t.Role != memory.RoleAssistant || !strings.Contains(t.Text, SummaryMarker) {
			continue
		}
		setFirst(slots, conversation.SlotOrigin, upperGroup(summaryOrigin, t.Text))
		setFirst(slots, conversation.SlotDestination, upperGroup(summaryDest, t.Text))
		setFirst(slots, conversation.SlotDepartureDate, group(summaryDate, t.Text))
		setFirst(slots, conversation.SlotAdults, group(summaryAdults, t.Text))
	}
	return slots
}

func slotsFromUserTurns(turns []memory.Turn) conversation.Slots {
	slots := conversation.Slots{}
	for i := len(turns) - 1; i >= 0; i-- {
		t := turns[i]
		if t.Role != memory.RoleUser {
			continue
		}

		origin := explicitCode(userOrigin, t.Text)
		dest := explicitCode(userDest, t.Text)
		if origin == "" || dest == "" {
			co, cd := cityRoles(t.Text)
			if origin == "" {
				origin = co
			}
			if dest == "" {
				dest = cd
			}
		}
		setFirst(slots, conversation.SlotOrigin, origin)
		setFirst(slots, conversation.SlotDestination, dest)
		setFirst(slots, conversation.SlotDepartureDate, group(userDate, t.Text))

		adults := group(userAdults, t.Text)
		if adults == "" {
			adults = group(userAdultsPost, t.Text)
		}
		setFirst(slots, conversation.SlotAdults, adults)
	}
	return slots
}

// explicitCode accepts "from HYD" style matches only when the token is a
// known airport code or was typed in upper case, so "to the" is not read as
// airport THE.
func explicitCode(re *regexp.Regexp, text string) string {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		tok := m[1]
		code := strings.ToUpper(tok)
		if tok == code || airports.IsKnownCode(code) {
			return code
		}
	}
	return ""
}

// BookingFields recovers passenger details. Within one turn the assistant
// confirmation format beats key-value pairs, which beat bare free-form text.
func BookingFields(turns []memory.Turn) passenger.Fields {
	var f passenger.Fields
	for i := len(turns) - 1; i >= 0 && !f.Complete(); i-- {
		t := turns[i]
		switch t.Role {
		case memory.RoleAssistant:
			if got, ok := passenger.FromConfirmation(t.Text); ok {
				f.FillFrom(got)
			}
		case memory.RoleUser:
			f.FillFrom(passenger.FromUserText(t.Text))
		}
	}
	return f
}

// OfferID recovers the most recently selected offer id from assistant turns.
func OfferID(turns []memory.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		t := turns[i]
		if t.Role != memory.RoleAssistant {
			continue
		}
		if m := offerIDLabel.FindStringSubmatch(t.Text); m != nil {
			return strings.ToUpper(m[1])
		}
		lower := strings.ToLower(t.Text)
		if strings.Contains(lower, "selected flight") || strings.Contains(lower, "i've selected") {
			if m := offerIDToken.FindString(t.Text); m != "" {
				return strings.ToUpper(m)
			}
		}
	}
	return ""
}

func setFirst(slots conversation.Slots, key, value string) {
	if value == "" || slots.Has(key) {
		return
	}
	slots.Set(key, value)
}

func group(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func upperGroup(re *regexp.Regexp, text string) string {
	return strings.ToUpper(group(re, text))
}
