// Package offline answers prompts without a model. It reads messages with the
// same regex extractors the handlers use, so a deployment without an API key
// still runs the whole booking flow.
package offline

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/ent0n29/flightdesk/internal/conversation"
	"github.com/ent0n29/flightdesk/internal/llm"
	"github.com/ent0n29/flightdesk/internal/memory"
	"github.com/ent0n29/flightdesk/internal/passenger"
	"github.com/ent0n29/flightdesk/internal/recovery"
)

// Client answers with keyword heuristics. Replies have the same JSON shapes
// the real prompts ask for.
type Client struct{}

func New() *Client { return &Client{} }

const foodReply = "Food service costs ₹200 (200 Indian Rupees) per booking. This charge will be added to your total amount if you select the food service option during booking."

var (
	offerID  = regexp.MustCompile(`(?i)OFFER_[A-Z0-9_]+`)
	ordinal  = regexp.MustCompile(`^\s*(?:option\s+|flight\s+|#)?(\d{1,2})\s*$`)
	payWords = regexp.MustCompile(`(?i)\b(?:proceed|confirm|pay|payment|yes)\b`)
	inquiry  = regexp.MustCompile(`(?i)\b(?:my bookings?|booking history|previous bookings?|past bookings?|list bookings?|show bookings?|booking status)\b`)
	search   = regexp.MustCompile(`(?i)\b(?:flights?|fly|search|from|to|travel)\b`)
	choose   = regexp.MustCompile(`(?i)\b(?:select|choose|pick|book|take)\b`)
)

func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	switch req.Kind {
	case llm.KindIntent:
		return classify(req.Input), nil
	case llm.KindExtract:
		return extract(req.Input), nil
	default:
		if strings.Contains(strings.ToLower(req.Input), "food") || strings.Contains(strings.ToLower(req.Input), "meal") {
			return foodReply, nil
		}
		return llm.CannedReply, nil
	}
}

func classify(message string) string {
	slots := map[string]any{}
	intent := "general"
	confidence := 0.6

	fields := passenger.FromUserText(message)
	explicit := passenger.FromKeyValue(message)
	switch {
	case inquiry.MatchString(message):
		intent = "booking_inquiry"
	case offerID.MatchString(message):
		intent = "offer_selection"
		slots[conversation.SlotOfferID] = strings.ToUpper(offerID.FindString(message))
	case ordinal.MatchString(message):
		intent = "offer_selection"
	case !fields.IsEmpty():
		intent = "slot_filling"
		putNonEmpty(slots, conversation.SlotFullName, explicit.FullName)
		putNonEmpty(slots, conversation.SlotEmail, explicit.Email)
		putNonEmpty(slots, conversation.SlotPhone, explicit.Phone)
	case payWords.MatchString(message):
		intent = "payment"
	case search.MatchString(message):
		found, _ := recovery.Slots([]memory.Turn{{Role: memory.RoleUser, Text: message}})
		for k := range found {
			slots[k] = found.Get(k)
		}
		if len(found) > 0 || !choose.MatchString(message) {
			intent = "flight_search"
		} else {
			intent = "offer_selection"
		}
	}
	if intent != "general" {
		confidence = 0.8
	}

	b, _ := json.Marshal(map[string]any{
		"intent":     intent,
		"slots":      slots,
		"confidence": confidence,
	})
	return string(b)
}

// extract reports only explicit "field: value" answers and bare contact
// tokens; loosely worded names are left for the caller to fill gaps with.
func extract(message string) string {
	f := passenger.FromKeyValue(message)
	b, _ := json.Marshal(map[string]any{
		"done": f.Complete(),
		"booking_fields": map[string]any{
			passenger.KeyFullName: nullable(f.FullName),
			passenger.KeyEmail:    nullable(f.Email),
			passenger.KeyPhone:    nullable(f.Phone),
		},
		"missing": f.Missing(),
	})
	return string(b)
}

func putNonEmpty(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
