// Package conversation holds the typed per-conversation booking state that
// survives between turns.
package conversation

import (
	"strconv"
	"strings"
	"time"

	"github.com/ent0n29/flightdesk/internal/booking"
	"github.com/ent0n29/flightdesk/internal/passenger"
)

// Slot keys understood by the classifier and the handlers.
const (
	SlotOrigin        = "origin"
	SlotDestination   = "destination"
	SlotDepartureDate = "departure_date"
	SlotAdults        = "adults"
	SlotOfferID       = "offer_id"
	SlotFullName      = passenger.KeyFullName
	SlotEmail         = passenger.KeyEmail
	SlotPhone         = passenger.KeyPhone
)

// SlotKeys lists every known slot in prompt order.
var SlotKeys = []string{
	SlotOrigin, SlotDestination, SlotDepartureDate, SlotAdults,
	SlotOfferID, SlotFullName, SlotEmail, SlotPhone,
}

// IsSlotKey reports whether key belongs to the slot vocabulary.
func IsSlotKey(key string) bool {
	for _, k := range SlotKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Slots is the accumulated slot map. A nil value is a known-empty marker; an
// absent key has never been seen.
type Slots map[string]*string

func (s Slots) Get(key string) string {
	if v := s[key]; v != nil {
		return *v
	}
	return ""
}

func (s Slots) Has(key string) bool {
	return s[key] != nil
}

func (s Slots) Set(key, value string) {
	v := value
	s[key] = &v
}

// MarkEmpty records key as known-empty unless it already holds a value.
func (s Slots) MarkEmpty(key string) {
	if _, ok := s[key]; !ok {
		s[key] = nil
	}
}

// Adults returns the adult count, coerced to at least one.
func (s Slots) Adults() int {
	n, err := strconv.Atoi(strings.TrimSpace(s.Get(SlotAdults)))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (s Slots) Clone() Slots {
	out := make(Slots, len(s))
	for k, v := range s {
		if v == nil {
			out[k] = nil
			continue
		}
		c := *v
		out[k] = &c
	}
	return out
}

// Phase is the explicit position in the booking flow.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseSearching        Phase = "searching"
	PhaseOfferSelected    Phase = "offer_selected"
	PhaseCollectingFields Phase = "collecting_fields"
	PhaseAwaitingPayment  Phase = "awaiting_payment"
	PhaseConfirmed        Phase = "confirmed"
)

// State is the persisted record for one conversation.
type State struct {
	ConversationID string           `json:"conversation_id"`
	UserEmail      string           `json:"user_email"`
	Phase          Phase            `json:"phase"`
	Slots          Slots            `json:"slots"`
	Fields         passenger.Fields `json:"booking_fields"`
	SelectedOffer  *booking.Offer   `json:"selected_offer,omitempty"`
	SearchResults  []booking.Offer  `json:"search_results,omitempty"`
	BookingID      string           `json:"booking_id,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func NewState(conversationID, userEmail string) State {
	return State{
		ConversationID: conversationID,
		UserEmail:      userEmail,
		Phase:          PhaseIdle,
		Slots:          Slots{},
	}
}

// DerivePhase computes the phase implied by the record's contents.
func (s State) DerivePhase() Phase {
	switch {
	case s.BookingID != "":
		return PhaseConfirmed
	case s.SelectedOffer != nil && s.Fields.Complete():
		return PhaseAwaitingPayment
	case s.SelectedOffer != nil && !s.Fields.IsEmpty():
		return PhaseCollectingFields
	case s.SelectedOffer != nil:
		return PhaseOfferSelected
	case len(s.SearchResults) > 0:
		return PhaseSearching
	default:
		return PhaseIdle
	}
}

func (s State) Clone() State {
	out := s
	out.Slots = s.Slots.Clone()
	if s.SelectedOffer != nil {
		o := *s.SelectedOffer
		out.SelectedOffer = &o
	}
	out.SearchResults = append([]booking.Offer(nil), s.SearchResults...)
	return out
}
