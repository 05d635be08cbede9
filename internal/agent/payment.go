package agent

import (
	"context"
	"errors"
	"regexp"

	"github.com/ent0n29/flightdesk/internal/booking"
	"github.com/ent0n29/flightdesk/internal/conversation"
)

var (
	affirmative = regexp.MustCompile(`(?i)\b(?:proceed|confirm(?:ed)?|yes)\b`)
	negation    = regexp.MustCompile(`(?i)\b(?:no|not|don'?t|cancel|wait|stop|never|hold on)\b|n't\b`)
)

// confirmsPayment requires a go-ahead token and no negation anywhere in the
// message.
func confirmsPayment(message string) bool {
	return affirmative.MatchString(message) && !negation.MatchString(message)
}

// Payment books only on an explicit go-ahead.
func (h *Handlers) Payment(ctx context.Context, t *Turn) Reply {
	if !confirmsPayment(t.Message) {
		return clarify("Please reply 'proceed' to confirm payment and complete your booking.")
	}
	if t.State.BookingID != "" {
		return h.book(ctx, t)
	}

	if _, err := h.ensureOffer(ctx, t); err != nil {
		switch {
		case errors.Is(err, errNoOffer):
			return clarify("No offer selected. Please select a flight first. You can select by number or provide the offer ID.")
		case errors.Is(err, booking.ErrOfferNotFound), errors.Is(err, booking.ErrOfferExpired):
			delete(t.State.Slots, conversation.SlotOfferID)
			return clarify("I couldn't find the selected offer anymore. Please search again and pick a flight.")
		default:
			h.log.WithError(err).Warn("offer lookup failed during payment")
			return apology("Sorry, I couldn't load your selected flight right now. Please try again.")
		}
	}

	if !t.State.Fields.Complete() {
		t.State.Fields = h.extractor.Extract(ctx, t.Message, t.History, t.State.Fields)
	}
	if !t.State.Fields.Complete() {
		return clarify("Missing passenger details: " + missingList(t.State.Fields) + ". Please provide these details.")
	}
	return h.book(ctx, t)
}
