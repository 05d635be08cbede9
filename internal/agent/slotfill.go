package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/ent0n29/flightdesk/internal/booking"
	"github.com/ent0n29/flightdesk/internal/conversation"
	"github.com/ent0n29/flightdesk/internal/passenger"
)

// SlotFilling collects passenger details. Once all three are known and an
// offer is selected the booking is created in the same turn.
func (h *Handlers) SlotFilling(ctx context.Context, t *Turn) Reply {
	t.State.Fields.Overwrite(classifiedFields(t.Intent.Slots))
	t.State.Fields = h.extractor.Extract(ctx, t.Message, t.History, t.State.Fields)

	if !t.State.Fields.Complete() {
		return clarify("I still need: " + missingList(t.State.Fields) + ". Please provide these details.")
	}

	_, err := h.ensureOffer(ctx, t)
	switch {
	case err == nil:
		return h.book(ctx, t)
	case errors.Is(err, errNoOffer):
		return clarify("Perfect! I have all the details:\n" + detailsBlock(t.State.Fields) +
			"\n\nPlease select a flight first. You can select by number or provide the offer ID.")
	case errors.Is(err, booking.ErrOfferNotFound), errors.Is(err, booking.ErrOfferExpired):
		delete(t.State.Slots, conversation.SlotOfferID)
		return clarify("Perfect! I have all the details:\n" + detailsBlock(t.State.Fields) +
			"\n\nI couldn't find the selected offer anymore. Please search again and pick a flight.")
	default:
		h.log.WithError(err).Warn("offer lookup failed during slot filling")
		return answer("Perfect! I have all the details:\n" + detailsBlock(t.State.Fields) +
			"\n\nTo confirm payment, please reply 'proceed'.")
	}
}

// classifiedFields keeps only the passenger values from this turn's
// classification that pass format checks.
func classifiedFields(slots conversation.Slots) passenger.Fields {
	var f passenger.Fields
	if name := strings.TrimSpace(slots.Get(conversation.SlotFullName)); name != "" {
		f.FullName = name
	}
	if email := strings.TrimSpace(slots.Get(conversation.SlotEmail)); passenger.ValidEmail(email) {
		f.Email = email
	}
	if phone := passenger.DigitsOnly(slots.Get(conversation.SlotPhone)); passenger.ValidPhone(phone) {
		f.Phone = phone
	}
	return f
}
