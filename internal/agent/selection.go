package agent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ent0n29/flightdesk/internal/booking"
	"github.com/ent0n29/flightdesk/internal/conversation"
)

var (
	ordinalPattern = regexp.MustCompile(`(?i)^\s*(?:option|flight|number|no\.?|#)?\s*(\d{1,2})(?:st|nd|rd|th)?\s*[.!]?\s*$`)
	ordinalWords   = map[string]int{
		"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
		"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	}
)

// OfferSelection resolves the chosen offer, in order: an offer id named by
// this turn's classification, an offer id appearing in the message, then a
// 1-based ordinal into the last search results.
func (h *Handlers) OfferSelection(ctx context.Context, t *Turn) Reply {
	results := t.State.SearchResults

	id := strings.ToUpper(strings.TrimSpace(t.Intent.Slots.Get(conversation.SlotOfferID)))
	if id == "" {
		upper := strings.ToUpper(t.Message)
		for _, o := range results {
			if strings.Contains(upper, strings.ToUpper(o.OfferID)) {
				id = o.OfferID
				break
			}
		}
	}
	if id == "" {
		if n, ok := parseOrdinal(t.Message); ok {
			if len(results) == 0 {
				return clarify("Please search for flights first, then pick one by number.")
			}
			if n < 1 || n > len(results) {
				return clarify(fmt.Sprintf("Please choose a number between 1 and %d.", len(results)))
			}
			id = results[n-1].OfferID
		}
	}
	if id == "" {
		return clarify("Please provide the offer ID or select a flight number from the search results.")
	}

	var offer booking.Offer
	err := h.call(ctx, "get_offer", h.timeouts.Offer, func(ctx context.Context) error {
		var err error
		offer, err = h.backend.GetOffer(ctx, id)
		return err
	})
	if errors.Is(err, booking.ErrOfferNotFound) {
		return clarify("Offer not found. Please select a valid offer.")
	}
	if err != nil {
		h.log.WithError(err).WithField("offer_id", id).Warn("offer fetch failed")
		return apology("Sorry, I couldn't load that offer right now. Please try again.")
	}

	offer = booking.OfferForDisplay(offer, h.usdToINR)
	t.State.SelectedOffer = &offer
	t.State.BookingID = ""
	t.State.Slots.Set(conversation.SlotOfferID, offer.OfferID)

	head := fmt.Sprintf("Great! I've selected flight %s %s for %s.\n\nOffer ID: %s\n\n",
		offer.Airline, offer.FlightNo, money(offer.Price, offer.Currency), offer.OfferID)
	if t.State.Fields.Complete() {
		return answer(head + "I already have your details:\n" + detailsBlock(t.State.Fields) +
			"\n\nTo confirm payment, please reply 'proceed'.")
	}
	return answer(head + "Now I need some passenger details:\n- Full name\n- Email\n- Phone number\n\nPlease provide these details.")
}

func parseOrdinal(message string) (int, bool) {
	if m := ordinalPattern.FindStringSubmatch(message); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	for _, w := range strings.Fields(strings.ToLower(message)) {
		if n, ok := ordinalWords[strings.Trim(w, ".,!?")]; ok {
			return n, true
		}
	}
	return 0, false
}
