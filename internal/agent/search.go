package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ent0n29/flightdesk/internal/airports"
	"github.com/ent0n29/flightdesk/internal/booking"
	"github.com/ent0n29/flightdesk/internal/conversation"
	"github.com/ent0n29/flightdesk/internal/recovery"
)

// FlightSearch needs origin, destination and date. Missing inputs get a
// clarifying reply that restates what was understood.
func (h *Handlers) FlightSearch(ctx context.Context, t *Turn) Reply {
	slots := t.State.Slots
	origin := airports.Normalize(slots.Get(conversation.SlotOrigin))
	destination := airports.Normalize(slots.Get(conversation.SlotDestination))
	date := strings.TrimSpace(slots.Get(conversation.SlotDepartureDate))
	adults := slots.Adults()

	if origin != "" {
		slots.Set(conversation.SlotOrigin, origin)
	}
	if destination != "" {
		slots.Set(conversation.SlotDestination, destination)
	}

	var missing, understood []string
	if origin == "" {
		missing = append(missing, "origin (city or airport code)")
	} else {
		understood = append(understood, "Origin: "+origin)
	}
	if destination == "" {
		missing = append(missing, "destination (city or airport code)")
	} else {
		understood = append(understood, "Destination: "+destination)
	}
	if date == "" {
		missing = append(missing, "departure date (YYYY-MM-DD)")
	} else {
		understood = append(understood, "Date: "+date)
	}
	if len(missing) > 0 {
		var b strings.Builder
		b.WriteString("I need a few more details to search for flights.\n")
		if len(understood) > 0 {
			fmt.Fprintf(&b, "%s: %s\n", recovery.SummaryMarker, strings.Join(understood, ", "))
		}
		fmt.Fprintf(&b, "Please provide: %s", strings.Join(missing, ", "))
		return clarify(b.String())
	}

	var offers []booking.Offer
	err := h.call(ctx, "search", h.timeouts.Search, func(ctx context.Context) error {
		var err error
		offers, err = h.backend.SearchOffers(ctx, booking.SearchRequest{
			Origin:        origin,
			Destination:   destination,
			DepartureDate: date,
			Adults:        adults,
		})
		return err
	})
	if err != nil {
		h.log.WithError(err).WithField("route", origin+"-"+destination).Warn("flight search failed")
		if errors.Is(err, booking.ErrInvalidRequest) {
			return clarify(fmt.Sprintf("I couldn't search with those details. I was searching for:\n- Origin: %s\n- Destination: %s\n- Date: %s\n\nPlease check the airport codes and that the date is in YYYY-MM-DD format.",
				origin, destination, date))
		}
		return apology("Sorry, I couldn't search for flights right now. Please try again.")
	}

	for i := range offers {
		offers[i] = booking.OfferForDisplay(offers[i], h.usdToINR)
	}
	t.State.SearchResults = offers
	t.State.SelectedOffer = nil
	t.State.BookingID = ""
	delete(t.State.Slots, conversation.SlotOfferID)

	if len(offers) == 0 {
		return answer(fmt.Sprintf("❌ No flights found from %s to %s on %s. Please try different dates or airports.", origin, destination, date))
	}

	lines := make([]string, len(offers))
	for i, o := range offers {
		lines[i] = fmt.Sprintf("%d. %s %s - %s (%s to %s, departs %s) [%s]",
			i+1, o.Airline, o.FlightNo, money(o.Price, o.Currency), o.Origin, o.Destination,
			o.DepartTS.Format("15:04"), o.OfferID)
	}
	return answer(fmt.Sprintf("✈️ I found %d flights from %s to %s on %s:\n\n%s\n\nPlease select an offer by number (1-%d) or provide the offer ID.",
		len(offers), origin, destination, date, strings.Join(lines, "\n"), len(offers)))
}
