package agent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ent0n29/flightdesk/internal/booking"
	"github.com/ent0n29/flightdesk/internal/passenger"
)

var (
	bookingIDPattern = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)
	historyRequest   = regexp.MustCompile(`(?i)\b(?:all|history|bookings|past|previous)\b`)
)

// BookingInquiry shows one booking when its id is known, from the message or
// from this conversation, otherwise the user's booking history.
func (h *Handlers) BookingInquiry(ctx context.Context, t *Turn) Reply {
	if id := bookingIDPattern.FindString(t.Message); id != "" {
		return h.showBooking(ctx, strings.ToLower(id))
	}
	if id := t.State.BookingID; id != "" && !historyRequest.MatchString(t.Message) {
		return h.showBooking(ctx, id)
	}

	email := strings.TrimSpace(t.UserEmail)
	if !passenger.ValidEmail(email) {
		email = t.State.Fields.Email
	}
	if email == "" {
		return clarify("Please share the email address you booked with, or your booking ID.")
	}

	var bookings []booking.Booking
	err := h.call(ctx, "list_bookings", h.timeouts.Read, func(ctx context.Context) error {
		var err error
		bookings, err = h.backend.ListBookings(ctx, email)
		return err
	})
	if err != nil {
		h.log.WithError(err).Warn("booking history fetch failed")
		return apology("Sorry, I couldn't retrieve your bookings right now. Please try again.")
	}
	if len(bookings) == 0 {
		return answer("You don't have any bookings yet. Would you like to search for flights?")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📒 Your Booking History (%d booking(s))\n", len(bookings))
	for i, bk := range bookings {
		bk = booking.ForDisplay(bk, h.usdToINR)
		fmt.Fprintf(&b, "\n📘 Booking %d\n%s\n", i+1, bookingSummary(bk))
	}
	return answer(strings.TrimRight(b.String(), "\n"))
}

func (h *Handlers) showBooking(ctx context.Context, id string) Reply {
	var bk booking.Booking
	err := h.call(ctx, "get_booking", h.timeouts.Read, func(ctx context.Context) error {
		var err error
		bk, err = h.backend.GetBooking(ctx, id)
		return err
	})
	if errors.Is(err, booking.ErrBookingNotFound) {
		return clarify(fmt.Sprintf("I couldn't find a booking with ID %s. Please check the ID and try again.", id))
	}
	if err != nil {
		h.log.WithError(err).WithField("booking_id", id).Warn("booking fetch failed")
		return apology("Sorry, I couldn't retrieve that booking right now. Please try again.")
	}
	bk = booking.ForDisplay(bk, h.usdToINR)
	return answer("📋 Booking Details\n" + bookingSummary(bk))
}

func bookingSummary(bk booking.Booking) string {
	lines := []string{
		"Booking ID: " + bk.BookingID,
		"Status: " + bk.Status,
	}
	if bk.Origin != "" && bk.Destination != "" {
		lines = append(lines, fmt.Sprintf("Route: %s → %s", place(bk.Origin, bk.OriginCity), place(bk.Destination, bk.DestinationCity)))
	}
	lines = append(lines, "Total: "+money(bk.TotalAmount, bk.Currency))
	if bk.FoodPreference {
		lines = append(lines, "Meal: included")
	}
	for _, p := range bk.Passengers {
		lines = append(lines, fmt.Sprintf("Passenger: %s (%s)", p.FullName, p.Email))
	}
	if !bk.CreatedAt.IsZero() {
		lines = append(lines, "Booked on: "+bk.CreatedAt.Format("2006-01-02 15:04"))
	}
	return strings.Join(lines, "\n")
}

func place(code, city string) string {
	if city == "" {
		return code
	}
	return fmt.Sprintf("%s (%s)", city, code)
}
