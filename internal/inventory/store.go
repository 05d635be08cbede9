// Package inventory is the local flight and booking backend: an offer cache
// fed by an offer generator, and the bookings made against it.
package inventory

import (
	"context"
	"errors"

	"github.com/ent0n29/flightdesk/internal/booking"
)

// ErrDuplicateOffer is returned by InsertOffer when the id already exists.
var ErrDuplicateOffer = errors.New("offer already cached")

// Store persists offers and bookings.
type Store interface {
	InsertOffer(ctx context.Context, offer booking.Offer) error
	GetOffer(ctx context.Context, offerID string) (booking.Offer, error)
	// FindOffer looks an offer up by id restricted to a route.
	FindOffer(ctx context.Context, offerID, origin, destination string) (booking.Offer, error)
	// CreateBooking reserves one seat per passenger on the booked offer and
	// inserts b, atomically. It fails with booking.ErrInsufficientSeats when
	// the offer cannot seat everyone.
	CreateBooking(ctx context.Context, b booking.Booking) (booking.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (booking.Booking, error)
	// ListBookings returns a user's bookings, newest first.
	ListBookings(ctx context.Context, userEmail string) ([]booking.Booking, error)
	// CancelBooking flips a confirmed booking to cancelled.
	CancelBooking(ctx context.Context, bookingID string) (booking.Booking, error)
	Close() error
}
