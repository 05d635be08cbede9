package inventory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ent0n29/flightdesk/internal/booking"
)

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu       sync.Mutex
	offers   map[string]booking.Offer
	bookings map[string]booking.Booking
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		offers:   make(map[string]booking.Offer),
		bookings: make(map[string]booking.Booking),
	}
}

func (s *MemoryStore) InsertOffer(_ context.Context, offer booking.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offers[offer.OfferID]; ok {
		return ErrDuplicateOffer
	}
	s.offers[offer.OfferID] = offer
	return nil
}

func (s *MemoryStore) GetOffer(_ context.Context, offerID string) (booking.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[offerID]
	if !ok {
		return booking.Offer{}, booking.ErrOfferNotFound
	}
	return o, nil
}

func (s *MemoryStore) FindOffer(ctx context.Context, offerID, origin, destination string) (booking.Offer, error) {
	o, err := s.GetOffer(ctx, offerID)
	if err != nil {
		return booking.Offer{}, err
	}
	if !strings.EqualFold(o.Origin, origin) || !strings.EqualFold(o.Destination, destination) {
		return booking.Offer{}, booking.ErrOfferNotFound
	}
	return o, nil
}

func (s *MemoryStore) CreateBooking(_ context.Context, b booking.Booking) (booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.offers[b.OfferID]
	if !ok {
		return booking.Booking{}, booking.ErrOfferNotFound
	}
	if o.Seats < len(b.Passengers) {
		return booking.Booking{}, booking.ErrInsufficientSeats
	}
	o.Seats -= len(b.Passengers)
	s.offers[o.OfferID] = o

	b.Origin, b.Destination = o.Origin, o.Destination
	b.Passengers = append([]booking.Passenger(nil), b.Passengers...)
	s.bookings[b.BookingID] = b
	return b, nil
}

func (s *MemoryStore) GetBooking(_ context.Context, bookingID string) (booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return booking.Booking{}, booking.ErrBookingNotFound
	}
	return b, nil
}

func (s *MemoryStore) ListBookings(_ context.Context, userEmail string) ([]booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []booking.Booking
	for _, b := range s.bookings {
		if strings.EqualFold(b.UserEmail, userEmail) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CancelBooking(_ context.Context, bookingID string) (booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return booking.Booking{}, booking.ErrBookingNotFound
	}
	if b.Status == booking.StatusCancelled {
		return booking.Booking{}, booking.ErrBookingCancelled
	}
	b.Status = booking.StatusCancelled
	s.bookings[bookingID] = b
	return b, nil
}

func (s *MemoryStore) Close() error { return nil }
