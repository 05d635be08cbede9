// Package booking defines the flight offer and booking domain shared by the
// chat handlers and the backends that serve them.
package booking

import (
	"context"
	"errors"
	"time"
)

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"

	PaymentPaid = "paid"

	CurrencyINR = "INR"
	CurrencyUSD = "USD"
)

var (
	ErrOfferNotFound     = errors.New("offer not found")
	ErrOfferExpired      = errors.New("offer expired")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInsufficientSeats = errors.New("not enough seats available")
	ErrBookingCancelled  = errors.New("booking already cancelled")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrUnavailable       = errors.New("backend unavailable")
)

// Offer is a cached flight offer.
type Offer struct {
	OfferID     string         `json:"offer_id"`
	Origin      string         `json:"origin"`
	Destination string         `json:"destination"`
	DepartTS    time.Time      `json:"depart_ts"`
	ArriveTS    time.Time      `json:"arrive_ts"`
	Airline     string         `json:"airline"`
	FlightNo    string         `json:"flight_no"`
	Price       float64        `json:"price"`
	Currency    string         `json:"currency"`
	Seats       int            `json:"seats"`
	ExpiresAt   time.Time      `json:"expires_at,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
}

type SearchRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date,omitempty"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
	Infants       int    `json:"infants"`
}

type Passenger struct {
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	DateOfBirth    string `json:"date_of_birth,omitempty"`
	PassportNumber string `json:"passport_number,omitempty"`
}

type CreateRequest struct {
	OfferID        string      `json:"offer_id"`
	UserEmail      string      `json:"user_email"`
	Passengers     []Passenger `json:"passengers"`
	FoodPreference bool        `json:"food_preference"`
}

// Booking is created once and afterwards only moves to cancelled.
type Booking struct {
	BookingID       string      `json:"booking_id"`
	UserEmail       string      `json:"user_email"`
	OfferID         string      `json:"offer_id"`
	Passengers      []Passenger `json:"passengers"`
	TotalAmount     float64     `json:"total_amount"`
	Currency        string      `json:"currency"`
	PaymentStatus   string      `json:"payment_status"`
	Status          string      `json:"status"`
	FoodPreference  bool        `json:"food_preference"`
	Origin          string      `json:"origin,omitempty"`
	Destination     string      `json:"destination,omitempty"`
	OriginCity      string      `json:"origin_city,omitempty"`
	DestinationCity string      `json:"destination_city,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Backend is the flight and booking service used by the chat handlers.
type Backend interface {
	SearchOffers(ctx context.Context, req SearchRequest) ([]Offer, error)
	GetOffer(ctx context.Context, offerID string) (Offer, error)
	CreateBooking(ctx context.Context, req CreateRequest) (Booking, error)
	GetBooking(ctx context.Context, bookingID string) (Booking, error)
	ListBookings(ctx context.Context, userEmail string) ([]Booking, error)
	CancelBooking(ctx context.Context, bookingID string) (Booking, error)
}
