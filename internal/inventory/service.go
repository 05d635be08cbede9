package inventory

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ent0n29/flightdesk/internal/airports"
	"github.com/ent0n29/flightdesk/internal/booking"
	"github.com/ent0n29/flightdesk/internal/logging"
	"github.com/ent0n29/flightdesk/internal/passenger"
)

// OfferTTL is how long a cached offer stays bookable.
const OfferTTL = 24 * time.Hour

const maxOffers = 15

var airportCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Service implements booking.Backend over a Store.
type Service struct {
	store    Store
	gen      Generator
	usdToINR float64
	log      logrus.FieldLogger
	now      func() time.Time
}

var _ booking.Backend = (*Service)(nil)

func NewService(store Store, gen Generator, usdToINR float64, log logrus.FieldLogger) *Service {
	if gen == nil {
		gen = NewMockGenerator()
	}
	if usdToINR <= 0 {
		usdToINR = booking.DefaultUSDToINR
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Service{store: store, gen: gen, usdToINR: usdToINR, log: log, now: time.Now}
}

func (s *Service) SearchOffers(ctx context.Context, req booking.SearchRequest) ([]booking.Offer, error) {
	origin := strings.ToUpper(strings.TrimSpace(req.Origin))
	destination := strings.ToUpper(strings.TrimSpace(req.Destination))
	if !airportCode.MatchString(origin) {
		return nil, fmt.Errorf("%w: invalid origin airport code", booking.ErrInvalidRequest)
	}
	if !airportCode.MatchString(destination) {
		return nil, fmt.Errorf("%w: invalid destination airport code", booking.ErrInvalidRequest)
	}
	day, err := time.Parse("2006-01-02", strings.TrimSpace(req.DepartureDate))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid departure date format, use YYYY-MM-DD", booking.ErrInvalidRequest)
	}
	if req.ReturnDate != "" {
		if _, err := time.Parse("2006-01-02", req.ReturnDate); err != nil {
			return nil, fmt.Errorf("%w: invalid return date format, use YYYY-MM-DD", booking.ErrInvalidRequest)
		}
	}

	expires := s.now().UTC().Add(OfferTTL)
	candidates := s.gen.Offers(origin, destination, day)
	if len(candidates) > maxOffers {
		candidates = candidates[:maxOffers]
	}

	out := make([]booking.Offer, 0, len(candidates))
	for _, o := range candidates {
		if o.Origin != origin || o.Destination != destination {
			s.log.WithFields(logrus.Fields{"offer_id": o.OfferID, "origin": o.Origin, "destination": o.Destination}).
				Warn("dropping offer with mismatched route")
			continue
		}
		o.Price, o.Currency = booking.DisplayAmount(o.Price, o.Currency, s.usdToINR)
		o.ExpiresAt = expires

		err := s.store.InsertOffer(ctx, o)
		if errors.Is(err, ErrDuplicateOffer) {
			// Lost an insert race; use whatever row won.
			existing, findErr := s.store.FindOffer(ctx, o.OfferID, origin, destination)
			if findErr != nil {
				s.log.WithError(findErr).WithField("offer_id", o.OfferID).Warn("duplicate offer could not be re-read")
				continue
			}
			out = append(out, existing)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cache offer %s: %w", o.OfferID, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *Service) GetOffer(ctx context.Context, offerID string) (booking.Offer, error) {
	o, err := s.store.GetOffer(ctx, strings.TrimSpace(offerID))
	if err != nil {
		return booking.Offer{}, err
	}
	return booking.OfferForDisplay(o, s.usdToINR), nil
}

func (s *Service) CreateBooking(ctx context.Context, req booking.CreateRequest) (booking.Booking, error) {
	if err := validateCreate(req); err != nil {
		return booking.Booking{}, err
	}

	offer, err := s.store.GetOffer(ctx, strings.TrimSpace(req.OfferID))
	if err != nil {
		return booking.Booking{}, err
	}
	now := s.now().UTC()
	if !offer.ExpiresAt.IsZero() && now.After(offer.ExpiresAt) {
		return booking.Booking{}, booking.ErrOfferExpired
	}
	if offer.Seats < len(req.Passengers) {
		return booking.Booking{}, booking.ErrInsufficientSeats
	}

	total := offer.Price * float64(len(req.Passengers))
	if req.FoodPreference {
		total += booking.FoodCharge(offer.Currency, s.usdToINR)
	}

	passengers := make([]booking.Passenger, len(req.Passengers))
	for i, p := range req.Passengers {
		p.Phone = passenger.DigitsOnly(p.Phone)
		p.Email = strings.TrimSpace(p.Email)
		passengers[i] = p
	}

	created, err := s.store.CreateBooking(ctx, booking.Booking{
		BookingID:      uuid.NewString(),
		UserEmail:      strings.TrimSpace(req.UserEmail),
		OfferID:        offer.OfferID,
		Passengers:     passengers,
		TotalAmount:    total,
		Currency:       offer.Currency,
		PaymentStatus:  booking.PaymentPaid,
		Status:         booking.StatusConfirmed,
		FoodPreference: req.FoodPreference,
		CreatedAt:      now,
	})
	if err != nil {
		return booking.Booking{}, err
	}
	s.log.WithFields(logrus.Fields{
		"booking_id": created.BookingID,
		"offer_id":   created.OfferID,
		"passengers": len(passengers),
	}).Info("booking created")
	return s.present(created), nil
}

func (s *Service) GetBooking(ctx context.Context, bookingID string) (booking.Booking, error) {
	b, err := s.store.GetBooking(ctx, strings.TrimSpace(bookingID))
	if err != nil {
		return booking.Booking{}, err
	}
	return s.present(b), nil
}

func (s *Service) ListBookings(ctx context.Context, userEmail string) ([]booking.Booking, error) {
	list, err := s.store.ListBookings(ctx, strings.TrimSpace(userEmail))
	if err != nil {
		return nil, err
	}
	out := make([]booking.Booking, len(list))
	for i, b := range list {
		out[i] = s.present(b)
	}
	return out, nil
}

func (s *Service) CancelBooking(ctx context.Context, bookingID string) (booking.Booking, error) {
	b, err := s.store.CancelBooking(ctx, strings.TrimSpace(bookingID))
	if err != nil {
		return booking.Booking{}, err
	}
	return s.present(b), nil
}

// present converts for display and fills city names. Stored rows are never
// rewritten.
func (s *Service) present(b booking.Booking) booking.Booking {
	out := booking.ForDisplay(b, s.usdToINR)
	out.OriginCity = airports.CityByCode(out.Origin)
	out.DestinationCity = airports.CityByCode(out.Destination)
	return out
}

func validateCreate(req booking.CreateRequest) error {
	if strings.TrimSpace(req.OfferID) == "" {
		return fmt.Errorf("%w: offer_id is required", booking.ErrInvalidRequest)
	}
	if !passenger.ValidEmail(strings.TrimSpace(req.UserEmail)) {
		return fmt.Errorf("%w: invalid user email format", booking.ErrInvalidRequest)
	}
	if len(req.Passengers) == 0 {
		return fmt.Errorf("%w: at least one passenger is required", booking.ErrInvalidRequest)
	}
	for _, p := range req.Passengers {
		if strings.TrimSpace(p.FullName) == "" {
			return fmt.Errorf("%w: passenger name is required", booking.ErrInvalidRequest)
		}
		if !passenger.ValidEmail(strings.TrimSpace(p.Email)) {
			return fmt.Errorf("%w: invalid email for passenger %s", booking.ErrInvalidRequest, p.FullName)
		}
		if !passenger.ValidPhone(p.Phone) {
			return fmt.Errorf("%w: invalid phone for passenger %s", booking.ErrInvalidRequest, p.FullName)
		}
	}
	return nil
}

// NewStore returns a Postgres store when databaseURL is set, otherwise an
// in-memory one.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewMemoryStore(), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}
