package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ent0n29/flightdesk/internal/booking"
	"github.com/ent0n29/flightdesk/internal/conversation"
	"github.com/ent0n29/flightdesk/internal/intent"
	"github.com/ent0n29/flightdesk/internal/llm"
	"github.com/ent0n29/flightdesk/internal/logging"
	"github.com/ent0n29/flightdesk/internal/observability"
	"github.com/ent0n29/flightdesk/internal/passenger"
	"github.com/ent0n29/flightdesk/internal/recovery"
)

const chatTimeout = 15 * time.Second

// Handlers holds the dependencies shared by the task handlers.
type Handlers struct {
	backend   booking.Backend
	llm       llm.Client
	prompts   *llm.Catalogue
	extractor *Extractor
	timeouts  booking.Timeouts
	usdToINR  float64
	metrics   *observability.Metrics
	log       logrus.FieldLogger
}

// HandlersConfig configures NewHandlers. Zero values get defaults.
type HandlersConfig struct {
	Backend  booking.Backend
	LLM      llm.Client
	Prompts  *llm.Catalogue
	Timeouts booking.Timeouts
	USDToINR float64
	Metrics  *observability.Metrics
	Log      logrus.FieldLogger
}

func NewHandlers(cfg HandlersConfig) *Handlers {
	if cfg.Prompts == nil {
		cfg.Prompts = llm.DefaultCatalogue()
	}
	if cfg.Timeouts == (booking.Timeouts{}) {
		cfg.Timeouts = booking.DefaultTimeouts()
	}
	if cfg.USDToINR <= 0 {
		cfg.USDToINR = booking.DefaultUSDToINR
	}
	if cfg.Log == nil {
		cfg.Log = logging.Discard()
	}
	return &Handlers{
		backend:   cfg.Backend,
		llm:       cfg.LLM,
		prompts:   cfg.Prompts,
		extractor: NewExtractor(cfg.LLM, cfg.Prompts, cfg.Metrics, cfg.Log),
		timeouts:  cfg.Timeouts,
		usdToINR:  cfg.USDToINR,
		metrics:   cfg.Metrics,
		log:       cfg.Log,
	}
}

// Router wires every intent to its handler.
func (h *Handlers) Router() *Router {
	r := NewRouter(h.Fallback)
	r.Register(intent.FlightSearch, "flight_search", h.FlightSearch)
	r.Register(intent.OfferSelection, "offer_selection", h.OfferSelection)
	r.Register(intent.SlotFilling, "slot_filling", h.SlotFilling)
	r.Register(intent.Payment, "payment", h.Payment)
	r.Register(intent.BookingInquiry, "booking_inquiry", h.BookingInquiry)
	r.Register(intent.General, "fallback", h.Fallback)
	return r
}

// call times one backend operation under its own deadline.
func (h *Handlers) call(ctx context.Context, op string, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	start := time.Now()
	err := fn(ctx)
	h.metrics.ObserveUpstream("backend", op, time.Since(start), upstreamCode(err))
	return err
}

func upstreamCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case booking.IsUserError(err):
		return "rejected"
	default:
		return "error"
	}
}

var errNoOffer = errors.New("no offer selected")

// ensureOffer makes sure the state carries a selected offer, re-deriving the
// id from slots or history and re-fetching the offer when needed.
func (h *Handlers) ensureOffer(ctx context.Context, t *Turn) (*booking.Offer, error) {
	if t.State.SelectedOffer != nil {
		return t.State.SelectedOffer, nil
	}
	id := t.State.Slots.Get(conversation.SlotOfferID)
	if id == "" {
		id = recovery.OfferID(t.History)
	}
	if id == "" {
		return nil, errNoOffer
	}

	var offer booking.Offer
	err := h.call(ctx, "get_offer", h.timeouts.Offer, func(ctx context.Context) error {
		var err error
		offer, err = h.backend.GetOffer(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	offer = booking.OfferForDisplay(offer, h.usdToINR)
	t.State.SelectedOffer = &offer
	t.State.Slots.Set(conversation.SlotOfferID, offer.OfferID)
	return t.State.SelectedOffer, nil
}

// book creates the booking for the selected offer and the collected fields.
// Callers guarantee both are present.
func (h *Handlers) book(ctx context.Context, t *Turn) Reply {
	if t.State.BookingID != "" {
		return answer(fmt.Sprintf("Your booking is already confirmed.\n\nBooking ID: %s", t.State.BookingID))
	}
	offer := t.State.SelectedOffer
	fields := t.State.Fields

	owner := strings.TrimSpace(t.UserEmail)
	if !passenger.ValidEmail(owner) {
		owner = fields.Email
	}
	req := booking.CreateRequest{
		OfferID:   offer.OfferID,
		UserEmail: owner,
		Passengers: []booking.Passenger{{
			FullName: fields.FullName,
			Email:    fields.Email,
			Phone:    fields.Phone,
		}},
		FoodPreference: wantsFood(t.Message),
	}

	var created booking.Booking
	err := h.call(ctx, "create_booking", h.timeouts.Create, func(ctx context.Context) error {
		var err error
		created, err = h.backend.CreateBooking(ctx, req)
		return err
	})
	if err != nil {
		h.log.WithError(err).WithField("offer_id", offer.OfferID).Warn("booking create failed")
		switch {
		case errors.Is(err, booking.ErrOfferExpired):
			return apology("That offer has expired. Please search again to see current fares.")
		case errors.Is(err, booking.ErrInsufficientSeats):
			return apology("Sorry, there are not enough seats left on this flight. Please choose another offer.")
		case errors.Is(err, booking.ErrOfferNotFound):
			t.State.SelectedOffer = nil
			delete(t.State.Slots, conversation.SlotOfferID)
			return apology("I couldn't find that offer anymore. Please search again and pick a flight.")
		case errors.Is(err, booking.ErrInvalidRequest):
			return apology("Some passenger details look invalid. Please check the email address and phone number (10 to 15 digits).")
		default:
			return apology("Booking failed. Please try again in a moment.")
		}
	}

	created = booking.ForDisplay(created, h.usdToINR)
	t.State.BookingID = created.BookingID
	return Reply{
		Outcome: OutcomeBooked,
		Text: fmt.Sprintf("✅ Booking confirmed!\n\nBooking ID: %s\nFlight: %s %s\nTotal: %s\nPassenger: %s\nEmail: %s\nPhone: %s\n\nThank you for booking with us!",
			created.BookingID, offer.Airline, offer.FlightNo, money(created.TotalAmount, created.Currency),
			fields.FullName, fields.Email, fields.Phone),
	}
}

func wantsFood(message string) bool {
	m := strings.ToLower(message)
	if strings.Contains(m, "no food") || strings.Contains(m, "no meal") || strings.Contains(m, "without") {
		return false
	}
	return strings.Contains(m, "with food") || strings.Contains(m, "with meal") || strings.Contains(m, "add food") || strings.Contains(m, "add meal")
}

func money(amount float64, currency string) string {
	switch strings.ToUpper(currency) {
	case booking.CurrencyUSD:
		return fmt.Sprintf("$%.2f", amount)
	default:
		return fmt.Sprintf("₹%.2f", amount)
	}
}

var fieldLabels = map[string]string{
	passenger.KeyFullName: "full name",
	passenger.KeyEmail:    "email",
	passenger.KeyPhone:    "phone number",
}

func missingList(f passenger.Fields) string {
	missing := f.Missing()
	labels := make([]string, len(missing))
	for i, k := range missing {
		labels[i] = fieldLabels[k]
	}
	return strings.Join(labels, ", ")
}

func detailsBlock(f passenger.Fields) string {
	return fmt.Sprintf("- Name: %s\n- Email: %s\n- Phone: %s", f.FullName, f.Email, f.Phone)
}
