package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ent0n29/flightdesk/internal/airports"
	"github.com/ent0n29/flightdesk/internal/booking"
)

type searchResponse struct {
	Offers []booking.Offer `json:"offers"`
	Count  int             `json:"count"`
}

type bookingsResponse struct {
	Bookings []booking.Booking `json:"bookings"`
	Count    int               `json:"count"`
}

func (s *Server) handleSearchFlights(w http.ResponseWriter, r *http.Request) {
	var req booking.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body must be a JSON search request")
		return
	}
	req.Origin = airports.Normalize(req.Origin)
	req.Destination = airports.Normalize(req.Destination)
	if req.Adults < 1 {
		req.Adults = 1
	}

	offers, err := s.backend.SearchOffers(r.Context(), req)
	if err != nil {
		s.respondBackendError(w, err)
		return
	}
	for i := range offers {
		offers[i] = booking.OfferForDisplay(offers[i], s.cfg.USDToINRRate)
	}
	if offers == nil {
		offers = []booking.Offer{}
	}
	respondJSON(w, http.StatusOK, searchResponse{Offers: offers, Count: len(offers)})
}

func (s *Server) handleGetOffer(w http.ResponseWriter, r *http.Request) {
	offer, err := s.backend.GetOffer(r.Context(), strings.ToUpper(chi.URLParam(r, "id")))
	if err != nil {
		s.respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking.OfferForDisplay(offer, s.cfg.USDToINRRate))
}

func (s *Server) handleAirportSearch(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	results := airports.Search(r.URL.Query().Get("query"), limit)
	if results == nil {
		results = []airports.Airport{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"airports": results, "count": len(results)})
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req booking.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body must be a JSON booking request")
		return
	}
	b, err := s.backend.CreateBooking(r.Context(), req)
	if err != nil {
		s.respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, booking.ForDisplay(b, s.cfg.USDToINRRate))
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.backend.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking.ForDisplay(b, s.cfg.USDToINRRate))
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.backend.CancelBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking.ForDisplay(b, s.cfg.USDToINRRate))
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(chi.URLParam(r, "email"))
	if email == "" {
		respondError(w, http.StatusBadRequest, "invalid_email", "missing user email")
		return
	}
	list, err := s.backend.ListBookings(r.Context(), email)
	if err != nil {
		s.respondBackendError(w, err)
		return
	}
	out := make([]booking.Booking, len(list))
	for i, b := range list {
		out[i] = booking.ForDisplay(b, s.cfg.USDToINRRate)
	}
	respondJSON(w, http.StatusOK, bookingsResponse{Bookings: out, Count: len(out)})
}

// respondBackendError maps backend sentinels to statuses. Outages are logged
// and reported without their cause.
func (s *Server) respondBackendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrOfferNotFound):
		respondError(w, http.StatusNotFound, "offer_not_found", err.Error())
	case errors.Is(err, booking.ErrBookingNotFound):
		respondError(w, http.StatusNotFound, "booking_not_found", err.Error())
	case errors.Is(err, booking.ErrOfferExpired):
		respondError(w, http.StatusGone, "offer_expired", err.Error())
	case errors.Is(err, booking.ErrInsufficientSeats):
		respondError(w, http.StatusConflict, "insufficient_seats", err.Error())
	case errors.Is(err, booking.ErrBookingCancelled):
		respondError(w, http.StatusConflict, "booking_cancelled", err.Error())
	case errors.Is(err, booking.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		s.log.WithError(err).Error("backend call failed")
		respondError(w, http.StatusBadGateway, "backend_unavailable", "booking backend unavailable")
	}
}
