package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClientCreateBooking(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/booking/simulate_confirm" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Booking{
			BookingID:   "bk-1",
			OfferID:     req.OfferID,
			UserEmail:   req.UserEmail,
			Passengers:  req.Passengers,
			TotalAmount: 4500,
			Currency:    CurrencyINR,
			Status:      StatusConfirmed,
			CreatedAt:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		})
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL+"/", Timeouts{})
	got, err := c.CreateBooking(context.Background(), CreateRequest{
		OfferID:    "OFFER_B",
		UserEmail:  "j@x.com",
		Passengers: []Passenger{{FullName: "Jane Doe", Email: "j@x.com", Phone: "9876543210"}},
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	if got.BookingID != "bk-1" || got.OfferID != "OFFER_B" {
		t.Fatalf("CreateBooking() = %+v, want bk-1 for OFFER_B", got)
	}
}

func TestHTTPClientMapsStatuses(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/flight/offer/OFFER_X":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Offer not found"}`))
		case "/api/booking/bk-1/cancel":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"Booking is already cancelled"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, Timeouts{})
	if _, err := c.GetOffer(context.Background(), "OFFER_X"); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("GetOffer() error = %v, want ErrOfferNotFound", err)
	}
	if _, err := c.CancelBooking(context.Background(), "bk-1"); !errors.Is(err, ErrBookingCancelled) {
		t.Fatalf("CancelBooking() error = %v, want ErrBookingCancelled", err)
	}
	_, err := c.ListBookings(context.Background(), "j@x.com")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("ListBookings() error = %v, want ErrUnavailable", err)
	}
	if IsUserError(err) {
		t.Fatalf("IsUserError(outage) = true, want false")
	}
}
