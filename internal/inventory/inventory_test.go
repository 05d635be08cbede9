package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ent0n29/flightdesk/internal/booking"
)

var testNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

type fixedGenerator struct {
	offers []booking.Offer
}

func (g fixedGenerator) Offers(string, string, time.Time) []booking.Offer {
	return append([]booking.Offer(nil), g.offers...)
}

func newTestService(t *testing.T, gen Generator) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	svc := NewService(store, gen, 0, nil)
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func validRequest(offerID string, n int) booking.CreateRequest {
	req := booking.CreateRequest{OfferID: offerID, UserEmail: "jane@example.com"}
	for i := 0; i < n; i++ {
		req.Passengers = append(req.Passengers, booking.Passenger{
			FullName: fmt.Sprintf("Passenger %d", i+1),
			Email:    "jane@example.com",
			Phone:    "+91 98765-43210",
		})
	}
	return req
}

func TestMockGeneratorShape(t *testing.T) {
	offers := NewMockGenerator().Offers("hyd", "vtz", testNow)
	if len(offers) != 15 {
		t.Fatalf("len(offers) = %d, want 15", len(offers))
	}
	seen := map[string]bool{}
	airlines := map[string]bool{}
	for _, o := range offers {
		if !strings.HasPrefix(o.OfferID, "OFFER_") || len(o.OfferID) != len("OFFER_")+8 {
			t.Fatalf("offer id %q has wrong shape", o.OfferID)
		}
		if o.OfferID != strings.ToUpper(o.OfferID) {
			t.Fatalf("offer id %q is not upper case", o.OfferID)
		}
		if seen[o.OfferID] {
			t.Fatalf("duplicate offer id %q", o.OfferID)
		}
		seen[o.OfferID] = true
		airlines[o.Airline] = true
		if o.Origin != "HYD" || o.Destination != "VTZ" || o.Currency != booking.CurrencyINR {
			t.Fatalf("unexpected offer %+v", o)
		}
		if !o.ArriveTS.After(o.DepartTS) {
			t.Fatalf("offer %s arrives before departing", o.OfferID)
		}
	}
	for _, a := range []string{"AI", "6E", "SG", "UK", "G8"} {
		if !airlines[a] {
			t.Fatalf("airline %s missing from generated offers", a)
		}
	}
	if offers[0].Price != 24899 {
		t.Fatalf("first price = %v", offers[0].Price)
	}
}

func TestSearchOffersValidates(t *testing.T) {
	svc, _ := newTestService(t, nil)
	cases := []booking.SearchRequest{
		{Origin: "HY", Destination: "VTZ", DepartureDate: "2024-06-10"},
		{Origin: "HYD", Destination: "V1Z", DepartureDate: "2024-06-10"},
		{Origin: "HYD", Destination: "VTZ", DepartureDate: "10/06/2024"},
		{Origin: "HYD", Destination: "VTZ", DepartureDate: "2024-02-30"},
	}
	for _, req := range cases {
		if _, err := svc.SearchOffers(context.Background(), req); !errors.Is(err, booking.ErrInvalidRequest) {
			t.Fatalf("SearchOffers(%+v) error = %v, want ErrInvalidRequest", req, err)
		}
	}
}

func TestSearchOffersCachesWithExpiry(t *testing.T) {
	svc, store := newTestService(t, nil)
	offers, err := svc.SearchOffers(context.Background(), booking.SearchRequest{Origin: "hyd", Destination: "vtz", DepartureDate: "2024-06-10"})
	if err != nil {
		t.Fatalf("SearchOffers() error = %v", err)
	}
	if len(offers) != 15 {
		t.Fatalf("len(offers) = %d, want 15", len(offers))
	}
	cached, err := store.GetOffer(context.Background(), offers[3].OfferID)
	if err != nil {
		t.Fatalf("GetOffer() error = %v", err)
	}
	if !cached.ExpiresAt.Equal(testNow.Add(OfferTTL)) {
		t.Fatalf("ExpiresAt = %v, want %v", cached.ExpiresAt, testNow.Add(OfferTTL))
	}
}

func TestSearchOffersConvertsAndFiltersRoute(t *testing.T) {
	gen := fixedGenerator{offers: []booking.Offer{
		{OfferID: "OFFER_USD00001", Origin: "HYD", Destination: "VTZ", Price: 100, Currency: "USD", Seats: 5},
		{OfferID: "OFFER_WRONG001", Origin: "DEL", Destination: "VTZ", Price: 5000, Currency: "INR", Seats: 5},
	}}
	svc, _ := newTestService(t, gen)
	offers, err := svc.SearchOffers(context.Background(), booking.SearchRequest{Origin: "HYD", Destination: "VTZ", DepartureDate: "2024-06-10"})
	if err != nil {
		t.Fatalf("SearchOffers() error = %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("len(offers) = %d, want 1", len(offers))
	}
	if offers[0].Price != 8300 || offers[0].Currency != booking.CurrencyINR {
		t.Fatalf("offer = %v %s, want 8300 INR", offers[0].Price, offers[0].Currency)
	}
}

func TestSearchOffersDuplicateReusesExisting(t *testing.T) {
	gen := fixedGenerator{offers: []booking.Offer{
		{OfferID: "OFFER_DUP00001", Origin: "HYD", Destination: "VTZ", Price: 4000, Currency: "INR", Seats: 9},
	}}
	svc, store := newTestService(t, gen)
	existing := booking.Offer{OfferID: "OFFER_DUP00001", Origin: "HYD", Destination: "VTZ", Price: 3500, Currency: "INR", Seats: 2}
	if err := store.InsertOffer(context.Background(), existing); err != nil {
		t.Fatalf("InsertOffer() error = %v", err)
	}

	offers, err := svc.SearchOffers(context.Background(), booking.SearchRequest{Origin: "HYD", Destination: "VTZ", DepartureDate: "2024-06-10"})
	if err != nil {
		t.Fatalf("SearchOffers() error = %v", err)
	}
	if len(offers) != 1 || offers[0].Price != 3500 {
		t.Fatalf("offers = %+v, want the existing row", offers)
	}
}

func seedOffer(t *testing.T, store *MemoryStore, o booking.Offer) {
	t.Helper()
	if err := store.InsertOffer(context.Background(), o); err != nil {
		t.Fatalf("InsertOffer() error = %v", err)
	}
}

func TestCreateBookingTotalsAndSeats(t *testing.T) {
	svc, store := newTestService(t, nil)
	seedOffer(t, store, booking.Offer{
		OfferID: "OFFER_A", Origin: "HYD", Destination: "VTZ", Airline: "AI", FlightNo: "202",
		Price: 4500, Currency: "INR", Seats: 3, ExpiresAt: testNow.Add(time.Hour),
	})

	req := validRequest("OFFER_A", 2)
	req.FoodPreference = true
	b, err := svc.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	if b.TotalAmount != 9200 {
		t.Fatalf("TotalAmount = %v, want 9200", b.TotalAmount)
	}
	if b.Status != booking.StatusConfirmed || b.PaymentStatus != booking.PaymentPaid {
		t.Fatalf("status = %s/%s", b.Status, b.PaymentStatus)
	}
	if b.OriginCity != "Hyderabad" || b.Destination != "VTZ" {
		t.Fatalf("route = %s (%s) -> %s", b.Origin, b.OriginCity, b.Destination)
	}
	if b.Passengers[0].Phone != "919876543210" {
		t.Fatalf("phone = %q, want digits only", b.Passengers[0].Phone)
	}

	o, _ := store.GetOffer(context.Background(), "OFFER_A")
	if o.Seats != 1 {
		t.Fatalf("seats = %d, want 1", o.Seats)
	}
	if _, err := svc.CreateBooking(context.Background(), validRequest("OFFER_A", 2)); !errors.Is(err, booking.ErrInsufficientSeats) {
		t.Fatalf("second CreateBooking() error = %v, want ErrInsufficientSeats", err)
	}
}

func TestCreateBookingUSDFoodCharge(t *testing.T) {
	svc, store := newTestService(t, nil)
	seedOffer(t, store, booking.Offer{OfferID: "OFFER_USD", Origin: "HYD", Destination: "DXB", Price: 100, Currency: "USD", Seats: 5})

	req := validRequest("OFFER_USD", 1)
	req.FoodPreference = true
	b, err := svc.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	// 100 USD + 200/83 USD, shown in INR.
	if b.Currency != booking.CurrencyINR || b.TotalAmount != 8500 {
		t.Fatalf("total = %v %s, want 8500 INR", b.TotalAmount, b.Currency)
	}
	stored, _ := store.GetBooking(context.Background(), b.BookingID)
	if stored.Currency != booking.CurrencyUSD {
		t.Fatalf("stored currency = %s, want USD (display conversion must not mutate)", stored.Currency)
	}
}

func TestCreateBookingRejects(t *testing.T) {
	svc, store := newTestService(t, nil)
	seedOffer(t, store, booking.Offer{OfferID: "OFFER_OLD", Origin: "HYD", Destination: "VTZ", Price: 1, Currency: "INR", Seats: 5, ExpiresAt: testNow.Add(-time.Minute)})

	badEmail := validRequest("OFFER_OLD", 1)
	badEmail.Passengers[0].Email = "not-an-email"
	badPhone := validRequest("OFFER_OLD", 1)
	badPhone.Passengers[0].Phone = "12345"
	noPassengers := validRequest("OFFER_OLD", 0)

	cases := []struct {
		name string
		req  booking.CreateRequest
		want error
	}{
		{"bad email", badEmail, booking.ErrInvalidRequest},
		{"bad phone", badPhone, booking.ErrInvalidRequest},
		{"no passengers", noPassengers, booking.ErrInvalidRequest},
		{"unknown offer", validRequest("OFFER_NOPE", 1), booking.ErrOfferNotFound},
		{"expired offer", validRequest("OFFER_OLD", 1), booking.ErrOfferExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateBooking(context.Background(), tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("CreateBooking() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestListAndCancelBookings(t *testing.T) {
	svc, store := newTestService(t, nil)
	seedOffer(t, store, booking.Offer{OfferID: "OFFER_A", Origin: "HYD", Destination: "VTZ", Price: 4500, Currency: "INR", Seats: 9})

	first, err := svc.CreateBooking(context.Background(), validRequest("OFFER_A", 1))
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	svc.now = func() time.Time { return testNow.Add(time.Minute) }
	second, err := svc.CreateBooking(context.Background(), validRequest("OFFER_A", 1))
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}

	list, err := svc.ListBookings(context.Background(), "JANE@example.com")
	if err != nil {
		t.Fatalf("ListBookings() error = %v", err)
	}
	if len(list) != 2 || list[0].BookingID != second.BookingID {
		t.Fatalf("ListBookings() = %d items, want newest first", len(list))
	}

	cancelled, err := svc.CancelBooking(context.Background(), first.BookingID)
	if err != nil {
		t.Fatalf("CancelBooking() error = %v", err)
	}
	if cancelled.Status != booking.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}
	if _, err := svc.CancelBooking(context.Background(), first.BookingID); !errors.Is(err, booking.ErrBookingCancelled) {
		t.Fatalf("second CancelBooking() error = %v, want ErrBookingCancelled", err)
	}
	if _, err := svc.GetBooking(context.Background(), "missing"); !errors.Is(err, booking.ErrBookingNotFound) {
		t.Fatalf("GetBooking(missing) error = %v", err)
	}
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	svc, store := newTestService(t, nil)
	seedOffer(t, store, booking.Offer{OfferID: "OFFER_A", Origin: "HYD", Destination: "VTZ", Price: 1000, Currency: "INR", Seats: 3})

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CreateBooking(context.Background(), validRequest("OFFER_A", 1)); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if ok != 3 {
		t.Fatalf("successful bookings = %d, want 3", ok)
	}
}
