package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ent0n29/flightdesk/internal/booking"
	"github.com/ent0n29/flightdesk/internal/passenger"
)

func TestSlotsKnownEmptyMarker(t *testing.T) {
	s := Slots{}
	s.MarkEmpty(SlotAdults)
	if _, ok := s[SlotAdults]; !ok {
		t.Fatalf("MarkEmpty did not record key")
	}
	if s.Has(SlotAdults) {
		t.Fatalf("Has(adults) = true for known-empty slot")
	}
	s.Set(SlotOrigin, "HYD")
	s.MarkEmpty(SlotOrigin)
	if s.Get(SlotOrigin) != "HYD" {
		t.Fatalf("MarkEmpty overwrote existing value")
	}
	if got := s.Adults(); got != 1 {
		t.Fatalf("Adults() = %d, want 1", got)
	}
	s.Set(SlotAdults, "3")
	if got := s.Adults(); got != 3 {
		t.Fatalf("Adults() = %d, want 3", got)
	}
}

func TestDerivePhase(t *testing.T) {
	offer := &booking.Offer{OfferID: "OFFER_A"}
	cases := []struct {
		name  string
		state State
		want  Phase
	}{
		{"idle", State{}, PhaseIdle},
		{"searching", State{SearchResults: []booking.Offer{{OfferID: "OFFER_A"}}}, PhaseSearching},
		{"selected", State{SelectedOffer: offer}, PhaseOfferSelected},
		{"collecting", State{SelectedOffer: offer, Fields: passenger.Fields{Email: "j@x.com"}}, PhaseCollectingFields},
		{"awaiting", State{SelectedOffer: offer, Fields: passenger.Fields{FullName: "J", Email: "j@x.com", Phone: "9876543210"}}, PhaseAwaitingPayment},
		{"confirmed", State{SelectedOffer: offer, BookingID: "bk"}, PhaseConfirmed},
	}
	for _, tc := range cases {
		if got := tc.state.DerivePhase(); got != tc.want {
			t.Fatalf("%s: DerivePhase() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCacheStoreRoundTripIsolatesCopies(t *testing.T) {
	s := NewCacheStore(time.Minute)
	ctx := context.Background()

	st := NewState("c1", "u@x.com")
	st.Slots.Set(SlotOrigin, "HYD")
	if err := s.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	st.Slots.Set(SlotOrigin, "BOM")

	got, ok, err := s.Load(ctx, "c1")
	if err != nil || !ok {
		t.Fatalf("Load() = %v, %v; want state", ok, err)
	}
	if got.Slots.Get(SlotOrigin) != "HYD" {
		t.Fatalf("stored origin = %q, want HYD", got.Slots.Get(SlotOrigin))
	}

	if err := s.Delete(ctx, "c1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := s.Load(ctx, "c1"); ok {
		t.Fatalf("Load() after Delete ok = true")
	}
}

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", ErrRedisNil
	}
	return v, nil
}

func (f *fakeRedis) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) Close() error { return nil }

func TestRedisStoreRoundTrip(t *testing.T) {
	client := &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
	s := NewRedisStore(client, WithPrefix("test:"), WithTTL(time.Hour))
	ctx := context.Background()

	st := NewState("c9", "u@x.com")
	st.Slots.Set(SlotDestination, "VTZ")
	st.Slots.MarkEmpty(SlotAdults)
	st.SelectedOffer = &booking.Offer{OfferID: "OFFER_B", Price: 4200, Currency: "INR"}
	st.Phase = PhaseOfferSelected
	if err := s.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if client.ttls["test:c9"] != time.Hour {
		t.Fatalf("ttl = %v, want 1h", client.ttls["test:c9"])
	}

	got, ok, err := s.Load(ctx, "c9")
	if err != nil || !ok {
		t.Fatalf("Load() = %v, %v; want state", ok, err)
	}
	if got.Slots.Get(SlotDestination) != "VTZ" || got.SelectedOffer == nil || got.SelectedOffer.OfferID != "OFFER_B" {
		t.Fatalf("Load() = %+v, want destination and offer restored", got)
	}
	if _, known := got.Slots[SlotAdults]; !known || got.Slots.Has(SlotAdults) {
		t.Fatalf("known-empty adults marker lost: %+v", got.Slots)
	}

	if _, ok, err := s.Load(ctx, "missing"); ok || err != nil {
		t.Fatalf("Load(missing) = %v, %v; want false, nil", ok, err)
	}
}
