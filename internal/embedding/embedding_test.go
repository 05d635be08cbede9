package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ent0n29/flightdesk/internal/logging"
)

const embeddingBody = `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.25,0.5,0.75]}],"model":"test","usage":{"prompt_tokens":1,"total_tokens":1}}`

func newTestEmbedder(t *testing.T, handler http.HandlerFunc) (*OpenAIEmbedder, *[]time.Duration) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	e := NewOpenAIEmbedder(Config{
		APIKey:     "test-key",
		BaseURL:    ts.URL + "/v1",
		Dim:        4,
		RatePerSec: 1000,
		Timeout:    time.Second,
	}, logging.Discard())
	var waits []time.Duration
	e.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return e, &waits
}

func TestOpenAIEmbedderRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	e, waits := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path = %q, want /v1/embeddings", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_error"}}`))
			return
		}
		_, _ = w.Write([]byte(embeddingBody))
	})

	got := e.Embed(context.Background(), "flights from hyderabad")
	if len(got) != 4 {
		t.Fatalf("len(Embed()) = %d, want 4", len(got))
	}
	if got[0] != 0.25 || got[3] != 0 {
		t.Fatalf("Embed() = %v, want padded response vector", got)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
	if len(*waits) != 2 || (*waits)[0] != 2*time.Second || (*waits)[1] != 4*time.Second {
		t.Fatalf("waits = %v, want [2s 4s]", *waits)
	}
}

func TestOpenAIEmbedderZeroVectorAfterRetries(t *testing.T) {
	var calls atomic.Int32
	e, _ := newTestEmbedder(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_error"}}`))
	})

	got := e.Embed(context.Background(), "hello")
	for _, x := range got {
		if x != 0 {
			t.Fatalf("Embed() = %v, want zero vector", got)
		}
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestOpenAIEmbedderDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	e, _ := newTestEmbedder(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	})
	_ = e.Embed(context.Background(), "hello")
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestHashEmbedderDeterministicAndNormalised(t *testing.T) {
	h := NewHashEmbedder(64)
	a := h.Embed(context.Background(), "Flights from Hyderabad to Vizag")
	b := h.Embed(context.Background(), "flights from hyderabad to vizag")
	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}
	var norm float32
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding differs at %d", i)
		}
		norm += a[i] * a[i]
	}
	if norm < 0.99 || norm > 1.01 {
		t.Fatalf("squared norm = %v, want ~1", norm)
	}
	empty := h.Embed(context.Background(), "  ")
	for _, x := range empty {
		if x != 0 {
			t.Fatalf("Embed(blank) not zero")
		}
	}
}

func TestNewSelectsImplementation(t *testing.T) {
	e, err := New(Config{Mode: "auto", Dim: 8}, nil)
	if err != nil {
		t.Fatalf("New(auto) error = %v", err)
	}
	if _, ok := e.(*HashEmbedder); !ok {
		t.Fatalf("New(auto, no key) = %T, want *HashEmbedder", e)
	}
	if _, err := New(Config{Mode: "openai"}, nil); err == nil {
		t.Fatalf("New(openai, no key) error = nil, want error")
	}
	if _, err := New(Config{Mode: "bogus"}, nil); err == nil {
		t.Fatalf("New(bogus) error = nil, want error")
	}
}
