package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Timeouts bounds each backend operation.
type Timeouts struct {
	Search time.Duration
	Offer  time.Duration
	Create time.Duration
	Read   time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Search: 20 * time.Second,
		Offer:  10 * time.Second,
		Create: 10 * time.Second,
		Read:   8 * time.Second,
	}
}

// HTTPClient talks to an external flight/booking REST service.
type HTTPClient struct {
	baseURL  string
	client   *http.Client
	timeouts Timeouts
}

func NewHTTPClient(baseURL string, timeouts Timeouts) *HTTPClient {
	def := DefaultTimeouts()
	if timeouts.Search <= 0 {
		timeouts.Search = def.Search
	}
	if timeouts.Offer <= 0 {
		timeouts.Offer = def.Offer
	}
	if timeouts.Create <= 0 {
		timeouts.Create = def.Create
	}
	if timeouts.Read <= 0 {
		timeouts.Read = def.Read
	}
	return &HTTPClient{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:   &http.Client{Timeout: 30 * time.Second},
		timeouts: timeouts,
	}
}

type searchResponse struct {
	Offers []Offer `json:"offers"`
	Count  int     `json:"count"`
}

func (c *HTTPClient) SearchOffers(ctx context.Context, req SearchRequest) ([]Offer, error) {
	var out searchResponse
	if err := c.do(ctx, c.timeouts.Search, http.MethodPost, "/api/flight/search", req, &out, ErrOfferNotFound); err != nil {
		return nil, fmt.Errorf("search offers: %w", err)
	}
	return out.Offers, nil
}

func (c *HTTPClient) GetOffer(ctx context.Context, offerID string) (Offer, error) {
	var out Offer
	path := "/api/flight/offer/" + url.PathEscape(offerID)
	if err := c.do(ctx, c.timeouts.Offer, http.MethodGet, path, nil, &out, ErrOfferNotFound); err != nil {
		return Offer{}, fmt.Errorf("get offer %s: %w", offerID, err)
	}
	return out, nil
}

func (c *HTTPClient) CreateBooking(ctx context.Context, req CreateRequest) (Booking, error) {
	var out Booking
	if err := c.do(ctx, c.timeouts.Create, http.MethodPost, "/api/booking/simulate_confirm", req, &out, ErrOfferNotFound); err != nil {
		return Booking{}, fmt.Errorf("create booking: %w", err)
	}
	return out, nil
}

func (c *HTTPClient) GetBooking(ctx context.Context, bookingID string) (Booking, error) {
	var out Booking
	path := "/api/booking/" + url.PathEscape(bookingID)
	if err := c.do(ctx, c.timeouts.Read, http.MethodGet, path, nil, &out, ErrBookingNotFound); err != nil {
		return Booking{}, fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	return out, nil
}

func (c *HTTPClient) ListBookings(ctx context.Context, userEmail string) ([]Booking, error) {
	var out []Booking
	path := "/api/booking/user/" + url.PathEscape(userEmail)
	if err := c.do(ctx, c.timeouts.Read, http.MethodGet, path, nil, &out, ErrBookingNotFound); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

func (c *HTTPClient) CancelBooking(ctx context.Context, bookingID string) (Booking, error) {
	var out Booking
	path := "/api/booking/" + url.PathEscape(bookingID) + "/cancel"
	if err := c.do(ctx, c.timeouts.Create, http.MethodPost, path, nil, &out, ErrBookingNotFound); err != nil {
		return Booking{}, fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}
	return out, nil
}

type errorBody struct {
	Detail string `json:"detail"`
}

func (c *HTTPClient) do(ctx context.Context, timeout time.Duration, method, path string, in, out any, notFound error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		detail := strings.TrimSpace(eb.Detail)
		if detail == "" {
			detail = strings.TrimSpace(string(raw))
		}
		return statusError(res.StatusCode, detail, notFound)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(code int, detail string, notFound error) error {
	switch {
	case code == http.StatusNotFound:
		return notFound
	case code == http.StatusBadRequest && strings.Contains(strings.ToLower(detail), "already cancelled"):
		return ErrBookingCancelled
	case code == http.StatusBadRequest && strings.Contains(strings.ToLower(detail), "seats"):
		return fmt.Errorf("%w: %s", ErrInsufficientSeats, detail)
	case code >= 400 && code < 500:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, detail)
	default:
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	}
}

// IsUserError reports whether err came from bad input rather than an outage.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrOfferNotFound) ||
		errors.Is(err, ErrOfferExpired) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrInsufficientSeats) ||
		errors.Is(err, ErrBookingCancelled)
}
