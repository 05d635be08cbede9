package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ent0n29/flightdesk/internal/booking"
)

// Generator produces candidate offers for a route and day.
type Generator interface {
	Offers(origin, destination string, day time.Time) []booking.Offer
}

const (
	mockOfferCount = 15
	mockSeats      = 9
)

var (
	mockAirlines    = []string{"AI", "6E", "SG", "UK", "G8", "AI", "6E", "SG", "UK", "AI", "6E", "SG", "UK", "AI", "6E"}
	mockFlightNos   = []string{"2872", "1234", "5678", "9012", "3456", "2699", "2345", "6789", "0123", "4567", "2874", "3456", "7890", "1234", "5678"}
	mockAirlineName = map[string]string{"AI": "Air India", "6E": "IndiGo", "SG": "SpiceJet", "UK": "Vistara", "G8": "Go First"}
)

// MockGenerator spreads fifteen single-segment flights across the day with
// rising INR fares.
type MockGenerator struct {
	newID func() string
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{newID: newOfferID}
}

func (g *MockGenerator) Offers(origin, destination string, day time.Time) []booking.Offer {
	origin, destination = strings.ToUpper(origin), strings.ToUpper(destination)
	base := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	offers := make([]booking.Offer, 0, mockOfferCount)
	for i := 0; i < mockOfferCount; i++ {
		depart := base.Add(time.Duration(6+i%18)*time.Hour + time.Duration((15+i*10)%60)*time.Minute)
		arrive := depart.Add(time.Duration(1+i%2)*time.Hour + time.Duration((30+i*5)%60)*time.Minute)
		airline := mockAirlines[i]
		offers = append(offers, booking.Offer{
			OfferID:     g.newID(),
			Origin:      origin,
			Destination: destination,
			DepartTS:    depart,
			ArriveTS:    arrive,
			Airline:     airline,
			FlightNo:    mockFlightNos[i],
			Price:       float64(int((299.99 + float64(i)*50) * booking.DefaultUSDToINR)),
			Currency:    booking.CurrencyINR,
			Seats:       mockSeats,
			Payload: map[string]any{
				"source":       "mock",
				"airline_name": mockAirlineName[airline],
				"aircraft":     "320",
				"stops":        0,
			},
		})
	}
	return offers
}

func newOfferID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "OFFER_" + strings.ToUpper(hex[:8])
}
