package booking

import (
	"math"
	"strings"
)

// DefaultUSDToINR is the fixed display conversion rate.
const DefaultUSDToINR = 83.0

// FoodChargeINR is added once per booking when a meal is requested.
const FoodChargeINR = 200.0

// DisplayAmount converts amount to INR for presentation. INR amounts pass
// through untouched, so applying it to an already-converted value is a no-op
// as long as the returned currency is carried along.
func DisplayAmount(amount float64, currency string, usdToINR float64) (float64, string) {
	if usdToINR <= 0 {
		usdToINR = DefaultUSDToINR
	}
	if strings.EqualFold(strings.TrimSpace(currency), CurrencyUSD) {
		return round2(amount * usdToINR), CurrencyINR
	}
	if currency == "" {
		currency = CurrencyINR
	}
	return amount, strings.ToUpper(currency)
}

// ForDisplay returns a copy of b with its total in INR. Stored data is never
// touched.
func ForDisplay(b Booking, usdToINR float64) Booking {
	out := b
	out.Passengers = append([]Passenger(nil), b.Passengers...)
	out.TotalAmount, out.Currency = DisplayAmount(b.TotalAmount, b.Currency, usdToINR)
	return out
}

// OfferForDisplay is ForDisplay for offers.
func OfferForDisplay(o Offer, usdToINR float64) Offer {
	out := o
	out.Price, out.Currency = DisplayAmount(o.Price, o.Currency, usdToINR)
	return out
}

// FoodCharge returns the meal surcharge in the offer's currency.
func FoodCharge(currency string, usdToINR float64) float64 {
	if usdToINR <= 0 {
		usdToINR = DefaultUSDToINR
	}
	if strings.EqualFold(currency, CurrencyUSD) {
		return FoodChargeINR / usdToINR
	}
	return FoodChargeINR
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
