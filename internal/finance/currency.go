package finance

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// BaseCurrency is the currency every rate is quoted against.
const BaseCurrency = "USD"

var ErrUnknownCurrency = errors.New("unknown currency")

// Rates maps a currency code to units per one BaseCurrency.
type Rates map[string]float64

// DefaultRates is the static rate table. Values are indicative only.
func DefaultRates() Rates {
	return Rates{
		"USD": 1, "EUR": 0.85, "GBP": 0.73, "JPY": 110.0, "CAD": 1.25,
		"AUD": 1.35, "CHF": 0.92, "CNY": 6.45, "INR": 74.5, "BRL": 5.2,
		"MXN": 20.0, "KRW": 1180.0, "SGD": 1.35, "NZD": 1.4, "ZAR": 14.8,
		"TRY": 8.5, "RUB": 75.0, "HKD": 7.8, "SEK": 8.6, "NOK": 8.8,
		"DKK": 6.3, "PLN": 3.8, "CZK": 21.5, "HUF": 300.0, "ILS": 3.2,
		"EGP": 15.7, "SAR": 3.75, "AED": 3.67, "THB": 33.0, "MYR": 4.15,
		"IDR": 14000.0, "PHP": 50.0, "VND": 23000.0, "PKR": 155.0, "BDT": 85.0,
		"LKR": 200.0, "NGN": 410.0, "KES": 110.0, "UGX": 3700.0, "TZS": 2300.0,
		"GHS": 6.0, "XAF": 600.0, "XOF": 600.0,
	}
}

// Has reports whether code is in the table.
func (r Rates) Has(code string) bool {
	v, ok := r[strings.ToUpper(code)]
	return ok && v > 0
}

// Codes lists the known currency codes in alphabetical order.
func (r Rates) Codes() []string {
	out := make([]string, 0, len(r))
	for c := range r {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Convert translates amount between two currencies of the table.
func (r Rates) Convert(amount float64, from, to string) (float64, error) {
	fromRate, ok := r[strings.ToUpper(from)]
	if !ok || fromRate <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	toRate, ok := r[strings.ToUpper(to)]
	if !ok || toRate <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}
	return amount / fromRate * toRate, nil
}
