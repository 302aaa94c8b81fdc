package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
}

// FormatMoney renders an amount rounded to cents with thousands separators
// and the currency symbol, or the code when no symbol is known.
// e.g., FormatMoney(1234.5, "USD") -> "$1,234.50", FormatMoney(-3, "CHF") -> "-3.00 CHF"
func FormatMoney(amount float64, currency string) string {
	d := decimal.NewFromFloat(amount).Round(2)
	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}
	s := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	s = groupThousands(intPart) + "." + frac

	sign := ""
	if neg {
		sign = "-"
	}
	if sym, ok := currencySymbols[strings.ToUpper(currency)]; ok {
		return sign + sym + s
	}
	if currency == "" {
		return sign + s
	}
	return sign + s + " " + strings.ToUpper(currency)
}

// groupThousands adds comma separators to a string of digits.
// e.g., "1234567" -> "1,234,567"
func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 value as a percentage string.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatScore formats a health score out of 100.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.0f/100", score)
}

// Truncate shortens s to n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
