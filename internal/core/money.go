package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts user input into a currency-unit amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// exponents and non-finite values are rejected, and the result must lie in
// (0, MaxAmount].
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,5")  -> 12.5, nil
//	ParseAmount("0")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	digits := 0
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return 0, ErrInvalidAmount
			}
			digits++
		}
	}
	if digits == 0 {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if err := ValidatePositiveAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ValidatePositiveAmount is the form-boundary amount check: strictly positive
// and capped on top of the stored invariant.
func ValidatePositiveAmount(a float64) error {
	if err := ValidateFormAmount(a); err != nil {
		return err
	}
	if a == 0 {
		return ErrInvalidAmount
	}
	return nil
}
