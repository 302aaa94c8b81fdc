package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.0", 1, true},
		{"12.34", 12.34, true},
		{"12,34", 12.34, true},
		{"0.01", 0.01, true},
		{".5", 0.5, true},
		{" 2.50 ", 2.5, true},
		{"999999999", 999999999, true},
		{"1000000000", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"abc", 0, false},
		{"1e3", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestValidateAmount(t *testing.T) {
	ok := []float64{0, 0.01, 100, MaxAmount, 1.5e9}
	for _, a := range ok {
		if err := ValidateAmount(a); err != nil {
			t.Fatalf("%v expected ok, got %v", a, err)
		}
	}
	bad := []float64{-0.01, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, a := range bad {
		if err := ValidateAmount(a); err == nil {
			t.Fatalf("%v expected error", a)
		}
	}
	if err := ValidatePositiveAmount(0); err == nil {
		t.Fatalf("zero must be rejected at the form boundary")
	}
	if err := ValidateFormAmount(MaxAmount); err != nil {
		t.Fatalf("MaxAmount expected ok at the form boundary, got %v", err)
	}
	if err := ValidateFormAmount(MaxAmount + 1); err == nil {
		t.Fatalf("amounts above MaxAmount must be rejected at the form boundary")
	}
	if err := ValidatePositiveAmount(MaxAmount + 1); err == nil {
		t.Fatalf("ValidatePositiveAmount must keep the cap")
	}
}
