package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestKindValidate(t *testing.T) {
	for _, k := range []Kind{Expense, Income} {
		if err := k.Validate(); err != nil {
			t.Fatalf("%s expected ok, got %v", k, err)
		}
	}
	if err := Kind("transfer").Validate(); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:       "a1",
		Title:    "Groceries",
		Amount:   12.5,
		Category: FoodDining,
		Date:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Kind:     Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = 0
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount satisfies the stored invariant, got %v", err)
	}

	bads := []Transaction{
		{ID: "", Title: "x", Amount: 1, Kind: Expense},
		{ID: "a", Title: "  ", Amount: 1, Kind: Expense},
		{ID: "a", Title: "x", Amount: -1, Kind: Expense},
		{ID: "a", Title: "x", Amount: 1, Kind: "other"},
	}
	for i, b := range bads {
		err := b.Validate()
		if err == nil {
			t.Fatalf("bad case %d expected error", i)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("bad case %d expected ErrValidation, got %v", i, err)
		}
	}
}

func TestValidationError(t *testing.T) {
	var verr ValidationError
	if verr.Err() != nil {
		t.Fatalf("empty error must be nil")
	}
	verr.Add("title", "title is required")
	verr.Add("title", "second message")
	verr.Add("amount", "invalid amount")

	err := verr.Err()
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := err.Error(); got != "validation failed: amount: invalid amount; title: title is required" {
		t.Fatalf("unexpected message %q", got)
	}
	var target *ValidationError
	if !errors.As(err, &target) || target.Fields["title"] != "title is required" {
		t.Fatalf("expected first message to win, got %+v", target)
	}
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		kind Kind
		in   string
		out  Category
		err  error
	}{
		{Expense, "Food & Dining", FoodDining, nil},
		{Expense, "  food & dining ", FoodDining, nil},
		{Expense, "Other", Other, nil},
		{Income, "salary", Salary, nil},
		{Income, "Food & Dining", "", ErrUnknownCategory},
		{Expense, "Salary", "", ErrUnknownCategory},
		{Expense, "", "", ErrEmptyCategory},
		{Income, "   ", "", ErrEmptyCategory},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.kind, tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%s/%q expected %v, got %v", tc.kind, tc.in, tc.err, err)
			}
			continue
		}
		if err != nil || got != tc.out {
			t.Fatalf("%s/%q expected %q, got %q (err=%v)", tc.kind, tc.in, tc.out, got, err)
		}
	}
}

func TestCategoriesReturnsCopy(t *testing.T) {
	cats := Categories(Expense)
	if len(cats) != 9 {
		t.Fatalf("expected 9 expense categories, got %d", len(cats))
	}
	cats[0] = "mutated"
	if Categories(Expense)[0] != FoodDining {
		t.Fatalf("Categories must not expose the internal slice")
	}
	if len(Categories(Income)) != 6 {
		t.Fatalf("expected 6 income categories")
	}
	if Categories("bogus") != nil {
		t.Fatalf("unknown kind must yield nil")
	}
}

func TestCategoryOrFallback(t *testing.T) {
	if Category("").OrFallback() != Uncategorized {
		t.Fatalf("blank category must fall back")
	}
	if Category(" ").OrFallback() != Uncategorized {
		t.Fatalf("whitespace category must fall back")
	}
	if Category("Custom").OrFallback() != "Custom" {
		t.Fatalf("unknown persisted category must be kept verbatim")
	}
}

func TestSavingsGoal(t *testing.T) {
	g := SavingsGoal{ID: "g", Name: "Trip", TargetAmount: 200, CurrentAmount: 50}
	if g.Progress() != 25 {
		t.Fatalf("expected 25%%, got %v", g.Progress())
	}
	if g.Remaining() != 150 {
		t.Fatalf("expected 150 remaining, got %v", g.Remaining())
	}
	g.CurrentAmount = 500
	if g.Progress() != 100 || g.Remaining() != 0 {
		t.Fatalf("progress must cap at 100, got %v / %v", g.Progress(), g.Remaining())
	}
	if (SavingsGoal{Name: "x"}).Progress() != 0 {
		t.Fatalf("zero target must yield 0 progress")
	}
	if err := (SavingsGoal{Name: "", TargetAmount: 1}).Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := (SavingsGoal{Name: "x", TargetAmount: 0}).Validate(); err == nil || !strings.Contains(err.Error(), "targetAmount") {
		t.Fatalf("expected targetAmount error, got %v", err)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" a", "b", "a", "", "  "})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected tags %v", got)
	}
	if NormalizeTags([]string{"", " "}) != nil {
		t.Fatalf("expected nil for all-empty input")
	}
}

func TestBudgetsClone(t *testing.T) {
	b := Budgets{"Food & Dining": 50}
	c := b.Clone()
	c["Food & Dining"] = 10
	if b["Food & Dining"] != 50 {
		t.Fatalf("clone must not alias the original")
	}
}

func TestTransactionUnmarshalDates(t *testing.T) {
	cases := map[string]time.Time{
		`"2025-03-04"`:               time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		`"2025-03-04T10:20:30Z"`:     time.Date(2025, 3, 4, 10, 20, 30, 0, time.UTC),
		`"2025-03-04T10:20:30.123Z"`: time.Date(2025, 3, 4, 10, 20, 30, 123000000, time.UTC),
		`"2025-03-04T10:20:30"`:      time.Date(2025, 3, 4, 10, 20, 30, 0, time.UTC),
	}
	for in, want := range cases {
		var tx Transaction
		if err := json.Unmarshal([]byte(`{"id":"1","title":"x","amount":2,"type":"expense","date":`+in+`}`), &tx); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if !tx.Date.Equal(want) {
			t.Fatalf("%s: got %v want %v", in, tx.Date, want)
		}
		if tx.ID != "1" || tx.Amount != 2 || tx.Kind != Expense {
			t.Fatalf("%s: other fields lost: %+v", in, tx)
		}
	}
	var tx Transaction
	if err := json.Unmarshal([]byte(`{"date":"yesterday"}`), &tx); err == nil {
		t.Fatalf("expected error for invalid date")
	}
}
