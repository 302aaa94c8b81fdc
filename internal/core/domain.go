package core

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	Expense Kind = "expense"
	Income  Kind = "income"
)

// MaxAmount is the largest amount accepted at the form boundary.
const MaxAmount = 999_999_999

type (
	// Kind discriminates which aggregate a transaction contributes to.
	Kind string

	// Transaction is a single expense or income record. The JSON layout is
	// the persisted one, so field names must not change.
	Transaction struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Amount      float64   `json:"amount"`
		Category    Category  `json:"category"`
		Date        time.Time `json:"date"`
		Description string    `json:"description,omitempty"`
		Tags        []string  `json:"tags,omitempty"`
		Kind        Kind      `json:"type"`
		Bookmarked  bool      `json:"bookmarked,omitempty"`
	}

	// Budgets maps a category name to its allocated amount.
	Budgets map[string]float64

	// SavingsGoal tracks progress towards a target amount.
	SavingsGoal struct {
		ID            string    `json:"id"`
		Name          string    `json:"name"`
		TargetAmount  float64   `json:"targetAmount"`
		CurrentAmount float64   `json:"currentAmount"`
		Description   string    `json:"description,omitempty"`
		CreatedAt     time.Time `json:"createdAt"`
	}
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyTitle      = errors.New("title is required")
	ErrEmptyCategory   = errors.New("category is required")
	ErrUnknownCategory = errors.New("unknown category")
)

// ValidationError collects per-field problems found at the form boundary.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Add records a field problem, keeping the first one reported per field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Err returns nil when no problem was recorded.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (k Kind) Validate() error {
	switch k {
	case Expense, Income:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, string(k))
	}
}

// String implements fmt.Stringer
func (k Kind) String() string {
	return string(k)
}

// ValidateAmount checks the stored invariant: finite and not negative.
// The MaxAmount cap belongs to the form boundary and is not applied here.
func ValidateAmount(a float64) error {
	if math.IsNaN(a) || math.IsInf(a, 0) || a < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateFormAmount is ValidateAmount plus the MaxAmount cap.
func ValidateFormAmount(a float64) error {
	if err := ValidateAmount(a); err != nil {
		return err
	}
	if a > MaxAmount {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the stored invariants of a transaction. It is looser than
// the form boundary: zero amounts and unknown persisted categories pass.
func (t Transaction) Validate() error {
	var verr ValidationError
	if err := t.Kind.Validate(); err != nil {
		verr.Add("type", err.Error())
	}
	if strings.TrimSpace(t.ID) == "" {
		verr.Add("id", "id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		verr.Add("title", ErrEmptyTitle.Error())
	}
	if err := ValidateAmount(t.Amount); err != nil {
		verr.Add("amount", err.Error())
	}
	return verr.Err()
}

// Progress returns how much of the goal has been saved, capped at 100.
func (g SavingsGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return math.Min(g.CurrentAmount/g.TargetAmount*100, 100)
}

// Remaining returns the amount still missing to reach the target.
func (g SavingsGoal) Remaining() float64 {
	return math.Max(g.TargetAmount-g.CurrentAmount, 0)
}

func (g SavingsGoal) Validate() error {
	var verr ValidationError
	if strings.TrimSpace(g.Name) == "" {
		verr.Add("name", "name is required")
	}
	if err := ValidateAmount(g.TargetAmount); err != nil || g.TargetAmount == 0 {
		verr.Add("targetAmount", ErrInvalidAmount.Error())
	}
	if err := ValidateAmount(g.CurrentAmount); err != nil {
		verr.Add("currentAmount", ErrInvalidAmount.Error())
	}
	return verr.Err()
}

// Clone returns a deep copy of the budget map.
func (b Budgets) Clone() Budgets {
	out := make(Budgets, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// NormalizeTags trims, drops empties and removes duplicates preserving order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
