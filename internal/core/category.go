package core

import (
	"fmt"
	"strings"
)

// Category names a spending or earning bucket. Expense and income kinds
// each have a closed set; Uncategorized is the aggregation fallback for
// records stored without one.
type Category string

const (
	FoodDining     Category = "Food & Dining"
	Transportation Category = "Transportation"
	BillsUtilities Category = "Bills & Utilities"
	Entertainment  Category = "Entertainment"
	Shopping       Category = "Shopping"
	Healthcare     Category = "Healthcare"
	Education      Category = "Education"
	Travel         Category = "Travel"
	Salary         Category = "Salary"
	Freelance      Category = "Freelance"
	Business       Category = "Business"
	Investment     Category = "Investment"
	Gift           Category = "Gift"
	Other          Category = "Other"
	Uncategorized  Category = "Uncategorized"
)

var (
	expenseCategories = []Category{
		FoodDining, Transportation, BillsUtilities, Entertainment,
		Shopping, Healthcare, Education, Travel, Other,
	}
	incomeCategories = []Category{
		Salary, Freelance, Business, Investment, Gift, Other,
	}
)

// Categories returns the closed category set for a kind.
func Categories(k Kind) []Category {
	switch k {
	case Expense:
		return append([]Category(nil), expenseCategories...)
	case Income:
		return append([]Category(nil), incomeCategories...)
	default:
		return nil
	}
}

// ParseCategory resolves user input against the kind's closed set.
// Matching is case-insensitive on trimmed input.
func ParseCategory(k Kind, s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyCategory
	}
	for _, c := range Categories(k) {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w %q for %s", ErrUnknownCategory, s, k)
}

// OrFallback returns the category used for grouping.
func (c Category) OrFallback() Category {
	if strings.TrimSpace(string(c)) == "" {
		return Uncategorized
	}
	return c
}

// String implements fmt.Stringer
func (c Category) String() string {
	return string(c)
}
