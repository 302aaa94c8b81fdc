package finance

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"smartbudget/internal/core"
)

// Sort keys understood by Filter.
const (
	SortByDate     = "date"
	SortByAmount   = "amount"
	SortByTitle    = "title"
	SortByCategory = "category"
)

// Filter narrows and orders a transaction list. Zero values disable a
// criterion; an empty SortBy sorts by date and an empty Order is descending.
type Filter struct {
	Search    string
	Category  string
	Kind      core.Kind
	From      time.Time
	To        time.Time
	MinAmount *float64
	MaxAmount *float64
	SortBy    string
	Ascending bool
}

// Validate rejects unknown sort keys and kinds.
func (f Filter) Validate() error {
	switch f.SortBy {
	case "", SortByDate, SortByAmount, SortByTitle, SortByCategory:
	default:
		return fmt.Errorf("unknown sort key %q", f.SortBy)
	}
	if f.Kind != "" {
		if err := f.Kind.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns the transactions of the snapshot matching the filter.
// The To bound is inclusive of the whole day it names.
func Apply(s Snapshot, f Filter) []core.Transaction {
	var src []core.Transaction
	if f.Kind != "" {
		src = s.collection(f.Kind)
	} else {
		src = merged(s)
	}

	needle := strings.ToLower(strings.TrimSpace(f.Search))
	var to time.Time
	if !f.To.IsZero() {
		to = time.Date(f.To.Year(), f.To.Month(), f.To.Day(), 0, 0, 0, 0, f.To.Location()).AddDate(0, 0, 1)
	}

	out := make([]core.Transaction, 0, len(src))
	for _, t := range src {
		if needle != "" && !matchesSearch(t, needle) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(string(t.Category.OrFallback()), f.Category) {
			continue
		}
		if !f.From.IsZero() && t.Date.Before(f.From) {
			continue
		}
		if !to.IsZero() && !t.Date.Before(to) {
			continue
		}
		if f.MinAmount != nil && t.Amount < *f.MinAmount {
			continue
		}
		if f.MaxAmount != nil && t.Amount > *f.MaxAmount {
			continue
		}
		out = append(out, t)
	}

	less := lessFunc(f.SortBy)
	sort.SliceStable(out, func(i, j int) bool {
		if f.Ascending {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return out
}

func matchesSearch(t core.Transaction, needle string) bool {
	if strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) ||
		strings.Contains(strings.ToLower(string(t.Category)), needle) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func lessFunc(key string) func(a, b core.Transaction) bool {
	switch key {
	case SortByAmount:
		return func(a, b core.Transaction) bool { return a.Amount < b.Amount }
	case SortByTitle:
		return func(a, b core.Transaction) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case SortByCategory:
		return func(a, b core.Transaction) bool { return a.Category < b.Category }
	default:
		return func(a, b core.Transaction) bool { return a.Date.Before(b.Date) }
	}
}
