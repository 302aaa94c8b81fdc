package finance

import (
	"fmt"
	"sort"
	"time"

	"smartbudget/internal/core"
)

// DefaultRecentLimit is the number of transactions returned by Recent when
// the caller passes a non-positive limit.
const DefaultRecentLimit = 10

// PeriodKind selects the width of a report window.
type PeriodKind string

const (
	Monthly PeriodKind = "monthly"
	Yearly  PeriodKind = "yearly"
)

// Period is a half-open [Start, End) reporting window.
type Period struct {
	Kind  PeriodKind `json:"kind"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
}

// MonthPeriod returns the window covering one calendar month.
func MonthPeriod(year int, month time.Month, loc *time.Location) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Period{Kind: Monthly, Start: start, End: start.AddDate(0, 1, 0)}
}

// YearPeriod returns the window covering one calendar year.
func YearPeriod(year int, loc *time.Location) Period {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return Period{Kind: Yearly, Start: start, End: start.AddDate(1, 0, 0)}
}

// ParsePeriod reads "2025-03" as a month or "2025" as a year.
func ParsePeriod(s string, loc *time.Location) (Period, error) {
	if t, err := time.ParseInLocation("2006-01", s, loc); err == nil {
		return MonthPeriod(t.Year(), t.Month(), loc), nil
	}
	if t, err := time.ParseInLocation("2006", s, loc); err == nil {
		return YearPeriod(t.Year(), loc), nil
	}
	return Period{}, fmt.Errorf("invalid period %q: expected YYYY-MM or YYYY", s)
}

// Contains reports whether t falls inside the window.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Restrict returns the part of the snapshot dated inside the period.
// Budgets are carried over unchanged.
func (s Snapshot) Restrict(p Period) Snapshot {
	return Snapshot{
		Expenses: within(s.Expenses, p),
		Income:   within(s.Income, p),
		Budgets:  s.Budgets,
	}
}

// PeriodReport summarizes one reporting window.
type PeriodReport struct {
	Period             Period             `json:"period"`
	TotalExpenses      float64            `json:"totalExpenses"`
	TotalIncome        float64            `json:"totalIncome"`
	NetIncome          float64            `json:"netIncome"`
	ExpensesByCategory map[string]float64 `json:"expenseCategories"`
	IncomeByCategory   map[string]float64 `json:"incomeCategories"`
	TransactionCount   int                `json:"transactionCount"`
	Trends             []MonthTrend       `json:"monthlyTrends"`
	Health             Health             `json:"healthScore"`
}

// MonthTrend is the income and spend of one calendar month.
type MonthTrend struct {
	Month    string  `json:"month"`
	Expenses float64 `json:"expenses"`
	Income   float64 `json:"income"`
	Net      float64 `json:"net"`
}

// Report builds the period report, including the trailing six-month trend
// ending at now and the health score of the window.
func Report(s Snapshot, p Period, now time.Time, policy HealthPolicy) PeriodReport {
	in := s.Restrict(p)
	r := Aggregate(in)
	return PeriodReport{
		Period:             p,
		TotalExpenses:      r.TotalExpenses,
		TotalIncome:        r.TotalIncome,
		NetIncome:          r.NetBalance,
		ExpensesByCategory: r.ExpensesByCategory,
		IncomeByCategory:   r.IncomeByCategory,
		TransactionCount:   len(in.Expenses) + len(in.Income),
		Trends:             MonthlyTrends(s, now, 6),
		Health:             HealthScore(r, policy),
	}
}

// MonthlyTrends returns one entry per month for the last n months, oldest
// first, the current month included.
func MonthlyTrends(s Snapshot, now time.Time, n int) []MonthTrend {
	if n <= 0 {
		return nil
	}
	out := make([]MonthTrend, 0, n)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := n - 1; i >= 0; i-- {
		start := first.AddDate(0, -i, 0)
		p := MonthPeriod(start.Year(), start.Month(), now.Location())
		exp := sum(within(s.Expenses, p))
		inc := sum(within(s.Income, p))
		out = append(out, MonthTrend{
			Month:    start.Format("Jan 2006"),
			Expenses: exp,
			Income:   inc,
			Net:      inc - exp,
		})
	}
	return out
}

// Recent merges both kinds and returns the newest limit transactions.
func Recent(s Snapshot, limit int) []core.Transaction {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	all := merged(s)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.After(all[j].Date)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

// Bookmarked returns the bookmarked transactions of both kinds, newest first.
func Bookmarked(s Snapshot) []core.Transaction {
	var out []core.Transaction
	for _, t := range merged(s) {
		if t.Bookmarked {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func merged(s Snapshot) []core.Transaction {
	all := make([]core.Transaction, 0, len(s.Expenses)+len(s.Income))
	all = append(all, s.Expenses...)
	all = append(all, s.Income...)
	return all
}

func within(txs []core.Transaction, p Period) []core.Transaction {
	var out []core.Transaction
	for _, t := range txs {
		if p.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}
