package finance

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// MaxInsights bounds the length of the list returned by Insights.
const MaxInsights = 8

// Priority orders insights; higher values sort first.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// MarshalText encodes the priority by name.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// InsightType is the tone of an insight.
type InsightType string

const (
	TypeInfo       InsightType = "info"
	TypeWarning    InsightType = "warning"
	TypeDanger     InsightType = "danger"
	TypeSuccess    InsightType = "success"
	TypeSuggestion InsightType = "suggestion"
)

// Insight is one advisory message derived from the aggregates.
type Insight struct {
	Type     InsightType `json:"type"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Priority Priority    `json:"priority"`
}

// Insights evaluates every rule against the snapshot and returns at most
// MaxInsights entries, high priority first. Rules that look at recent
// activity are evaluated relative to now.
func Insights(s Snapshot, now time.Time) []Insight {
	r := Aggregate(s)
	var out []Insight
	add := func(t InsightType, p Priority, title, format string, args ...any) {
		out = append(out, Insight{Type: t, Title: title, Message: fmt.Sprintf(format, args...), Priority: p})
	}

	if r.TotalIncome == 0 && r.TotalExpenses == 0 {
		add(TypeInfo, PriorityHigh, "Welcome to Smart Budget Tracker!",
			"Start by adding your income and expenses to get personalized insights.")
	}

	if r.TotalIncome > 0 {
		ratio := r.TotalExpenses / r.TotalIncome * 100
		if ratio > 80 {
			add(TypeWarning, PriorityHigh, "High Expense Ratio",
				"You're spending %.1f%% of your income. Consider reducing expenses or increasing income.", ratio)
		} else if ratio < 50 {
			add(TypeSuccess, PriorityMedium, "Great Financial Discipline!",
				"You're only spending %.1f%% of your income. Keep up the excellent savings!", ratio)
		}
	}

	if r.NetBalance < 0 {
		add(TypeDanger, PriorityHigh, "Negative Balance Alert",
			"You're spending $%.2f more than you earn. Review your expenses immediately.", math.Abs(r.NetBalance))
	} else if r.NetBalance > r.TotalIncome*0.2 {
		add(TypeSuccess, PriorityMedium, "Strong Savings",
			"You're saving $%.2f this period. Consider investing or building an emergency fund.", r.NetBalance)
	}

	if top := SortedBreakdown(r.ExpensesByCategory); len(top) > 0 && r.TotalExpenses > 0 {
		share := top[0].Amount / r.TotalExpenses * 100
		if share > 50 {
			add(TypeWarning, PriorityMedium, "High Category Spending",
				"%s accounts for %.1f%% of your expenses. Consider diversifying your spending.", top[0].Category, share)
		}
	}

	for _, category := range sortedKeys(r.BudgetUtilization) {
		u := r.BudgetUtilization[category]
		if u.Percentage > 100 {
			add(TypeDanger, PriorityHigh, "Budget Exceeded",
				"You've exceeded your %s budget by $%.2f.", category, u.Spent-u.Budget)
		} else if u.Percentage > 80 {
			add(TypeWarning, PriorityMedium, "Budget Warning",
				"%s budget is %.1f%% used. $%.2f remaining.", category, u.Percentage, u.Remaining)
		}
	}

	if recent := countSince(s, now.Add(-30*24*time.Hour)); recent > 0 {
		if perDay := float64(recent) / 30; perDay > 2 {
			add(TypeInfo, PriorityLow, "Frequent Transactions",
				"You're making %.1f transactions per day. Track your spending patterns.", perDay)
		}
	}

	if r.TotalIncome > 0 && r.NetBalance > 0 {
		if rate := r.NetBalance / r.TotalIncome * 100; rate < 20 {
			add(TypeSuggestion, PriorityMedium, "Savings Opportunity",
				"Aim to save at least 20%% of your income. You're currently at %.1f%%.", rate)
		}
	}

	if n := countInMonth(s, now); n > 10 {
		add(TypeInfo, PriorityLow, "Active Month",
			"You've recorded %d transactions this month. Keep tracking!", n)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	if len(out) > MaxInsights {
		out = out[:MaxInsights]
	}
	return out
}

func countSince(s Snapshot, since time.Time) int {
	n := 0
	for _, t := range s.Expenses {
		if t.Date.After(since) {
			n++
		}
	}
	return n
}

func countInMonth(s Snapshot, now time.Time) int {
	n := 0
	for _, t := range s.Expenses {
		d := t.Date.In(now.Location())
		if d.Year() == now.Year() && d.Month() == now.Month() {
			n++
		}
	}
	return n
}
