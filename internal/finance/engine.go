// Package finance turns a snapshot of transactions and budgets into totals,
// category breakdowns, budget utilization and the heuristics built on them.
// Every function here is pure: results are recomputed from the snapshot on
// each call and never cached.
package finance

import (
	"sort"

	"smartbudget/internal/core"
)

// Snapshot is the immutable input of the engine. Callers obtain one from
// the ledger and must not mutate the slices afterwards.
type Snapshot struct {
	Expenses []core.Transaction `json:"expenses"`
	Income   []core.Transaction `json:"income"`
	Budgets  core.Budgets       `json:"budgets"`
}

// Utilization is the spent-vs-allocated view of one budgeted category.
type Utilization struct {
	Spent      float64 `json:"spent"`
	Budget     float64 `json:"budget"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

// Result bundles every aggregate derived from a snapshot.
type Result struct {
	TotalExpenses      float64                `json:"totalExpenses"`
	TotalIncome        float64                `json:"totalIncome"`
	NetBalance         float64                `json:"netBalance"`
	ExpensesByCategory map[string]float64     `json:"expensesByCategory"`
	IncomeByCategory   map[string]float64     `json:"incomeByCategory"`
	BudgetUtilization  map[string]Utilization `json:"budgetUtilization"`
}

// CategoryAmount is one entry of a category breakdown.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

func (s Snapshot) collection(k core.Kind) []core.Transaction {
	switch k {
	case core.Expense:
		return s.Expenses
	case core.Income:
		return s.Income
	default:
		return nil
	}
}

// TotalFor sums the amounts of a kind's collection. Empty yields 0.
func (s Snapshot) TotalFor(k core.Kind) float64 {
	return sum(s.collection(k))
}

// ByCategory groups a kind's collection by category. Records without a
// category are grouped under core.Uncategorized; categories without records
// are absent.
func (s Snapshot) ByCategory(k core.Kind) map[string]float64 {
	return groupByCategory(s.collection(k))
}

// NetBalance is income minus expenses and may be negative.
func (s Snapshot) NetBalance() float64 {
	return s.TotalFor(core.Income) - s.TotalFor(core.Expense)
}

// BudgetUtilization reports one entry per budget key. Spend in categories
// without a budget is not included.
func (s Snapshot) BudgetUtilization() map[string]Utilization {
	return utilization(s.Budgets, s.ByCategory(core.Expense))
}

// Aggregate computes the full Result for a snapshot.
func Aggregate(s Snapshot) Result {
	expenses := s.ByCategory(core.Expense)
	totalExpenses := s.TotalFor(core.Expense)
	totalIncome := s.TotalFor(core.Income)
	return Result{
		TotalExpenses:      totalExpenses,
		TotalIncome:        totalIncome,
		NetBalance:         totalIncome - totalExpenses,
		ExpensesByCategory: expenses,
		IncomeByCategory:   s.ByCategory(core.Income),
		BudgetUtilization:  utilization(s.Budgets, expenses),
	}
}

// SortedBreakdown orders a category map by amount descending, then name.
func SortedBreakdown(m map[string]float64) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(m))
	for c, a := range m {
		out = append(out, CategoryAmount{Category: c, Amount: a})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func sum(txs []core.Transaction) float64 {
	var total float64
	for _, t := range txs {
		total += t.Amount
	}
	return total
}

func groupByCategory(txs []core.Transaction) map[string]float64 {
	out := make(map[string]float64)
	for _, t := range txs {
		out[string(t.Category.OrFallback())] += t.Amount
	}
	return out
}

func utilization(budgets core.Budgets, spentBy map[string]float64) map[string]Utilization {
	out := make(map[string]Utilization, len(budgets))
	for category, budget := range budgets {
		spent := spentBy[category]
		u := Utilization{
			Spent:     spent,
			Budget:    budget,
			Remaining: budget - spent,
		}
		if budget > 0 {
			u.Percentage = spent / budget * 100
		}
		out[category] = u
	}
	return out
}

// sortedKeys returns the keys of a utilization map in ascending order.
func sortedKeys(m map[string]Utilization) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
