package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbudget/internal/core"
)

func dated(t core.Transaction, id string, d time.Time) core.Transaction {
	t.ID = id
	t.Date = d
	return t
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2025-03", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, Monthly, p.Kind)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), p.End)

	p, err = ParsePeriod("2024", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, Yearly, p.Kind)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), p.End)

	_, err = ParsePeriod("March", time.UTC)
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	s := Snapshot{
		Expenses: []core.Transaction{
			dated(expense(40, core.Travel), "e1", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)),
			dated(expense(10, ""), "e2", time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC)),
			dated(expense(99, core.Travel), "e3", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)),
		},
		Income: []core.Transaction{
			dated(income(200, core.Salary), "i1", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
		},
	}
	now := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	r := Report(s, MonthPeriod(2025, time.March, time.UTC), now, DefaultHealthPolicy())

	assert.Equal(t, 50.0, r.TotalExpenses)
	assert.Equal(t, 200.0, r.TotalIncome)
	assert.Equal(t, 150.0, r.NetIncome)
	assert.Equal(t, 3, r.TransactionCount)
	assert.Equal(t, map[string]float64{"Travel": 40, "Uncategorized": 10}, r.ExpensesByCategory)
	assert.Equal(t, "Excellent", r.Health.Label)

	require.Len(t, r.Trends, 6)
	assert.Equal(t, "Nov 2024", r.Trends[0].Month)
	assert.Equal(t, "Apr 2025", r.Trends[5].Month)
	assert.Equal(t, MonthTrend{Month: "Mar 2025", Expenses: 50, Income: 200, Net: 150}, r.Trends[4])
	assert.Equal(t, 99.0, r.Trends[5].Expenses)
}

func TestRecent(t *testing.T) {
	var s Snapshot
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		s.Expenses = append(s.Expenses, dated(expense(1, core.Travel), "e", base.AddDate(0, 0, i*2)))
		s.Income = append(s.Income, dated(income(1, core.Salary), "i", base.AddDate(0, 0, i*2+1)))
	}

	got := Recent(s, 0)

	require.Len(t, got, DefaultRecentLimit)
	assert.Equal(t, core.Income, got[0].Kind)
	assert.Equal(t, base.AddDate(0, 0, 15), got[0].Date)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Date.After(got[i-1].Date))
	}
	assert.Len(t, Recent(s, 3), 3)
}

func TestBookmarked(t *testing.T) {
	a := dated(expense(1, core.Travel), "a", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	a.Bookmarked = true
	b := dated(income(1, core.Salary), "b", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	b.Bookmarked = true
	c := dated(expense(1, core.Travel), "c", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	got := Bookmarked(Snapshot{Expenses: []core.Transaction{a, c}, Income: []core.Transaction{b}})

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}
