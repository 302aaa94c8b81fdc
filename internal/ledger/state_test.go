package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbudget/internal/core"
	"smartbudget/internal/kv"
)

func TestRestore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newBook(t, kv.NewMemory())
	_, _ = src.Add(ctx, core.Expense, Draft{Title: "Dinner", Amount: "30", Category: "Food & Dining"})
	_, _ = src.Add(ctx, core.Income, Draft{Title: "Pay", Amount: "900", Category: "Salary"})
	require.NoError(t, src.SetBudget(ctx, "Food & Dining", 100))
	_, _ = src.AddGoal(ctx, GoalDraft{Name: "Trip", TargetAmount: 1000})

	dst := newBook(t, kv.NewMemory())
	require.NoError(t, dst.Restore(ctx, src.State()))

	assert.Equal(t, src.Query(core.Expense), dst.Query(core.Expense))
	assert.Equal(t, src.Query(core.Income), dst.Query(core.Income))
	assert.Equal(t, src.Budgets(), dst.Budgets())
	assert.Equal(t, src.Goals(), dst.Goals())
	assert.Equal(t, src.Settings(), dst.Settings())
}

func TestRestore_PartialLeavesOthers(t *testing.T) {
	ctx := context.Background()
	b := newBook(t, kv.NewMemory())
	exp, _ := b.Add(ctx, core.Expense, Draft{Title: "Dinner", Amount: "30", Category: "Food & Dining"})

	err := b.Restore(ctx, State{Income: []core.Transaction{{ID: "x", Title: "Gift", Amount: 5, Category: core.Gift, Date: time.Now()}}})

	require.NoError(t, err)
	assert.Equal(t, []core.Transaction{exp}, b.Query(core.Expense))
	require.Len(t, b.Query(core.Income), 1)
	assert.Equal(t, core.Income, b.Query(core.Income)[0].Kind)
}

func TestRestore_AcceptsAmountsAboveFormCap(t *testing.T) {
	ctx := context.Background()
	b := newBook(t, kv.NewMemory())

	err := b.Restore(ctx, State{
		Expenses: []core.Transaction{{ID: "big", Title: "House", Amount: 1.5e9, Category: core.BillsUtilities, Date: fixedNow}},
		Budgets:  core.Budgets{"Bills & Utilities": 2e9},
	})

	require.NoError(t, err)
	require.Len(t, b.Query(core.Expense), 1)
	assert.Equal(t, 1.5e9, b.Query(core.Expense)[0].Amount)
	assert.Equal(t, core.Budgets{"Bills & Utilities": 2e9}, b.Budgets())
}

func TestRestore_RejectsWholesale(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Memory: kv.NewMemory()}
	b := newBook(t, store)
	writes := store.writes()

	err := b.Restore(ctx, State{
		Expenses: []core.Transaction{
			{ID: "a", Title: "ok", Amount: 1},
			{ID: "a", Title: "dup", Amount: 2},
		},
		Income:   []core.Transaction{{ID: "b", Title: "wrong kind", Amount: 1, Kind: core.Expense}},
		Budgets:  core.Budgets{"Travel": -1},
		Currency: "ZZZ",
	})

	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "expenses[1].id")
	assert.Contains(t, verr.Fields, "income[0].type")
	assert.Contains(t, verr.Fields, "budgets")
	assert.Contains(t, verr.Fields, "selectedCurrency")
	assert.Empty(t, b.Query(core.Expense))
	assert.Equal(t, writes, store.writes())
}
