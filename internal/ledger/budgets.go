package ledger

import (
	"context"
	"strings"

	"smartbudget/internal/core"
)

// Budgets returns a copy of the budget map.
func (b *Book) Budgets() core.Budgets {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.budgets.Clone()
}

// SetBudget allocates amount to category. Budget keys are free-form and
// need not match a category in use.
func (b *Book) SetBudget(ctx context.Context, category string, amount float64) error {
	category = strings.TrimSpace(category)
	var verr core.ValidationError
	if category == "" {
		verr.Add("category", core.ErrEmptyCategory.Error())
	}
	if err := core.ValidateFormAmount(amount); err != nil {
		verr.Add("amount", err.Error())
	}
	if err := verr.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.unlock(ctx)
	if b.budgets == nil {
		b.budgets = core.Budgets{}
	}
	b.budgets[category] = amount
	if err := b.persist(ctx, KeyBudgets, b.budgets); err != nil {
		return err
	}
	b.queue(Event{Type: EventBudgets})
	return nil
}

// ReplaceBudgets swaps the whole map after validating every entry.
func (b *Book) ReplaceBudgets(ctx context.Context, budgets core.Budgets) error {
	if err := validateBudgets(budgets, core.ValidateFormAmount); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.unlock(ctx)
	b.budgets = budgets.Clone()
	if err := b.persist(ctx, KeyBudgets, b.budgets); err != nil {
		return err
	}
	b.queue(Event{Type: EventBudgets})
	return nil
}

// DeleteBudget removes a category's budget; absent keys are a no-op.
func (b *Book) DeleteBudget(ctx context.Context, category string) error {
	category = strings.TrimSpace(category)

	b.mu.Lock()
	defer b.unlock(ctx)
	if _, ok := b.budgets[category]; !ok {
		return nil
	}
	delete(b.budgets, category)
	if err := b.persist(ctx, KeyBudgets, b.budgets); err != nil {
		return err
	}
	b.queue(Event{Type: EventBudgets})
	return nil
}

// validateBudgets checks every entry; checkAmount is the form cap for user
// input and the stored invariant for imports.
func validateBudgets(budgets core.Budgets, checkAmount func(float64) error) error {
	var verr core.ValidationError
	for k, v := range budgets {
		if strings.TrimSpace(k) == "" {
			verr.Add("budgets", "budget category must not be empty")
		}
		if err := checkAmount(v); err != nil {
			verr.Add("budgets."+k, err.Error())
		}
	}
	return verr.Err()
}
