package ledger

import (
	"context"
	"strings"

	"smartbudget/internal/core"
)

// GoalDraft is the input for a new savings goal.
type GoalDraft struct {
	Name         string
	TargetAmount float64
	Description  string
}

// GoalPatch changes an existing goal; nil fields are left untouched.
type GoalPatch struct {
	Name          *string
	TargetAmount  *float64
	CurrentAmount *float64
	Description   *string
}

// Goals returns a copy of the savings goals in creation order.
func (b *Book) Goals() []core.SavingsGoal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]core.SavingsGoal(nil), b.goals...)
}

// AddGoal creates a goal with nothing saved yet.
func (b *Book) AddGoal(ctx context.Context, d GoalDraft) (core.SavingsGoal, error) {
	if err := core.ValidateFormAmount(d.TargetAmount); err != nil {
		var verr core.ValidationError
		verr.Add("targetAmount", err.Error())
		return core.SavingsGoal{}, verr.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	g := core.SavingsGoal{
		ID:           b.newID(),
		Name:         strings.TrimSpace(d.Name),
		TargetAmount: d.TargetAmount,
		Description:  strings.TrimSpace(d.Description),
		CreatedAt:    b.now().UTC(),
	}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	b.goals = append(b.goals, g)
	if err := b.persist(ctx, KeySavingsGoals, b.goals); err != nil {
		return g, err
	}
	return g, nil
}

// UpdateGoal merges the patch into the goal with id.
func (b *Book) UpdateGoal(ctx context.Context, id string, p GoalPatch) (core.SavingsGoal, error) {
	var verr core.ValidationError
	if p.TargetAmount != nil && core.ValidateFormAmount(*p.TargetAmount) != nil {
		verr.Add("targetAmount", core.ErrInvalidAmount.Error())
	}
	if p.CurrentAmount != nil && core.ValidateFormAmount(*p.CurrentAmount) != nil {
		verr.Add("currentAmount", core.ErrInvalidAmount.Error())
	}
	if err := verr.Err(); err != nil {
		return core.SavingsGoal{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := goalIndex(b.goals, id)
	if i < 0 {
		return core.SavingsGoal{}, ErrNotFound
	}
	g := b.goals[i]
	if p.Name != nil {
		g.Name = strings.TrimSpace(*p.Name)
	}
	if p.TargetAmount != nil {
		g.TargetAmount = *p.TargetAmount
	}
	if p.CurrentAmount != nil {
		g.CurrentAmount = *p.CurrentAmount
	}
	if p.Description != nil {
		g.Description = strings.TrimSpace(*p.Description)
	}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	b.goals[i] = g
	if err := b.persist(ctx, KeySavingsGoals, b.goals); err != nil {
		return g, err
	}
	return g, nil
}

// Contribute adds amount to the goal's saved total.
func (b *Book) Contribute(ctx context.Context, id string, amount float64) (core.SavingsGoal, error) {
	if err := core.ValidatePositiveAmount(amount); err != nil {
		var verr core.ValidationError
		verr.Add("amount", err.Error())
		return core.SavingsGoal{}, verr.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := goalIndex(b.goals, id)
	if i < 0 {
		return core.SavingsGoal{}, ErrNotFound
	}
	g := b.goals[i]
	g.CurrentAmount += amount
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	b.goals[i] = g
	if err := b.persist(ctx, KeySavingsGoals, b.goals); err != nil {
		return g, err
	}
	return g, nil
}

// DeleteGoal removes the goal with id; absent ids are a no-op.
func (b *Book) DeleteGoal(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := goalIndex(b.goals, id)
	if i < 0 {
		return nil
	}
	b.goals = append(b.goals[:i:i], b.goals[i+1:]...)
	return b.persist(ctx, KeySavingsGoals, b.goals)
}

func goalIndex(goals []core.SavingsGoal, id string) int {
	for i, g := range goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}
