package ledger

import (
	"context"
	"fmt"
	"strings"

	"smartbudget/internal/core"
)

// State is a full or partial copy of the persisted collections. Nil fields
// are absent and left untouched by Restore; empty non-nil collections
// replace the current ones.
type State struct {
	Expenses       []core.Transaction
	Income         []core.Transaction
	Budgets        core.Budgets
	Goals          []core.SavingsGoal
	Profile        *UserProfile
	Notifications  *NotificationSettings
	Companies      []string
	CurrentCompany string
	Currency       string
}

// State returns a complete copy of the book.
func (b *Book) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.settings.clone()
	return State{
		Expenses:       cloneTransactions(b.expenses),
		Income:         cloneTransactions(b.income),
		Budgets:        b.budgets.Clone(),
		Goals:          append([]core.SavingsGoal{}, b.goals...),
		Profile:        &s.Profile,
		Notifications:  &s.Notifications,
		Companies:      s.Companies,
		CurrentCompany: s.CurrentCompany,
		Currency:       s.Currency,
	}
}

// validateState checks every present collection without touching the book.
func (b *Book) validateState(st State) error {
	var verr core.ValidationError
	checkTxs := func(field string, kind core.Kind, txs []core.Transaction) {
		seen := make(map[string]struct{}, len(txs))
		for i, t := range txs {
			if t.Kind != "" && t.Kind != kind {
				verr.Add(fmt.Sprintf("%s[%d].type", field, i), fmt.Sprintf("expected %s, got %s", kind, t.Kind))
				continue
			}
			t.Kind = kind
			if err := t.Validate(); err != nil {
				verr.Add(fmt.Sprintf("%s[%d]", field, i), err.Error())
				continue
			}
			if _, dup := seen[t.ID]; dup {
				verr.Add(fmt.Sprintf("%s[%d].id", field, i), "duplicate id "+t.ID)
			}
			seen[t.ID] = struct{}{}
		}
	}
	checkTxs(KeyExpenses, core.Expense, st.Expenses)
	checkTxs(KeyIncome, core.Income, st.Income)
	if err := validateBudgets(st.Budgets, core.ValidateAmount); err != nil {
		verr.Add(KeyBudgets, err.Error())
	}
	for i, g := range st.Goals {
		if strings.TrimSpace(g.ID) == "" {
			verr.Add(fmt.Sprintf("%s[%d].id", KeySavingsGoals, i), "id is required")
		}
		if err := g.Validate(); err != nil {
			verr.Add(fmt.Sprintf("%s[%d]", KeySavingsGoals, i), err.Error())
		}
	}
	if st.Profile != nil {
		if err := validateProfile(*st.Profile); err != nil {
			verr.Add(KeyUserProfile, err.Error())
		}
	}
	for i, c := range st.Companies {
		if strings.TrimSpace(c) == "" {
			verr.Add(fmt.Sprintf("%s[%d]", KeyCompanies, i), "company name is required")
		}
	}
	if st.Currency != "" && !b.rates.Has(st.Currency) {
		verr.Add(KeySelectedCurrency, "unknown currency "+st.Currency)
	}
	return verr.Err()
}

// Restore validates the whole state first and then replaces every present
// collection, writing each through. Nothing is applied when validation
// fails.
func (b *Book) Restore(ctx context.Context, st State) error {
	if err := b.validateState(st); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.unlock(ctx)

	type write struct {
		key   string
		value any
	}
	var writes []write
	stamp := func(kind core.Kind, txs []core.Transaction) []core.Transaction {
		out := cloneTransactions(txs)
		for i := range out {
			out[i].Kind = kind
			if out[i].Date.IsZero() {
				out[i].Date = b.now()
			}
		}
		return out
	}
	if st.Expenses != nil {
		b.expenses = stamp(core.Expense, st.Expenses)
		writes = append(writes, write{KeyExpenses, b.expenses})
	}
	if st.Income != nil {
		b.income = stamp(core.Income, st.Income)
		writes = append(writes, write{KeyIncome, b.income})
	}
	if st.Budgets != nil {
		b.budgets = st.Budgets.Clone()
		writes = append(writes, write{KeyBudgets, b.budgets})
	}
	if st.Goals != nil {
		b.goals = append([]core.SavingsGoal{}, st.Goals...)
		writes = append(writes, write{KeySavingsGoals, b.goals})
	}
	settings := b.settings
	if st.Profile != nil {
		settings.Profile = *st.Profile
	}
	if st.Notifications != nil {
		settings.Notifications = *st.Notifications
	}
	if st.Companies != nil {
		settings.Companies = append([]string(nil), st.Companies...)
	}
	if st.CurrentCompany != "" {
		settings.CurrentCompany = st.CurrentCompany
	}
	if st.Currency != "" {
		settings.Currency = st.Currency
	}
	b.settings = settings.normalized(b.rates)
	if st.Profile != nil {
		writes = append(writes, write{KeyUserProfile, b.settings.Profile})
	}
	if st.Notifications != nil {
		writes = append(writes, write{KeyNotificationSettings, b.settings.Notifications})
	}
	if st.Companies != nil || st.CurrentCompany != "" {
		writes = append(writes,
			write{KeyCompanies, b.settings.Companies},
			write{KeyCurrentCompany, b.settings.CurrentCompany})
	}
	if st.Currency != "" {
		writes = append(writes, write{KeySelectedCurrency, b.settings.Currency})
	}

	for _, w := range writes {
		if err := b.persist(ctx, w.key, w.value); err != nil {
			return err
		}
	}
	b.queue(Event{Type: EventImported})
	return nil
}
