package ledger

import (
	"context"
	"strings"
	"time"

	"smartbudget/internal/core"
	"smartbudget/internal/log"
)

// Draft is the form input for a new transaction. Amount is kept as text
// so the form boundary decides what is parseable.
type Draft struct {
	Title       string
	Amount      string
	Category    string
	Date        time.Time
	Description string
	Tags        []string
}

// Patch carries the fields to change on an existing transaction. Nil
// fields are left untouched; the id cannot be patched.
type Patch struct {
	Title       *string
	Amount      *string
	Category    *string
	Date        *time.Time
	Description *string
	Tags        *[]string
	Bookmarked  *bool
}

// validate checks a draft at the form boundary and returns the parsed
// amount and category.
func (d Draft) validate(kind core.Kind) (float64, core.Category, error) {
	var verr core.ValidationError
	if err := kind.Validate(); err != nil {
		verr.Add("type", err.Error())
		return 0, "", verr.Err()
	}
	if strings.TrimSpace(d.Title) == "" {
		verr.Add("title", core.ErrEmptyTitle.Error())
	}
	amount, err := core.ParseAmount(d.Amount)
	if err != nil {
		verr.Add("amount", "amount must be a number greater than 0 and at most 999,999,999")
	}
	category, err := core.ParseCategory(kind, d.Category)
	if err != nil {
		verr.Add("category", err.Error())
	}
	return amount, category, verr.Err()
}

// Add validates the draft, assigns an id and a default date, appends the
// record to the kind's collection and writes it through.
func (b *Book) Add(ctx context.Context, kind core.Kind, d Draft) (core.Transaction, error) {
	amount, category, err := d.validate(kind)
	if err != nil {
		return core.Transaction{}, err
	}

	b.mu.Lock()
	defer b.unlock(ctx)

	date := d.Date
	if date.IsZero() {
		date = b.now()
	}
	t := core.Transaction{
		ID:          b.newID(),
		Title:       strings.TrimSpace(d.Title),
		Amount:      amount,
		Category:    category,
		Date:        date,
		Description: strings.TrimSpace(d.Description),
		Tags:        core.NormalizeTags(d.Tags),
		Kind:        kind,
	}
	coll := b.collection(kind)
	*coll = append(*coll, t)

	if err := b.persist(ctx, keyFor(kind), *coll); err != nil {
		return t, err
	}
	log.NewStructuredLogger(b.logger).LogTransaction(ctx, log.OpCreate, kind.String(), t.ID, t.Amount, t.Category.String())
	b.queue(Event{Type: EventCreated, Kind: kind, ID: t.ID})
	return t, nil
}

// Update merges the patch into the record with id. ErrNotFound is returned
// when the id is absent; callers may treat it as a no-op.
func (b *Book) Update(ctx context.Context, kind core.Kind, id string, p Patch) (core.Transaction, error) {
	if err := kind.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var verr core.ValidationError
	var (
		amount   float64
		category core.Category
	)
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		verr.Add("title", core.ErrEmptyTitle.Error())
	}
	if p.Amount != nil {
		a, err := core.ParseAmount(*p.Amount)
		if err != nil {
			verr.Add("amount", "amount must be a number greater than 0 and at most 999,999,999")
		}
		amount = a
	}
	if p.Category != nil {
		c, err := core.ParseCategory(kind, *p.Category)
		if err != nil {
			verr.Add("category", err.Error())
		}
		category = c
	}
	if p.Date != nil && p.Date.IsZero() {
		verr.Add("date", "date must not be empty")
	}
	if err := verr.Err(); err != nil {
		return core.Transaction{}, err
	}

	b.mu.Lock()
	defer b.unlock(ctx)

	coll := b.collection(kind)
	i := indexOf(*coll, id)
	if i < 0 {
		return core.Transaction{}, ErrNotFound
	}
	t := (*coll)[i]
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Amount != nil {
		t.Amount = amount
	}
	if p.Category != nil {
		t.Category = category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Tags != nil {
		t.Tags = core.NormalizeTags(*p.Tags)
	}
	if p.Bookmarked != nil {
		t.Bookmarked = *p.Bookmarked
	}
	(*coll)[i] = t

	if err := b.persist(ctx, keyFor(kind), *coll); err != nil {
		return t, err
	}
	log.NewStructuredLogger(b.logger).LogTransaction(ctx, log.OpUpdate, kind.String(), t.ID, t.Amount, t.Category.String())
	b.queue(Event{Type: EventUpdated, Kind: kind, ID: t.ID})
	return t, nil
}

// Delete removes the record with id. Deleting an absent id is a no-op and
// does not write.
func (b *Book) Delete(ctx context.Context, kind core.Kind, id string) error {
	if err := kind.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.unlock(ctx)

	coll := b.collection(kind)
	i := indexOf(*coll, id)
	if i < 0 {
		return nil
	}
	*coll = append((*coll)[:i:i], (*coll)[i+1:]...)

	if err := b.persist(ctx, keyFor(kind), *coll); err != nil {
		return err
	}
	b.queue(Event{Type: EventDeleted, Kind: kind, ID: id})
	return nil
}

// Query returns a copy of the kind's collection in insertion order.
func (b *Book) Query(kind core.Kind) []core.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneTransactions(*b.collection(kind))
}

// Get returns one transaction by id.
func (b *Book) Get(kind core.Kind, id string) (core.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	coll := *b.collection(kind)
	i := indexOf(coll, id)
	if i < 0 {
		return core.Transaction{}, ErrNotFound
	}
	return cloneTransactions(coll[i : i+1])[0], nil
}

// ToggleBookmark flips the bookmark flag of the transaction with id,
// searching expenses first and then income.
func (b *Book) ToggleBookmark(ctx context.Context, id string) (core.Transaction, error) {
	b.mu.Lock()
	defer b.unlock(ctx)

	for _, kind := range []core.Kind{core.Expense, core.Income} {
		coll := b.collection(kind)
		i := indexOf(*coll, id)
		if i < 0 {
			continue
		}
		(*coll)[i].Bookmarked = !(*coll)[i].Bookmarked
		t := (*coll)[i]
		if err := b.persist(ctx, keyFor(kind), *coll); err != nil {
			return t, err
		}
		b.queue(Event{Type: EventUpdated, Kind: kind, ID: id})
		return t, nil
	}
	return core.Transaction{}, ErrNotFound
}

func indexOf(txs []core.Transaction, id string) int {
	for i, t := range txs {
		if t.ID == id {
			return i
		}
	}
	return -1
}
