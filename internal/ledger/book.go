// Package ledger holds the session state of the application: the expense
// and income collections, budgets, savings goals and settings. A Book is
// built once per process from a kv.Store, hydrated at startup and written
// through to the store on every mutation.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartbudget/internal/core"
	"smartbudget/internal/finance"
	"smartbudget/internal/kv"
	"smartbudget/internal/log"
)

// Persisted keys.
const (
	KeyExpenses             = "expenses"
	KeyIncome               = "income"
	KeyBudgets              = "budgets"
	KeySavingsGoals         = "savingsGoals"
	KeyUserProfile          = "userProfile"
	KeyNotificationSettings = "notificationSettings"
	KeyCompanies            = "companies"
	KeyCurrentCompany       = "currentCompany"
	KeySelectedCurrency     = "selectedCurrency"
)

// Keys lists every key the book owns, in persistence order.
var Keys = []string{
	KeyExpenses, KeyIncome, KeyBudgets, KeySavingsGoals, KeyUserProfile,
	KeyNotificationSettings, KeyCompanies, KeyCurrentCompany, KeySelectedCurrency,
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Book is the explicit session context. All methods are safe for
// concurrent use.
type Book struct {
	mu       sync.Mutex
	store    kv.Store
	logger   *log.Logger
	notifier Notifier
	now      func() time.Time
	newID    func() string
	rates    finance.Rates
	pending  []Event

	expenses []core.Transaction
	income   []core.Transaction
	budgets  core.Budgets
	goals    []core.SavingsGoal
	settings Settings
}

// Option configures a Book.
type Option func(*Book)

// WithLogger sets the logger used for hydration warnings and mutations.
func WithLogger(l *log.Logger) Option {
	return func(b *Book) { b.logger = l.WithComponent(log.ComponentLedger) }
}

// WithNotifier publishes a change event after every persisted mutation.
func WithNotifier(n Notifier) Option {
	return func(b *Book) { b.notifier = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Book) { b.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(gen func() string) Option {
	return func(b *Book) { b.newID = gen }
}

// WithRates sets the currency table used to validate the selected currency.
func WithRates(r finance.Rates) Option {
	return func(b *Book) { b.rates = r }
}

// Open builds a Book over store and hydrates it. Absent or corrupt values
// start empty; only store I/O errors are returned.
func Open(ctx context.Context, store kv.Store, opts ...Option) (*Book, error) {
	b := &Book{
		store:    store,
		logger:   log.Default(log.ComponentLedger),
		notifier: NopNotifier{},
		now:      time.Now,
		newID:    uuid.NewString,
		rates:    finance.DefaultRates(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.Reload(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// Reload discards in-memory state and hydrates again from the store.
func (b *Book) Reload(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var (
		expenses, income []core.Transaction
		budgets          core.Budgets
		goals            []core.SavingsGoal
		settings         = DefaultSettings()
	)
	loaders := []func() error{
		func() error { return load(ctx, b, KeyExpenses, &expenses) },
		func() error { return load(ctx, b, KeyIncome, &income) },
		func() error { return load(ctx, b, KeyBudgets, &budgets) },
		func() error { return load(ctx, b, KeySavingsGoals, &goals) },
		func() error { return load(ctx, b, KeyUserProfile, &settings.Profile) },
		func() error { return load(ctx, b, KeyNotificationSettings, &settings.Notifications) },
		func() error { return load(ctx, b, KeyCompanies, &settings.Companies) },
		func() error { return load(ctx, b, KeyCurrentCompany, &settings.CurrentCompany) },
		func() error { return load(ctx, b, KeySelectedCurrency, &settings.Currency) },
	}
	for _, fn := range loaders {
		if err := fn(); err != nil {
			return err
		}
	}

	b.expenses = b.sanitize(core.Expense, expenses)
	b.income = b.sanitize(core.Income, income)
	b.budgets = sanitizeBudgets(budgets)
	b.goals = goals
	b.settings = settings.normalized(b.rates)
	return nil
}

// load decodes key on top of *dst. A decode failure leaves *dst untouched
// and is only logged.
func load[T any](ctx context.Context, b *Book, key string, dst *T) error {
	raw, ok, err := b.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	v := *dst
	if err := json.Unmarshal(raw, &v); err != nil {
		b.logger.WarnContext(ctx, "Discarding corrupt persisted value",
			log.FieldKey, key, log.FieldOperation, log.OpLoad, log.FieldError, err.Error())
		return nil
	}
	*dst = v
	return nil
}

// sanitize stamps the collection kind and drops records violating the
// stored invariants.
func (b *Book) sanitize(kind core.Kind, in []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t.Kind = kind
		if err := t.Validate(); err != nil {
			b.logger.Warn("Dropping invalid persisted transaction",
				log.FieldKind, kind.String(), log.FieldTransactionID, t.ID, log.FieldError, err.Error())
			continue
		}
		if _, dup := seen[t.ID]; dup {
			b.logger.Warn("Dropping duplicate persisted transaction",
				log.FieldKind, kind.String(), log.FieldTransactionID, t.ID)
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

func sanitizeBudgets(in core.Budgets) core.Budgets {
	out := make(core.Budgets, len(in))
	for k, v := range in {
		if k == "" || core.ValidateAmount(v) != nil {
			continue
		}
		out[k] = v
	}
	return out
}

// persist serializes value under key. Callers hold b.mu.
func (b *Book) persist(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.store.Set(ctx, key, raw); err != nil {
		b.logger.ErrorContext(ctx, "Write-through failed",
			log.FieldKey, key, log.FieldOperation, log.OpPersist, log.FieldError, err.Error())
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

func (b *Book) collection(kind core.Kind) *[]core.Transaction {
	if kind == core.Income {
		return &b.income
	}
	return &b.expenses
}

func keyFor(kind core.Kind) string {
	if kind == core.Income {
		return KeyIncome
	}
	return KeyExpenses
}

// queue records an event to publish once b.mu is released. Callers hold
// b.mu and release it with unlock.
func (b *Book) queue(e Event) {
	e.At = b.now().UTC()
	b.pending = append(b.pending, e)
}

// unlock releases b.mu and then publishes the events queued while it was
// held, so a slow notifier never blocks readers.
func (b *Book) unlock(ctx context.Context) {
	events := b.pending
	b.pending = nil
	b.mu.Unlock()
	for _, e := range events {
		b.publish(ctx, e)
	}
}

func (b *Book) publish(ctx context.Context, e Event) {
	if err := b.notifier.Publish(ctx, e); err != nil {
		b.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldEvent, string(e.Type), log.FieldTransactionID, e.ID, log.FieldError, err.Error())
	}
}

// Snapshot returns an immutable copy for the finance engine.
func (b *Book) Snapshot() finance.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return finance.Snapshot{
		Expenses: cloneTransactions(b.expenses),
		Income:   cloneTransactions(b.income),
		Budgets:  b.budgets.Clone(),
	}
}

// Rates returns the currency table the book validates against.
func (b *Book) Rates() finance.Rates {
	return b.rates
}

// Now returns the book clock's current time.
func (b *Book) Now() time.Time {
	return b.now()
}

// Reset removes every persisted key and restores defaults. Stores that
// implement kv.Lister are emptied completely.
func (b *Book) Reset(ctx context.Context) error {
	b.mu.Lock()
	defer b.unlock(ctx)

	b.expenses = nil
	b.income = nil
	b.budgets = core.Budgets{}
	b.goals = nil
	b.settings = DefaultSettings()

	keys := append([]string(nil), Keys...)
	if l, ok := b.store.(kv.Lister); ok {
		// Also clear keys this version no longer knows about.
		listed, err := l.Keys(ctx)
		if err != nil {
			return fmt.Errorf("list keys: %w", err)
		}
		for _, k := range listed {
			if !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}

	var errs []error
	for _, k := range keys {
		if err := b.store.Remove(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", k, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	b.queue(Event{Type: EventReset})
	return nil
}

func cloneTransactions(in []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(in))
	for i, t := range in {
		t.Tags = append([]string(nil), t.Tags...)
		out[i] = t
	}
	return out
}
