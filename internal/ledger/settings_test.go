package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbudget/internal/core"
	"smartbudget/internal/kv"
)

func TestCompanies(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	b := newBook(t, store)

	require.NoError(t, b.AddCompany(ctx, "Acme"))
	assert.ErrorIs(t, b.AddCompany(ctx, "Acme"), ErrConflict)
	assert.ErrorIs(t, b.AddCompany(ctx, "  "), core.ErrValidation)

	require.NoError(t, b.SwitchCompany(ctx, "Acme"))
	assert.ErrorIs(t, b.SwitchCompany(ctx, "Nope"), ErrNotFound)

	require.NoError(t, b.RenameCompany(ctx, "Acme", "Acme Inc"))
	assert.Equal(t, "Acme Inc", b.Settings().CurrentCompany, "renaming the current company follows it")
	assert.ErrorIs(t, b.RenameCompany(ctx, "Acme Inc", "SmartBudget Ltd"), ErrConflict)
	assert.ErrorIs(t, b.RenameCompany(ctx, PersonalCompany, "Me"), ErrConflict)

	assert.ErrorIs(t, b.RemoveCompany(ctx, PersonalCompany), ErrConflict)
	require.NoError(t, b.RemoveCompany(ctx, "Acme Inc"))
	assert.Equal(t, PersonalCompany, b.Settings().CurrentCompany)
	require.NoError(t, b.RemoveCompany(ctx, "SmartBudget Ltd"))
	assert.Equal(t, []string{PersonalCompany}, b.Settings().Companies)
	assert.ErrorIs(t, b.RemoveCompany(ctx, PersonalCompany), ErrConflict, "the last company stays")

	reopened := newBook(t, store)
	assert.Equal(t, b.Settings(), reopened.Settings())
}

func TestProfileAndNotifications(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	b := newBook(t, store)

	_, err := b.UpdateProfile(ctx, UserProfile{Name: "", Email: "nope"})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")

	avatar := "https://example.com/a.png"
	p, err := b.UpdateProfile(ctx, UserProfile{Name: " Ada ", Email: "ada@example.com", Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)

	n := NotificationSettings{WeeklyReports: true}
	require.NoError(t, b.UpdateNotifications(ctx, n))

	reopened := newBook(t, store)
	assert.Equal(t, "Ada", reopened.Settings().Profile.Name)
	assert.Equal(t, avatar, *reopened.Settings().Profile.Avatar)
	assert.Equal(t, n, reopened.Settings().Notifications)
}

func TestSetCurrency(t *testing.T) {
	ctx := context.Background()
	b := newBook(t, kv.NewMemory())

	require.NoError(t, b.SetCurrency(ctx, "gbp"))
	assert.Equal(t, "GBP", b.Settings().Currency)
	assert.ErrorIs(t, b.SetCurrency(ctx, "ABC"), core.ErrValidation)
	assert.Equal(t, "GBP", b.Settings().Currency)
}

func TestHydrationRepairsSettings(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, KeyCompanies, []byte(`["Acme","Acme",""]`)))
	require.NoError(t, store.Set(ctx, KeyCurrentCompany, []byte(`"Gone"`)))
	require.NoError(t, store.Set(ctx, KeySelectedCurrency, []byte(`"XXX"`)))
	require.NoError(t, store.Set(ctx, KeyNotificationSettings, []byte(`{"weeklyReports":true}`)))

	s := newBook(t, store).Settings()

	assert.Equal(t, []string{PersonalCompany, "Acme"}, s.Companies)
	assert.Equal(t, PersonalCompany, s.CurrentCompany)
	assert.Equal(t, "USD", s.Currency)
	assert.Equal(t, NotificationSettings{BudgetAlerts: true, TransactionNotifications: true, WeeklyReports: true, MonthlyReports: true}, s.Notifications)
}
