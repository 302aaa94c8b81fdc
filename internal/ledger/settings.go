package ledger

import (
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"smartbudget/internal/core"
	"smartbudget/internal/finance"
)

// PersonalCompany is the company every book starts with. It cannot be
// removed.
const PersonalCompany = "Personal Finance"

// UserProfile is the display identity of the local user.
type UserProfile struct {
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Avatar *string `json:"avatar"`
}

// NotificationSettings toggles which alerts the presentation layer shows.
type NotificationSettings struct {
	BudgetAlerts             bool `json:"budgetAlerts"`
	TransactionNotifications bool `json:"transactionNotifications"`
	WeeklyReports            bool `json:"weeklyReports"`
	MonthlyReports           bool `json:"monthlyReports"`
}

// Settings groups the presentation preferences stored next to the data.
type Settings struct {
	Profile        UserProfile          `json:"userProfile"`
	Notifications  NotificationSettings `json:"notificationSettings"`
	Companies      []string             `json:"companies"`
	CurrentCompany string               `json:"currentCompany"`
	Currency       string               `json:"selectedCurrency"`
}

// DefaultSettings returns the settings of a fresh book.
func DefaultSettings() Settings {
	return Settings{
		Profile: UserProfile{Name: "User", Email: "user@example.com"},
		Notifications: NotificationSettings{
			BudgetAlerts:             true,
			TransactionNotifications: true,
			WeeklyReports:            false,
			MonthlyReports:           true,
		},
		Companies:      []string{PersonalCompany, "SmartBudget Ltd"},
		CurrentCompany: PersonalCompany,
		Currency:       finance.BaseCurrency,
	}
}

// normalized repairs hydrated settings so the company and currency rules
// hold even after a hand-edited store.
func (s Settings) normalized(rates finance.Rates) Settings {
	def := DefaultSettings()
	var companies []string
	for _, c := range s.Companies {
		c = strings.TrimSpace(c)
		if c != "" && !slices.Contains(companies, c) {
			companies = append(companies, c)
		}
	}
	if !slices.Contains(companies, PersonalCompany) {
		companies = append([]string{PersonalCompany}, companies...)
	}
	s.Companies = companies
	if !slices.Contains(s.Companies, s.CurrentCompany) {
		s.CurrentCompany = PersonalCompany
	}
	s.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	if !rates.Has(s.Currency) {
		s.Currency = def.Currency
	}
	if strings.TrimSpace(s.Profile.Name) == "" {
		s.Profile.Name = def.Profile.Name
	}
	return s
}

func (s Settings) clone() Settings {
	s.Companies = append([]string(nil), s.Companies...)
	if s.Profile.Avatar != nil {
		a := *s.Profile.Avatar
		s.Profile.Avatar = &a
	}
	return s
}

// Settings returns a copy of the current settings.
func (b *Book) Settings() Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settings.clone()
}

// UpdateProfile replaces the user profile.
func (b *Book) UpdateProfile(ctx context.Context, p UserProfile) (UserProfile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	if err := validateProfile(p); err != nil {
		return UserProfile{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings.Profile = p
	return p, b.persist(ctx, KeyUserProfile, p)
}

func validateProfile(p UserProfile) error {
	var verr core.ValidationError
	if p.Name == "" {
		verr.Add("name", "name is required")
	}
	if p.Email == "" {
		verr.Add("email", "email is required")
	} else if _, err := mail.ParseAddress(p.Email); err != nil {
		verr.Add("email", "email is not a valid address")
	}
	return verr.Err()
}

// UpdateNotifications replaces the notification toggles.
func (b *Book) UpdateNotifications(ctx context.Context, n NotificationSettings) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings.Notifications = n
	return b.persist(ctx, KeyNotificationSettings, n)
}

// SetCurrency selects the display currency. Only codes of the rate table
// are accepted.
func (b *Book) SetCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !b.rates.Has(code) {
		var verr core.ValidationError
		verr.Add("currency", fmt.Sprintf("%s: %s", finance.ErrUnknownCurrency, code))
		return verr.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings.Currency = code
	return b.persist(ctx, KeySelectedCurrency, code)
}

// AddCompany registers a new company name. Duplicates are rejected with
// ErrConflict.
func (b *Book) AddCompany(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return companyNameRequired()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if slices.Contains(b.settings.Companies, name) {
		return fmt.Errorf("company %q: %w", name, ErrConflict)
	}
	b.settings.Companies = append(b.settings.Companies, name)
	return b.persist(ctx, KeyCompanies, b.settings.Companies)
}

// RemoveCompany deletes a company. The personal company and the last
// remaining company cannot be removed. Removing the current company
// switches back to the personal one.
func (b *Book) RemoveCompany(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.Index(b.settings.Companies, name)
	if i < 0 {
		return fmt.Errorf("company %q: %w", name, ErrNotFound)
	}
	if name == PersonalCompany || len(b.settings.Companies) <= 1 {
		return fmt.Errorf("company %q cannot be removed: %w", name, ErrConflict)
	}
	b.settings.Companies = slices.Delete(b.settings.Companies, i, i+1)
	if err := b.persist(ctx, KeyCompanies, b.settings.Companies); err != nil {
		return err
	}
	if b.settings.CurrentCompany == name {
		b.settings.CurrentCompany = PersonalCompany
		return b.persist(ctx, KeyCurrentCompany, b.settings.CurrentCompany)
	}
	return nil
}

// RenameCompany renames oldName, following it if it is the current one.
func (b *Book) RenameCompany(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return companyNameRequired()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.Index(b.settings.Companies, oldName)
	if i < 0 {
		return fmt.Errorf("company %q: %w", oldName, ErrNotFound)
	}
	if oldName == PersonalCompany {
		return fmt.Errorf("company %q cannot be renamed: %w", oldName, ErrConflict)
	}
	if slices.Contains(b.settings.Companies, newName) {
		return fmt.Errorf("company %q: %w", newName, ErrConflict)
	}
	b.settings.Companies[i] = newName
	if err := b.persist(ctx, KeyCompanies, b.settings.Companies); err != nil {
		return err
	}
	if b.settings.CurrentCompany == oldName {
		b.settings.CurrentCompany = newName
		return b.persist(ctx, KeyCurrentCompany, newName)
	}
	return nil
}

// SwitchCompany makes name the current company. Unknown names yield
// ErrNotFound.
func (b *Book) SwitchCompany(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !slices.Contains(b.settings.Companies, name) {
		return fmt.Errorf("company %q: %w", name, ErrNotFound)
	}
	b.settings.CurrentCompany = name
	return b.persist(ctx, KeyCurrentCompany, name)
}

func companyNameRequired() error {
	var verr core.ValidationError
	verr.Add("name", "company name is required")
	return verr.Err()
}
