// Package transfer serializes the ledger into a portable JSON document and
// applies such documents back. Imports are all-or-nothing: every
// collection is validated before the ledger is touched, and ids are
// preserved.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"smartbudget/internal/core"
	"smartbudget/internal/ledger"
)

// FullVersion is stamped on full exports.
const FullVersion = "2.0"

// Type selects which collections a document carries.
type Type string

const (
	Full     Type = "full"
	Expenses Type = "expenses"
	Income   Type = "income"
	Settings Type = "settings"
)

var (
	ErrInvalidFormat = errors.New("invalid import format")
	ErrUnknownType   = errors.New("unknown export type")
)

// ParseType maps user input to a Type. Empty input means Full.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return Full, nil
	case Full, Expenses, Income, Settings:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// Document is the exported layout. Collections absent from the JSON stay
// nil after decoding and are left untouched by Import.
type Document struct {
	ExportType           Type                         `json:"exportType"`
	ExportedAt           time.Time                    `json:"exportedAt"`
	User                 string                       `json:"user,omitempty"`
	Version              string                       `json:"version,omitempty"`
	Expenses             *[]core.Transaction          `json:"expenses,omitempty"`
	Income               *[]core.Transaction          `json:"income,omitempty"`
	Budgets              *core.Budgets                `json:"budgets,omitempty"`
	SavingsGoals         *[]core.SavingsGoal          `json:"savingsGoals,omitempty"`
	UserProfile          *ledger.UserProfile          `json:"userProfile,omitempty"`
	NotificationSettings *ledger.NotificationSettings `json:"notificationSettings,omitempty"`
	Companies            *[]string                    `json:"companies,omitempty"`
	SelectedCurrency     string                       `json:"selectedCurrency,omitempty"`
}

// Build assembles the document of the given type from the book.
func Build(b *ledger.Book, t Type) (Document, error) {
	if _, err := ParseType(string(t)); err != nil {
		return Document{}, err
	}
	if t == "" {
		t = Full
	}
	st := b.State()
	doc := Document{
		ExportType: t,
		ExportedAt: b.Now().UTC(),
		User:       st.Profile.Email,
	}
	expenses := nonNil(st.Expenses)
	income := nonNil(st.Income)
	goals := st.Goals
	if goals == nil {
		goals = []core.SavingsGoal{}
	}
	companies := st.Companies
	if companies == nil {
		companies = []string{}
	}

	switch t {
	case Expenses:
		doc.Expenses = &expenses
	case Income:
		doc.Income = &income
	case Settings:
		doc.UserProfile = st.Profile
		doc.NotificationSettings = st.Notifications
		doc.Companies = &companies
		doc.Budgets = &st.Budgets
		doc.SavingsGoals = &goals
		doc.SelectedCurrency = st.Currency
	case Full:
		doc.Version = FullVersion
		doc.Expenses = &expenses
		doc.Income = &income
		doc.Budgets = &st.Budgets
		doc.UserProfile = st.Profile
		doc.NotificationSettings = st.Notifications
		doc.Companies = &companies
		doc.SavingsGoals = &goals
		doc.SelectedCurrency = st.Currency
	}
	return doc, nil
}

// Export writes the indented document of the given type to w.
func Export(w io.Writer, b *ledger.Book, t Type) error {
	doc, err := Build(b, t)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// Decode parses a document and checks its metadata. Documents without
// exportType are rejected with ErrInvalidFormat.
func Decode(r io.Reader) (Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read import: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Document{}, fmt.Errorf("%w: empty document", ErrInvalidFormat)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if doc.ExportType == "" {
		return Document{}, fmt.Errorf("%w: missing exportType", ErrInvalidFormat)
	}
	return doc, nil
}

// State converts the present collections of the document into a ledger
// state.
func (d Document) State() ledger.State {
	var st ledger.State
	if d.Expenses != nil {
		st.Expenses = nonNil(*d.Expenses)
	}
	if d.Income != nil {
		st.Income = nonNil(*d.Income)
	}
	if d.Budgets != nil {
		st.Budgets = d.Budgets.Clone()
	}
	if d.SavingsGoals != nil {
		st.Goals = append([]core.SavingsGoal{}, *d.SavingsGoals...)
	}
	st.Profile = d.UserProfile
	st.Notifications = d.NotificationSettings
	if d.Companies != nil {
		st.Companies = append([]string{}, *d.Companies...)
	}
	st.Currency = strings.ToUpper(strings.TrimSpace(d.SelectedCurrency))
	return st
}

// Import decodes r and applies it to the book. Nothing changes when the
// document is malformed or any record fails validation.
func Import(ctx context.Context, r io.Reader, b *ledger.Book) (Document, error) {
	doc, err := Decode(r)
	if err != nil {
		return Document{}, err
	}
	if err := b.Restore(ctx, doc.State()); err != nil {
		return doc, fmt.Errorf("import %s: %w", doc.ExportType, err)
	}
	return doc, nil
}

func nonNil(txs []core.Transaction) []core.Transaction {
	if txs == nil {
		return []core.Transaction{}
	}
	return txs
}
