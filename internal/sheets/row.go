package sheets

import (
	"strings"

	"github.com/shopspring/decimal"

	"smartbudget/internal/core"
)

// Row renders a transaction in Header order. Amounts are fixed to two
// decimals and empty categories use the aggregation fallback.
func Row(t core.Transaction) []any {
	return []any{
		t.ID,
		t.Kind.String(),
		t.Date.UTC().Format("2006-01-02"),
		t.Title,
		t.Category.OrFallback().String(),
		decimal.NewFromFloat(t.Amount).StringFixed(2),
		t.Description,
		strings.Join(t.Tags, ", "),
	}
}
