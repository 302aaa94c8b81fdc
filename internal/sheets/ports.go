package sheets

import (
	"context"

	"smartbudget/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionMirror keeps one row per transaction id in an external
	// sheet.
	TransactionMirror interface {
		// Upsert writes the transaction into its row, appending a new row
		// when the id is not present yet.
		Upsert(ctx context.Context, t core.Transaction) (rowRef string, err error)
		// Delete clears the row of id. Unknown ids are not an error.
		Delete(ctx context.Context, id string) error
		// Replace rewrites the whole sheet with txs.
		Replace(ctx context.Context, txs []core.Transaction) error
	}
)

// Header is the first row of a mirrored sheet.
var Header = []string{"ID", "Type", "Date", "Title", "Category", "Amount", "Description", "Tags"}
