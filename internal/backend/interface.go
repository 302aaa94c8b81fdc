package backend

import (
	"context"

	"smartbudget/internal/kv"
	"smartbudget/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store the ledger persists to and an optional
// cleanup function. SQLite is set only for the sqlite backend; it also
// records sheet sync state.
type BackendResult struct {
	Store   kv.Store
	SQLite  *storage.SQLiteStore
	Cleanup CleanupFunc
}

// Ping reports whether the store is reachable. Non-database stores are
// always ready.
func (r *BackendResult) Ping(ctx context.Context) error {
	if r.SQLite == nil {
		return nil
	}
	return r.SQLite.Ping(ctx)
}

// Close runs the cleanup function, if any.
func (r *BackendResult) Close() error {
	if r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}
