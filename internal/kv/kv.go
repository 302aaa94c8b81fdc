// Package kv defines the key-value port the ledger persists through and
// ships the in-process implementations. A SQLite implementation lives in
// internal/storage.
package kv

import (
	"context"
	"errors"
)

// ErrInvalidKey is returned for empty or unsafe keys.
var ErrInvalidKey = errors.New("invalid key")

// Store persists opaque JSON blobs by key. Get reports absence with
// ok=false and a nil error. Remove of an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Lister is implemented by stores able to enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}
