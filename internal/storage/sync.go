package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Sheet sync states.
const (
	SyncStatusSynced  = "synced"
	SyncStatusDeleted = "deleted"
	SyncStatusError   = "error"
)

// SyncRecord is the last known mirror state of one transaction.
type SyncRecord struct {
	TransactionID string
	Kind          string
	Status        string
	Attempts      int
	LastError     string
	UpdatedAt     time.Time
}

// MarkSynced records a successful append or update of the sheet row.
func (s *SQLiteStore) MarkSynced(ctx context.Context, id, kind string) error {
	return s.upsertSync(ctx, id, kind, SyncStatusSynced, "")
}

// MarkDeleted records the removal of the sheet row.
func (s *SQLiteStore) MarkDeleted(ctx context.Context, id, kind string) error {
	return s.upsertSync(ctx, id, kind, SyncStatusDeleted, "")
}

// MarkSyncError records a failed attempt and bumps the attempt counter.
func (s *SQLiteStore) MarkSyncError(ctx context.Context, id, kind string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.upsertSync(ctx, id, kind, SyncStatusError, msg)
}

func (s *SQLiteStore) upsertSync(ctx context.Context, id, kind, status, lastErr string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sheet_sync (transaction_id, kind, status, attempts, last_error, updated_at)
		VALUES (?, ?, ?, 1, NULLIF(?, ''), ?)
		ON CONFLICT(transaction_id, kind) DO UPDATE SET
			status = excluded.status,
			attempts = sheet_sync.attempts + 1,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at`,
		id, kind, status, lastErr, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record sync %s/%s: %w", kind, id, err)
	}
	return nil
}

// SyncState returns the record for a transaction, ok=false when unknown.
func (s *SQLiteStore) SyncState(ctx context.Context, id, kind string) (SyncRecord, bool, error) {
	var (
		rec       SyncRecord
		lastErr   sql.NullString
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT transaction_id, kind, status, attempts, last_error, updated_at
		FROM sheet_sync WHERE transaction_id = ? AND kind = ?`, id, kind).
		Scan(&rec.TransactionID, &rec.Kind, &rec.Status, &rec.Attempts, &lastErr, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SyncRecord{}, false, nil
	}
	if err != nil {
		return SyncRecord{}, false, fmt.Errorf("get sync state: %w", err)
	}
	rec.LastError = lastErr.String
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return rec, true, nil
}

// CountByStatus returns how many transactions are in each sync state.
func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM sheet_sync GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count sync states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan sync state: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}
