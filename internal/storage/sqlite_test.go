package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "budget.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_KV(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, ok, err := s.Get(ctx, "budgets"); err != nil || ok {
		t.Fatalf("absent key: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "budgets", []byte(`{"Travel":100}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "budgets", []byte(`{"Travel":150}`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	v, ok, err := s.Get(ctx, "budgets")
	if err != nil || !ok || string(v) != `{"Travel":150}` {
		t.Fatalf("Get = %q %v %v", v, ok, err)
	}
	_ = s.Set(ctx, "expenses", []byte(`[]`))
	keys, err := s.Keys(ctx)
	if err != nil || len(keys) != 2 || keys[0] != "budgets" {
		t.Fatalf("Keys = %v %v", keys, err)
	}
	if err := s.Remove(ctx, "budgets"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove(ctx, "budgets"); err != nil {
		t.Fatalf("Remove absent: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "budgets"); ok {
		t.Fatalf("key still present")
	}
	if err := s.Set(ctx, "", nil); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "budget.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Set(ctx, "selectedCurrency", []byte(`"EUR"`))
	_ = s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	v, ok, _ := s2.Get(ctx, "selectedCurrency")
	if !ok || string(v) != `"EUR"` {
		t.Fatalf("value lost across reopen: %q", v)
	}
}

func TestSQLiteStore_SyncLog(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, ok, err := s.SyncState(ctx, "t1", "expense"); err != nil || ok {
		t.Fatalf("unknown record: ok=%v err=%v", ok, err)
	}
	if err := s.MarkSyncError(ctx, "t1", "expense", errors.New("quota")); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkSynced(ctx, "t1", "expense"); err != nil {
		t.Fatal(err)
	}
	rec, ok, err := s.SyncState(ctx, "t1", "expense")
	if err != nil || !ok {
		t.Fatalf("SyncState: %v %v", ok, err)
	}
	if rec.Status != SyncStatusSynced || rec.Attempts != 2 || rec.LastError != "" {
		t.Fatalf("unexpected record %+v", rec)
	}
	_ = s.MarkDeleted(ctx, "t2", "income")
	counts, err := s.CountByStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[SyncStatusSynced] != 1 || counts[SyncStatusDeleted] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
	if err := s.MarkSynced(ctx, "t3", "transfer"); err == nil {
		t.Fatalf("expected constraint violation for unknown kind")
	}
}
