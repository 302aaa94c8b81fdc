package memory

import (
	"context"
	"testing"
	"time"

	"smartbudget/internal/core"
)

func tx(id string, amount float64) core.Transaction {
	return core.Transaction{
		ID: id, Kind: core.Expense, Title: "t " + id, Amount: amount,
		Category: core.Shopping, Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestStoreUpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	ref, err := s.Upsert(ctx, tx("a", 1))
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected upsert: ref=%q err=%v", ref, err)
	}
	if ref, _ = s.Upsert(ctx, tx("b", 2)); ref != "mem:3" {
		t.Fatalf("second row ref = %q", ref)
	}
	if ref, _ = s.Upsert(ctx, tx("a", 5)); ref != "mem:2" {
		t.Fatalf("update should keep the row, got %q", ref)
	}

	rows := s.Rows()
	if len(rows) != 2 || rows[0][5] != "5.00" {
		t.Fatalf("rows = %v", rows)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting an unknown id should be a no-op: %v", err)
	}
	rows = s.Rows()
	if len(rows) != 1 || rows[0][0] != "b" {
		t.Fatalf("rows after delete = %v", rows)
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	s := New()
	if _, err := s.Upsert(context.Background(), core.Transaction{ID: "x"}); err == nil {
		t.Fatal("expected validation error")
	}
	if err := s.Replace(context.Background(), []core.Transaction{tx("ok", 1), {ID: "bad"}}); err == nil {
		t.Fatal("expected validation error on replace")
	}
	if len(s.Rows()) != 0 {
		t.Fatal("failed replace must not change rows")
	}
}

func TestStoreReplace(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.Upsert(ctx, tx("old", 1))

	if err := s.Replace(ctx, []core.Transaction{tx("n1", 1), tx("n2", 2)}); err != nil {
		t.Fatal(err)
	}
	rows := s.Rows()
	if len(rows) != 2 || rows[0][0] != "n1" || rows[1][0] != "n2" {
		t.Fatalf("rows = %v", rows)
	}
}
