package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	goption "google.golang.org/api/option"

	"smartbudget/internal/core"
	"smartbudget/internal/log"
)

// fakeSheet serves the subset of the Sheets values API the client uses.
type fakeSheet struct {
	mu    sync.Mutex
	rows  map[int][]any
	calls []string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const prefix = "/v4/spreadsheets/sheet-id/values/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	rng := strings.TrimPrefix(r.URL.Path, prefix)
	isClear := strings.HasSuffix(rng, ":clear")
	rng = strings.TrimSuffix(rng, ":clear")
	f.calls = append(f.calls, r.Method+" "+rng)

	from, to := parseRows(rng)
	switch {
	case r.Method == http.MethodGet:
		last := 0
		for n := range f.rows {
			if n > last {
				last = n
			}
		}
		values := make([][]any, last)
		for n := 1; n <= last; n++ {
			values[n-1] = []any{}
			if row := f.rows[n]; len(row) > 0 {
				values[n-1] = []any{row[0]}
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": values})
	case r.Method == http.MethodPut:
		var body struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for i, row := range body.Values {
			f.rows[from+i] = row
		}
		w.Write([]byte(`{}`))
	case r.Method == http.MethodPost && isClear:
		for n := range f.rows {
			if n >= from && (to == 0 || n <= to) {
				delete(f.rows, n)
			}
		}
		w.Write([]byte(`{}`))
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

// parseRows extracts the row bounds of "Sheet!A2:H5"; open bounds are 1 and 0.
func parseRows(rng string) (int, int) {
	_, cells, _ := strings.Cut(rng, "!")
	left, right, _ := strings.Cut(cells, ":")
	num := func(s string) int {
		n, _ := strconv.Atoi(strings.TrimLeft(s, "ABCDEFGH"))
		return n
	}
	from := num(left)
	if from == 0 {
		from = 1
	}
	return from, num(right)
}

func (f *fakeSheet) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for n := 2; n <= 100; n++ {
		if row := f.rows[n]; len(row) > 0 {
			out = append(out, row[0].(string))
		}
	}
	return out
}

func newTestClient(t *testing.T) (*Client, *fakeSheet) {
	t.Helper()
	fake := &fakeSheet{rows: map[int][]any{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewWithOptions(context.Background(), "sheet-id", "", log.Discard(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewWithOptions() error = %v", err)
	}
	return c, fake
}

func tx(id string, amount float64) core.Transaction {
	return core.Transaction{
		ID: id, Kind: core.Income, Title: "row " + id, Amount: amount,
		Category: core.Salary, Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewWithOptions_MissingSpreadsheetID(t *testing.T) {
	_, err := NewWithOptions(context.Background(), " ", "", log.Discard())
	if err == nil || err.Error() != "missing spreadsheet id" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "x"}, log.Discard())
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = New(context.Background(), Config{SpreadsheetID: "x", CredentialsFile: t.TempDir() + "/none.json"}, log.Discard())
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_UpsertWritesHeaderAndRows(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)

	ref, err := c.Upsert(ctx, tx("a", 10))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if ref != "Transactions!A2:H2" {
		t.Errorf("ref = %q", ref)
	}
	if got := fake.rows[1][0]; got != "ID" {
		t.Errorf("header cell = %v, want ID", got)
	}

	if ref, _ = c.Upsert(ctx, tx("b", 20)); ref != "Transactions!A3:H3" {
		t.Errorf("second ref = %q", ref)
	}
	if ref, _ = c.Upsert(ctx, tx("a", 15)); ref != "Transactions!A2:H2" {
		t.Errorf("update ref = %q", ref)
	}
	if got := fake.rows[2][5]; got != "15.00" {
		t.Errorf("updated amount = %v", got)
	}
	if ids := fake.ids(); len(ids) != 2 {
		t.Errorf("ids = %v", ids)
	}
}

func TestClient_UpsertFindsExistingRowsAfterCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)
	fake.rows[1] = headerRow()
	fake.rows[2] = []any{"x"}
	fake.rows[3] = []any{"y"}

	ref, err := c.Upsert(ctx, tx("y", 1))
	if err != nil {
		t.Fatal(err)
	}
	if ref != "Transactions!A3:H3" {
		t.Errorf("ref = %q, want existing row 3", ref)
	}

	c.mu.Lock()
	c.cacheExpiresAt = time.Now().Add(-time.Second)
	c.mu.Unlock()
	fake.rows[4] = []any{"z"}

	if ref, _ = c.Upsert(ctx, tx("z", 1)); ref != "Transactions!A4:H4" {
		t.Errorf("ref after refresh = %q", ref)
	}
}

func TestClient_Delete(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)
	for _, id := range []string{"a", "b", "c"} {
		if _, err := c.Upsert(ctx, tx(id, 1)); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := c.Delete(ctx, "unknown"); err != nil {
		t.Fatalf("Delete(unknown) error = %v", err)
	}

	ids := fake.ids()
	if strings.Join(ids, ",") != "a,c" {
		t.Errorf("ids = %v", ids)
	}
	if ref, _ := c.Upsert(ctx, tx("c", 9)); ref != "Transactions!A4:H4" {
		t.Errorf("c must keep its row, got %q", ref)
	}
}

func TestClient_Replace(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)
	if _, err := c.Upsert(ctx, tx("old", 1)); err != nil {
		t.Fatal(err)
	}

	if err := c.Replace(ctx, []core.Transaction{tx("n1", 1), tx("n2", 2)}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if ids := fake.ids(); strings.Join(ids, ",") != "n1,n2" {
		t.Errorf("ids = %v", ids)
	}

	if err := c.Replace(ctx, []core.Transaction{{ID: "bad"}}); err == nil {
		t.Error("expected validation error")
	}
	if ids := fake.ids(); len(ids) != 2 {
		t.Errorf("failed replace changed the sheet: %v", ids)
	}
}

func TestClient_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if _, err := c.Upsert(context.Background(), tx("a", 1)); err == nil {
		t.Fatal("expected error without service")
	}
	if _, err := c.Upsert(context.Background(), core.Transaction{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestIndexRows(t *testing.T) {
	rows, count := indexRows([][]any{{"ID"}, {"a"}, {}, {" b "}, {"a"}})
	if count != 5 {
		t.Errorf("count = %d", count)
	}
	if rows["a"] != 2 || rows["b"] != 4 || len(rows) != 2 {
		t.Errorf("rows = %v", rows)
	}
}
