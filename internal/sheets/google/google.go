package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"smartbudget/internal/core"
	"smartbudget/internal/log"
	ports "smartbudget/internal/sheets"
)

const (
	defaultSheetName = "Transactions"
	defaultCacheTTL  = 5 * time.Minute
	lastColumn       = "H"
)

// Ensure interface conformance
var _ ports.TransactionMirror = (*Client)(nil)

// Config selects the target sheet and the service account credentials.
// CredentialsJSON wins over CredentialsFile.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// Client mirrors transactions into one sheet, one row per id. The id to
// row index is cached and refreshed after cacheValidDuration.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger

	mu                 sync.Mutex
	rowsByID           map[string]int
	cachedRowCount     int
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	credentials, err := readCredentials(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(ctx, cfg.SpreadsheetID, cfg.SheetName, logger,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

// NewWithOptions creates a client with explicit API options, e.g. a custom
// endpoint and HTTP client.
func NewWithOptions(ctx context.Context, spreadsheetID, sheetName string, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = defaultSheetName
	}
	if logger == nil {
		logger = log.Default(log.ComponentSheets)
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		sheetName:          sheetName,
		logger:             logger.WithComponent(log.ComponentSheets),
		cacheValidDuration: defaultCacheTTL,
	}, nil
}

func readCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

func (c *Client) rowRange(row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", c.sheetName, row, lastColumn, row)
}

// Upsert implements ports.TransactionMirror.
func (c *Client) Upsert(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refreshIndexLocked(ctx); err != nil {
		return "", err
	}

	row, ok := c.rowsByID[t.ID]
	if !ok {
		row = c.cachedRowCount + 1
		if row < 2 {
			if err := c.writeHeaderLocked(ctx); err != nil {
				return "", err
			}
			row = 2
		}
	}

	rng := c.rowRange(row)
	vr := &gsheet.ValueRange{Values: [][]any{ports.Row(t)}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		c.invalidateLocked()
		return "", fmt.Errorf("failed to update %s: %w", rng, err)
	}

	c.rowsByID[t.ID] = row
	if row > c.cachedRowCount {
		c.cachedRowCount = row
	}
	return rng, nil
}

// Delete implements ports.TransactionMirror. The row is cleared rather
// than removed so the row numbers of other ids stay valid.
func (c *Client) Delete(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refreshIndexLocked(ctx); err != nil {
		return err
	}
	row, ok := c.rowsByID[id]
	if !ok {
		return nil
	}

	rng := c.rowRange(row)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		c.invalidateLocked()
		return fmt.Errorf("failed to clear %s: %w", rng, err)
	}
	delete(c.rowsByID, id)
	return nil
}

// Replace implements ports.TransactionMirror.
func (c *Client) Replace(ctx context.Context, txs []core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	values := make([][]any, 0, len(txs)+1)
	values = append(values, headerRow())
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("row %s: %w", t.ID, err)
		}
		values = append(values, ports.Row(t))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()

	all := fmt.Sprintf("%s!A:%s", c.sheetName, lastColumn)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, all, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", all, err)
	}
	rng := fmt.Sprintf("%s!A1:%s%d", c.sheetName, lastColumn, len(values))
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", rng, err)
	}

	c.logger.InfoContext(ctx, "Sheet rewritten", "rows", len(txs), "sheet", c.sheetName)
	return nil
}

func (c *Client) writeHeaderLocked(ctx context.Context) error {
	rng := c.rowRange(1)
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{headerRow()}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	c.cachedRowCount = 1
	return nil
}

// refreshIndexLocked reloads the id column when the cache has expired.
func (c *Client) refreshIndexLocked(ctx context.Context) error {
	if c.rowsByID != nil && time.Now().Before(c.cacheExpiresAt) {
		return nil
	}
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}
	c.rowsByID, c.cachedRowCount = indexRows(resp.Values)
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	return nil
}

func (c *Client) invalidateLocked() {
	c.rowsByID = nil
	c.cachedRowCount = 0
	c.cacheExpiresAt = time.Time{}
}

// indexRows maps ids found in the first column to 1-based row numbers,
// skipping the header. The row count includes trailing cleared rows the
// API still reports.
func indexRows(values [][]any) (map[string]int, int) {
	rows := make(map[string]int, len(values))
	for i, row := range values {
		if i == 0 || len(row) == 0 {
			continue
		}
		id := strings.TrimSpace(fmt.Sprint(row[0]))
		if id == "" {
			continue
		}
		if _, dup := rows[id]; !dup {
			rows[id] = i + 1
		}
	}
	return rows, len(values)
}

func headerRow() []any {
	out := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		out[i] = h
	}
	return out
}
