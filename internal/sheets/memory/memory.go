package memory

import (
	"context"
	"fmt"
	"sync"

	"smartbudget/internal/core"
	ports "smartbudget/internal/sheets"
)

var _ ports.TransactionMirror = (*Store)(nil)

// Store is an in-process mirror used when no spreadsheet is configured
// and in tests. Row numbers start at 2 like a sheet with a header.
type Store struct {
	mu    sync.Mutex
	order []string
	rows  map[string][]any
}

func New() *Store {
	return &Store{rows: map[string][]any{}}
}

// Upsert stores the rendered row and returns a synthetic row reference.
func (s *Store) Upsert(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[t.ID]; !ok {
		s.order = append(s.order, t.ID)
	}
	s.rows[t.ID] = ports.Row(t)
	return fmt.Sprintf("mem:%d", s.indexLocked(t.ID)+2), nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return nil
	}
	delete(s.rows, id)
	i := s.indexLocked(id)
	s.order = append(s.order[:i], s.order[i+1:]...)
	return nil
}

func (s *Store) Replace(_ context.Context, txs []core.Transaction) error {
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("row %s: %w", t.ID, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	s.rows = make(map[string][]any, len(txs))
	for _, t := range txs {
		if _, ok := s.rows[t.ID]; !ok {
			s.order = append(s.order, t.ID)
		}
		s.rows[t.ID] = ports.Row(t)
	}
	return nil
}

// Rows returns the mirrored rows in sheet order.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, append([]any(nil), s.rows[id]...))
	}
	return out
}

func (s *Store) indexLocked(id string) int {
	for i, v := range s.order {
		if v == id {
			return i
		}
	}
	return -1
}
