package http

import (
	"errors"
	"net/http"

	"smartbudget/internal/core"
	"smartbudget/internal/finance"
	"smartbudget/internal/ledger"
)

type transactionList struct {
	Items []core.Transaction `json:"items"`
	Count int                `json:"count"`
	Total Money              `json:"total"`
}

func (s *Server) listResponse(items []core.Transaction) transactionList {
	if items == nil {
		items = []core.Transaction{}
	}
	var total float64
	for _, t := range items {
		total += t.Amount
	}
	return transactionList{Items: items, Count: len(items), Total: s.displayer().money(total)}
}

func (s *Server) handleList(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.listResponse(s.book.Query(kind)))
	}
}

func (s *Server) handleCreate(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := NewRequestBodyParser(w, r)
		if err := p.Parse(); err != nil {
			badRequest(w, r, "malformed request body")
			return
		}
		draft, err := parseDraft(p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		t, err := s.book.Add(r.Context(), kind, draft)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Location", r.URL.Path+"/"+t.ID)
		writeJSON(w, http.StatusCreated, t)
	}
}

func (s *Server) handleUpdate(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		p := NewRequestBodyParser(w, r)
		if err := p.Parse(); err != nil {
			badRequest(w, r, "malformed request body")
			return
		}
		patch, err := parsePatch(p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		t, err := s.book.Update(r.Context(), kind, id, patch)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// handleDelete is idempotent: deleting an absent id still answers 204.
func (s *Server) handleDelete(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.book.Delete(r.Context(), kind, id); err != nil && !errors.Is(err, ledger.ErrNotFound) {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	t, err := s.book.ToggleBookmark(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.listResponse(finance.Apply(s.book.Snapshot(), f)))
}

func (s *Server) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.listResponse(finance.Bookmarked(s.book.Snapshot())))
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseLimit(r.URL.Query(), finance.DefaultRecentLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.listResponse(finance.Recent(s.book.Snapshot(), limit)))
}
