package http

import (
	"bytes"
	"fmt"
	"net/http"

	"smartbudget/internal/log"
	"smartbudget/internal/transfer"
)

// handleExport streams the document as an attachment named after its type
// and the export date.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	t, err := transfer.ParseType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := transfer.Export(&buf, s.book, t); err != nil {
		writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("smartbudget-%s-%s.json", t, s.book.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type importResponse struct {
	ExportType transfer.Type `json:"exportType"`
	Expenses   int           `json:"expenses"`
	Income     int           `json:"income"`
	Goals      int           `json:"savingsGoals"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	doc, err := transfer.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes), s.book)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := importResponse{ExportType: doc.ExportType}
	if doc.Expenses != nil {
		resp.Expenses = len(*doc.Expenses)
	}
	if doc.Income != nil {
		resp.Income = len(*doc.Income)
	}
	if doc.SavingsGoals != nil {
		resp.Goals = len(*doc.SavingsGoals)
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Import applied",
		"export_type", doc.ExportType,
		"expenses", resp.Expenses,
		"income", resp.Income)
	writeJSON(w, http.StatusOK, resp)
}

// handleReset clears every persisted collection.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.book.Reset(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).WarnContext(r.Context(), "All data cleared")
	w.WriteHeader(http.StatusNoContent)
}
