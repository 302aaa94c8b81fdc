package http

import (
	"net/http"

	"smartbudget/internal/ledger"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.book.Settings())
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p ledger.UserProfile
	if err := decodeJSON(w, r, &p); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	p.Name = sanitizeInput(p.Name)
	p.Email = sanitizeInput(p.Email)
	updated, err := s.book.UpdateProfile(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleUpdateNotifications(w http.ResponseWriter, r *http.Request) {
	var n ledger.NotificationSettings
	if err := decodeJSON(w, r, &n); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if err := s.book.UpdateNotifications(r.Context(), n); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

type currencyRequest struct {
	Currency string `json:"currency"`
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	var req currencyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if err := s.book.SetCurrency(r.Context(), req.Currency); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, currencyRequest{Currency: s.book.Settings().Currency})
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	rates := s.book.Rates()
	writeJSON(w, http.StatusOK, map[string]any{
		"selected": s.book.Settings().Currency,
		"codes":    rates.Codes(),
		"rates":    rates,
	})
}

type companyRequest struct {
	Name string `json:"name"`
}

func (s *Server) companies(w http.ResponseWriter, status int) {
	st := s.book.Settings()
	writeJSON(w, status, map[string]any{
		"companies":      st.Companies,
		"currentCompany": st.CurrentCompany,
	})
}

func (s *Server) handleAddCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if err := s.book.AddCompany(r.Context(), sanitizeInput(req.Name)); err != nil {
		writeError(w, r, err)
		return
	}
	s.companies(w, http.StatusCreated)
}

func (s *Server) handleRemoveCompany(w http.ResponseWriter, r *http.Request) {
	if err := s.book.RemoveCompany(r.Context(), r.PathValue("name")); err != nil {
		writeError(w, r, err)
		return
	}
	s.companies(w, http.StatusOK)
}

func (s *Server) handleRenameCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if err := s.book.RenameCompany(r.Context(), r.PathValue("name"), sanitizeInput(req.Name)); err != nil {
		writeError(w, r, err)
		return
	}
	s.companies(w, http.StatusOK)
}

func (s *Server) handleSwitchCompany(w http.ResponseWriter, r *http.Request) {
	if err := s.book.SwitchCompany(r.Context(), r.PathValue("name")); err != nil {
		writeError(w, r, err)
		return
	}
	s.companies(w, http.StatusOK)
}
