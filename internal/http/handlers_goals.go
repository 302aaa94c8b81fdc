package http

import (
	"errors"
	"net/http"

	"smartbudget/internal/core"
	"smartbudget/internal/ledger"
)

type goalView struct {
	core.SavingsGoal
	Progress  float64 `json:"progress"`
	Remaining Money   `json:"remaining"`
}

func (s *Server) goalView(g core.SavingsGoal) goalView {
	return goalView{SavingsGoal: g, Progress: g.Progress(), Remaining: s.displayer().money(g.Remaining())}
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals := s.book.Goals()
	out := make([]goalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, s.goalView(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

type goalRequest struct {
	Name          *string  `json:"name"`
	TargetAmount  *float64 `json:"targetAmount"`
	CurrentAmount *float64 `json:"currentAmount"`
	Description   *string  `json:"description"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	d := ledger.GoalDraft{}
	if req.Name != nil {
		d.Name = sanitizeInput(*req.Name)
	}
	if req.TargetAmount != nil {
		d.TargetAmount = *req.TargetAmount
	}
	if req.Description != nil {
		d.Description = sanitizeInput(*req.Description)
	}
	g, err := s.book.AddGoal(r.Context(), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", r.URL.Path+"/"+g.ID)
	writeJSON(w, http.StatusCreated, s.goalView(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	g, err := s.book.UpdateGoal(r.Context(), r.PathValue("id"), ledger.GoalPatch{
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Description:   req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.goalView(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.book.DeleteGoal(r.Context(), r.PathValue("id")); err != nil && !errors.Is(err, ledger.ErrNotFound) {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type contributeRequest struct {
	Amount float64 `json:"amount"`
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	g, err := s.book.Contribute(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.goalView(g))
}
