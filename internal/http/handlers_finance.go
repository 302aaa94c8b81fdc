package http

import (
	"net/http"
	"sort"
	"strings"

	"smartbudget/internal/core"
	"smartbudget/internal/finance"
)

type summaryResponse struct {
	finance.Result
	Display struct {
		TotalExpenses Money `json:"totalExpenses"`
		TotalIncome   Money `json:"totalIncome"`
		NetBalance    Money `json:"netBalance"`
	} `json:"display"`
	ExpenseBreakdown []finance.CategoryAmount `json:"expenseBreakdown"`
	IncomeBreakdown  []finance.CategoryAmount `json:"incomeBreakdown"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	res := finance.Aggregate(s.book.Snapshot())
	d := s.displayer()
	resp := summaryResponse{
		Result:           res,
		ExpenseBreakdown: finance.SortedBreakdown(res.ExpensesByCategory),
		IncomeBreakdown:  finance.SortedBreakdown(res.IncomeByCategory),
	}
	resp.Display.TotalExpenses = d.money(res.TotalExpenses)
	resp.Display.TotalIncome = d.money(res.TotalIncome)
	resp.Display.NetBalance = d.money(res.NetBalance)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights := finance.Insights(s.book.Snapshot(), s.book.Now())
	if insights == nil {
		insights = []finance.Insight{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"insights": insights})
}

func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, finance.HealthScore(finance.Aggregate(s.book.Snapshot()), s.policy))
}

type utilizationEntry struct {
	Category string `json:"category"`
	finance.Utilization
	Display struct {
		Spent     Money `json:"spent"`
		Budget    Money `json:"budget"`
		Remaining Money `json:"remaining"`
	} `json:"display"`
	Over bool `json:"over"`
}

// handleBudgetUtilization lists every budgeted category in name order.
func (s *Server) handleBudgetUtilization(w http.ResponseWriter, r *http.Request) {
	util := s.book.Snapshot().BudgetUtilization()
	d := s.displayer()
	out := make([]utilizationEntry, 0, len(util))
	for _, cat := range sortedCategories(util) {
		u := util[cat]
		e := utilizationEntry{Category: cat, Utilization: u, Over: u.Spent > u.Budget}
		e.Display.Spent = d.money(u.Spent)
		e.Display.Budget = d.money(u.Budget)
		e.Display.Remaining = d.money(u.Remaining)
		out = append(out, e)
	}
	writeJSON(w, http.StatusOK, map[string]any{"budgets": out})
}

func sortedCategories(m map[string]finance.Utilization) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	now := s.book.Now()
	period, err := ParseReportPeriod(r.URL.Query(), now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, finance.Report(s.book.Snapshot(), period, now, s.policy))
}

func (s *Server) handleGetBudgets(w http.ResponseWriter, r *http.Request) {
	budgets := s.book.Budgets()
	writeJSON(w, http.StatusOK, map[string]any{
		"budgets": budgets,
		"display": s.displayer().moneyMap(budgets),
	})
}

func (s *Server) handleReplaceBudgets(w http.ResponseWriter, r *http.Request) {
	var budgets core.Budgets
	if err := decodeJSON(w, r, &budgets); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if budgets == nil {
		budgets = core.Budgets{}
	}
	if err := s.book.ReplaceBudgets(r.Context(), budgets); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"budgets": s.book.Budgets()})
}

type budgetRequest struct {
	Amount *float64 `json:"amount"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if req.Amount == nil {
		var verr core.ValidationError
		verr.Add("amount", "amount is required")
		writeError(w, r, verr.Err())
		return
	}
	category := strings.TrimSpace(r.PathValue("category"))
	if err := s.book.SetBudget(r.Context(), category, *req.Amount); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category, "amount": *req.Amount})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.book.DeleteBudget(r.Context(), strings.TrimSpace(r.PathValue("category"))); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
