package http

import (
	"net/http"
)

type createBudgetRequest struct {
	CategoryID int64  `json:"category_id"`
	Amount     string `json:"amount"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

type updateBudgetRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := queryInt(r, "month")
	if err != nil {
		writeError(w, r, err)
		return
	}
	year, err := queryInt(r, "year")
	if err != nil {
		writeError(w, r, err)
		return
	}

	budgets, err := s.budgets.List(r.Context(), userID(r), month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		out[i] = toBudgetResponse(b)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	owner := userID(r)
	budget, err := s.budgets.Create(r.Context(), owner, req.CategoryID, amount, req.Month, req.Year)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidatePeriod(owner, budget.Month, budget.Year)
	writeJSON(w, http.StatusCreated, toBudgetResponse(budget))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.budgets.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	owner := userID(r)
	budget, err := s.budgets.UpdateAmount(r.Context(), owner, id, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidatePeriod(owner, budget.Month, budget.Year)
	writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	owner := userID(r)
	budget, err := s.budgets.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.budgets.Delete(r.Context(), owner, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidatePeriod(owner, budget.Month, budget.Year)
	w.WriteHeader(http.StatusNoContent)
}
