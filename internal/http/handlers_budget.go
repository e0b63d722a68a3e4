package http

import (
	"net/http"

	"tally/internal/core"
)

func (in budgetRequest) toInput() core.BudgetInput {
	return core.BudgetInput{
		CategoryID:      in.CategoryID,
		Amount:          in.Amount.ptr(),
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Frequency:       in.Frequency,
		Note:            in.Note,
		CurrentSpending: in.CurrentSpending.ptr(),
	}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	owner := principalFrom(r.Context())
	budgets, err := s.budgets.List(r.Context(), owner.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetViews(budgets))
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	owner := principalFrom(r.Context())
	b, err := s.budgets.Create(r.Context(), owner.ID, req.toInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetView(b))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	owner := principalFrom(r.Context())
	b, err := s.budgets.Get(r.Context(), owner.ID, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetView(b))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	owner := principalFrom(r.Context())
	b, err := s.budgets.Update(r.Context(), owner.ID, id, req.toInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetView(b))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	owner := principalFrom(r.Context())
	if err := s.budgets.Delete(r.Context(), owner.ID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
