package http

import (
	"net/http"

	"tally/internal/core"
)

func (in goalRequest) toInput() core.GoalInput {
	return core.GoalInput{
		Name:     in.Name,
		Target:   in.Target.ptr(),
		Deadline: in.Deadline,
		Note:     in.Note,
		Status:   in.Status,
	}
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	owner := principalFrom(r.Context())
	goals, err := s.goals.List(r.Context(), owner.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalViews(goals))
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	owner := principalFrom(r.Context())
	g, err := s.goals.Create(r.Context(), owner.ID, req.toInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalView(g))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	owner := principalFrom(r.Context())
	g, err := s.goals.Get(r.Context(), owner.ID, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalView(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	owner := principalFrom(r.Context())
	g, err := s.goals.Update(r.Context(), owner.ID, id, req.toInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalView(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	owner := principalFrom(r.Context())
	if err := s.goals.Delete(r.Context(), owner.ID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
