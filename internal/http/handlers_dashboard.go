package http

import "net/http"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner := principalFrom(r.Context())
	d, err := s.dashboard.Build(r.Context(), owner.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardView(d))
}
