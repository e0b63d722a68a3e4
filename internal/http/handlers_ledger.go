package http

import (
	"net/http"

	"tally/internal/core"
	"tally/internal/services"
)

// The expense and income routes are structurally identical, so each
// handler is built once and bound to both ledger services.

func (in transactionRequest) toInput() core.TransactionInput {
	return core.TransactionInput{
		CategoryID: in.CategoryID,
		Amount:     in.Amount.ptr(),
		Date:       in.Date,
		Note:       in.Note,
	}
}

func (s *Server) ledgerList(svc *services.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := principalFrom(r.Context())
		txs, err := svc.List(r.Context(), owner.ID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTransactionViews(txs))
	}
}

func (s *Server) ledgerCreate(svc *services.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}

		owner := principalFrom(r.Context())
		tx, err := svc.Create(r.Context(), owner.ID, req.toInput())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toTransactionView(tx))
	}
}

func (s *Server) ledgerGet(svc *services.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "not found")
			return
		}

		owner := principalFrom(r.Context())
		tx, err := svc.Get(r.Context(), owner.ID, id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTransactionView(tx))
	}
}

func (s *Server) ledgerUpdate(svc *services.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "not found")
			return
		}

		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}

		owner := principalFrom(r.Context())
		tx, err := svc.Update(r.Context(), owner.ID, id, req.toInput())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTransactionView(tx))
	}
}

func (s *Server) ledgerDelete(svc *services.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "not found")
			return
		}

		owner := principalFrom(r.Context())
		if err := svc.Delete(r.Context(), owner.ID, id); err != nil {
			writeDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
