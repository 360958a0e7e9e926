package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	escrowerrors "quorum/contexts/treasury/funding-escrow/domain/errors"
	escrowhttp "quorum/contexts/treasury/funding-escrow/transport/http"
)

func (s *Server) registerEscrowRoutes() {
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/funding", s.handleInitializeFunding)
	s.mux.HandleFunc("GET /v1/proposals/{proposal_id}/funding", s.handleGetFunding)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/funding/contributions", s.handleContribute)
	s.mux.HandleFunc("GET /v1/proposals/{proposal_id}/funding/contributions", s.handleListContributions)
	s.mux.HandleFunc("GET /v1/proposals/{proposal_id}/funding/contributions/{funder}", s.handleGetContribution)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/funding/withdrawals", s.handleWithdraw)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/funding/withdrawals/token", s.handleWithdrawToken)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/funding/refunds", s.handleRefund)
}

func (s *Server) handleInitializeFunding(w http.ResponseWriter, r *http.Request) {
	var req escrowhttp.InitializeFundingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.escrow.Handler.InitializeHandler(r.Context(), r.PathValue("proposal_id"), req)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetFunding(w http.ResponseWriter, r *http.Request) {
	resp, err := s.escrow.Handler.GetFundingHandler(r.Context(), r.PathValue("proposal_id"))
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	funder := callerAccount(r)
	if funder == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req escrowhttp.ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.escrow.Handler.ContributeHandler(r.Context(), r.PathValue("proposal_id"), funder, req)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.escrow.Handler.ListContributionsHandler(r.Context(), r.PathValue("proposal_id"))
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetContribution(w http.ResponseWriter, r *http.Request) {
	resp, err := s.escrow.Handler.GetContributionHandler(
		r.Context(),
		r.PathValue("proposal_id"),
		r.PathValue("funder"),
	)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req escrowhttp.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.escrow.Handler.WithdrawHandler(r.Context(), r.PathValue("proposal_id"), caller, req)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdrawToken(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req escrowhttp.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.escrow.Handler.WithdrawTokenHandler(r.Context(), r.PathValue("proposal_id"), caller, req)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefund(w http.ResponseWriter, r *http.Request) {
	funder := callerAccount(r)
	if funder == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	resp, err := s.escrow.Handler.RefundHandler(r.Context(), r.PathValue("proposal_id"), funder)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeEscrowDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, escrowerrors.ErrInvalidFundingInput):
		writeError(w, http.StatusBadRequest, "invalid_funding_input", err.Error())
	case errors.Is(err, escrowerrors.ErrFundingNotFound):
		writeError(w, http.StatusNotFound, "funding_not_found", err.Error())
	case errors.Is(err, escrowerrors.ErrContributionNotFound):
		writeError(w, http.StatusNotFound, "contribution_not_found", err.Error())
	case errors.Is(err, escrowerrors.ErrFundingExists):
		writeError(w, http.StatusConflict, "funding_exists", err.Error())
	case errors.Is(err, escrowerrors.ErrNotFundable):
		writeError(w, http.StatusUnprocessableEntity, "not_fundable", err.Error())
	case errors.Is(err, escrowerrors.ErrWindowClosed):
		writeError(w, http.StatusUnprocessableEntity, "window_closed", err.Error())
	case errors.Is(err, escrowerrors.ErrWindowOpen):
		writeError(w, http.StatusUnprocessableEntity, "window_open", err.Error())
	case errors.Is(err, escrowerrors.ErrGoalReached):
		writeError(w, http.StatusUnprocessableEntity, "goal_reached", err.Error())
	case errors.Is(err, escrowerrors.ErrGoalNotReached):
		writeError(w, http.StatusUnprocessableEntity, "goal_not_reached", err.Error())
	case errors.Is(err, escrowerrors.ErrAssetMismatch):
		writeError(w, http.StatusUnprocessableEntity, "asset_mismatch", err.Error())
	case errors.Is(err, escrowerrors.ErrInsufficientFunds):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_funds", err.Error())
	case errors.Is(err, escrowerrors.ErrTransferFailed):
		writeError(w, http.StatusBadGateway, "transfer_failed", err.Error())
	case errors.Is(err, escrowerrors.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, escrowerrors.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
