package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	powererrors "quorum/contexts/governance/power-ledger/domain/errors"
	powerhttp "quorum/contexts/governance/power-ledger/transport/http"
)

func (s *Server) registerPowerRoutes() {
	s.mux.HandleFunc("PUT /v1/orgs/{org_id}/power/token", s.handleUpdateTokenPower)
	s.mux.HandleFunc("POST /v1/orgs/{org_id}/power/refresh", s.handleRefreshCurrencyPower)
	s.mux.HandleFunc("GET /v1/orgs/{org_id}/power/{account}", s.handleGetPower)
	s.mux.HandleFunc("POST /v1/orgs/{org_id}/delegations", s.handleDelegate)
	s.mux.HandleFunc("DELETE /v1/orgs/{org_id}/delegations", s.handleRevokeDelegation)
	s.mux.HandleFunc("GET /v1/orgs/{org_id}/delegations", s.handleListDelegations)
}

func (s *Server) handleUpdateTokenPower(w http.ResponseWriter, r *http.Request) {
	var req powerhttp.UpdateTokenPowerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.powers.Handler.UpdateTokenPowerHandler(r.Context(), r.PathValue("org_id"), req)
	if err != nil {
		writePowerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefreshCurrencyPower(w http.ResponseWriter, r *http.Request) {
	var req powerhttp.RefreshCurrencyPowerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.powers.Handler.RefreshCurrencyPowerHandler(r.Context(), r.PathValue("org_id"), req)
	if err != nil {
		writePowerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPower(w http.ResponseWriter, r *http.Request) {
	resp, err := s.powers.Handler.GetPowerHandler(r.Context(), r.PathValue("org_id"), r.PathValue("account"))
	if err != nil {
		writePowerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelegate(w http.ResponseWriter, r *http.Request) {
	delegator := callerAccount(r)
	if delegator == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req powerhttp.DelegateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.powers.Handler.DelegateHandler(r.Context(), r.PathValue("org_id"), delegator, req)
	if err != nil {
		writePowerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRevokeDelegation(w http.ResponseWriter, r *http.Request) {
	delegator := callerAccount(r)
	if delegator == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	resp, err := s.powers.Handler.RevokeHandler(r.Context(), r.PathValue("org_id"), delegator)
	if err != nil {
		writePowerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDelegations(w http.ResponseWriter, r *http.Request) {
	resp, err := s.powers.Handler.ListDelegationsHandler(r.Context(), r.PathValue("org_id"))
	if err != nil {
		writePowerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writePowerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, powererrors.ErrInvalidPowerInput):
		writeError(w, http.StatusBadRequest, "invalid_power_input", err.Error())
	case errors.Is(err, powererrors.ErrPowerRecordNotFound):
		writeError(w, http.StatusNotFound, "power_record_not_found", err.Error())
	case errors.Is(err, powererrors.ErrDelegationNotFound):
		writeError(w, http.StatusNotFound, "delegation_not_found", err.Error())
	case errors.Is(err, powererrors.ErrDelegationExists):
		writeError(w, http.StatusConflict, "delegation_exists", err.Error())
	case errors.Is(err, powererrors.ErrSelfDelegation):
		writeError(w, http.StatusBadRequest, "self_delegation", err.Error())
	case errors.Is(err, powererrors.ErrNoSpendablePower):
		writeError(w, http.StatusUnprocessableEntity, "no_spendable_power", err.Error())
	case errors.Is(err, powererrors.ErrOracleUnavailable):
		writeError(w, http.StatusBadGateway, "oracle_unavailable", err.Error())
	case errors.Is(err, powererrors.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
