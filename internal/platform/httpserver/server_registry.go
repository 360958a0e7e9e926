package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	registryerrors "quorum/contexts/governance/dao-registry/domain/errors"
	registryhttp "quorum/contexts/governance/dao-registry/transport/http"
)

func (s *Server) registerRegistryRoutes() {
	s.mux.HandleFunc("POST /v1/orgs", s.handleRegisterOrganization)
	s.mux.HandleFunc("GET /v1/orgs", s.handleListOrganizations)
	s.mux.HandleFunc("GET /v1/orgs/{org_id}", s.handleGetOrganization)
	s.mux.HandleFunc("PUT /v1/orgs/{org_id}", s.handleUpdateOrganization)
	s.mux.HandleFunc("POST /v1/orgs/{org_id}/deactivate", s.handleDeactivateOrganization)
}

func (s *Server) handleRegisterOrganization(w http.ResponseWriter, r *http.Request) {
	owner := callerAccount(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req registryhttp.RegisterOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.registry.Handler.RegisterHandler(r.Context(), owner, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.ListOrganizationsHandler(r.Context())
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.GetOrganizationHandler(r.Context(), r.PathValue("org_id"))
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateOrganization(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req registryhttp.UpdateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.registry.Handler.UpdateMetadataHandler(r.Context(), r.PathValue("org_id"), caller, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeactivateOrganization(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	resp, err := s.registry.Handler.DeactivateHandler(r.Context(), r.PathValue("org_id"), caller)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeRegistryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrInvalidOrgInput):
		writeError(w, http.StatusBadRequest, "invalid_organization", err.Error())
	case errors.Is(err, registryerrors.ErrOrganizationNotFound):
		writeError(w, http.StatusNotFound, "organization_not_found", err.Error())
	case errors.Is(err, registryerrors.ErrOrganizationExists):
		writeError(w, http.StatusConflict, "organization_exists", err.Error())
	case errors.Is(err, registryerrors.ErrAlreadyDeactivated):
		writeError(w, http.StatusUnprocessableEntity, "already_deactivated", err.Error())
	case errors.Is(err, registryerrors.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
