package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	proposalerrors "quorum/contexts/governance/proposal-service/domain/errors"
	proposalhttp "quorum/contexts/governance/proposal-service/transport/http"
)

func (s *Server) registerProposalRoutes() {
	s.mux.HandleFunc("POST /v1/proposals", s.handleCreateProposal)
	s.mux.HandleFunc("GET /v1/proposals/{proposal_id}", s.handleGetProposal)
	s.mux.HandleFunc("GET /v1/orgs/{org_id}/proposals", s.handleListProposals)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/activate", s.handleActivateProposal)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /v1/proposals/{proposal_id}/votes", s.handleListVotes)
	s.mux.HandleFunc("GET /v1/proposals/{proposal_id}/tally", s.handleGetTally)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/finalize", s.handleFinalizeProposal)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/execute", s.handleExecuteProposal)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/cancel", s.handleCancelProposal)
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	proposer := callerAccount(r)
	if proposer == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req proposalhttp.CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.proposals.Handler.CreateProposalHandler(r.Context(), proposer, req)
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	resp, err := s.proposals.Handler.GetProposalHandler(r.Context(), r.PathValue("proposal_id"))
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	resp, err := s.proposals.Handler.ListProposalsHandler(r.Context(), r.PathValue("org_id"))
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActivateProposal(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	resp, err := s.proposals.Handler.ActivateHandler(r.Context(), r.PathValue("proposal_id"), caller)
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	voter := callerAccount(r)
	if voter == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req proposalhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.proposals.Handler.CastVoteHandler(r.Context(), r.PathValue("proposal_id"), voter, req)
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListVotes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.proposals.Handler.ListVotesHandler(r.Context(), r.PathValue("proposal_id"))
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTally(w http.ResponseWriter, r *http.Request) {
	resp, err := s.proposals.Handler.GetTallyHandler(r.Context(), r.PathValue("proposal_id"))
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinalizeProposal(w http.ResponseWriter, r *http.Request) {
	resp, err := s.proposals.Handler.FinalizeHandler(r.Context(), r.PathValue("proposal_id"))
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExecuteProposal(w http.ResponseWriter, r *http.Request) {
	resp, err := s.proposals.Handler.ExecuteHandler(r.Context(), r.PathValue("proposal_id"))
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelProposal(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	resp, err := s.proposals.Handler.CancelHandler(r.Context(), r.PathValue("proposal_id"), caller)
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeProposalDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, proposalerrors.ErrInvalidProposalInput):
		writeError(w, http.StatusBadRequest, "invalid_proposal_input", err.Error())
	case errors.Is(err, proposalerrors.ErrInvalidVoteKind):
		writeError(w, http.StatusBadRequest, "invalid_vote_kind", err.Error())
	case errors.Is(err, proposalerrors.ErrProposalNotFound):
		writeError(w, http.StatusNotFound, "proposal_not_found", err.Error())
	case errors.Is(err, proposalerrors.ErrTallyNotFound):
		writeError(w, http.StatusNotFound, "tally_not_found", err.Error())
	case errors.Is(err, proposalerrors.ErrOrganizationNotFound):
		writeError(w, http.StatusNotFound, "organization_not_found", err.Error())
	case errors.Is(err, proposalerrors.ErrProposalExists):
		writeError(w, http.StatusConflict, "proposal_exists", err.Error())
	case errors.Is(err, proposalerrors.ErrVoteExists):
		writeError(w, http.StatusConflict, "vote_exists", err.Error())
	case errors.Is(err, proposalerrors.ErrInvalidStatus):
		writeError(w, http.StatusUnprocessableEntity, "invalid_status", err.Error())
	case errors.Is(err, proposalerrors.ErrVotingClosed):
		writeError(w, http.StatusUnprocessableEntity, "voting_closed", err.Error())
	case errors.Is(err, proposalerrors.ErrVotingOpen):
		writeError(w, http.StatusUnprocessableEntity, "voting_open", err.Error())
	case errors.Is(err, proposalerrors.ErrOrganizationInactive):
		writeError(w, http.StatusUnprocessableEntity, "organization_inactive", err.Error())
	case errors.Is(err, proposalerrors.ErrZeroVotePower):
		writeError(w, http.StatusUnprocessableEntity, "zero_vote_power", err.Error())
	case errors.Is(err, proposalerrors.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, proposalerrors.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
