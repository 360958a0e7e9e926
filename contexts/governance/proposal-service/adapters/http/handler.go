package httpadapter

import (
	"context"
	"log/slog"

	"quorum/contexts/governance/proposal-service/application/commands"
	"quorum/contexts/governance/proposal-service/application/queries"
	"quorum/contexts/governance/proposal-service/domain/entities"
	httptransport "quorum/contexts/governance/proposal-service/transport/http"
)

type Handler struct {
	Proposals commands.ProposalUseCase
	Queries   queries.ProposalQueries
	Logger    *slog.Logger
}

func (h Handler) CreateProposalHandler(
	ctx context.Context,
	proposer string,
	req httptransport.CreateProposalRequest,
) (httptransport.ProposalResponse, error) {
	proposal, err := h.Proposals.CreateProposal(ctx, commands.CreateProposalCommand{
		ProposalID:         req.ProposalID,
		Title:              req.Title,
		Description:        req.Description,
		OrgID:              req.OrgID,
		Proposer:           proposer,
		ExecutionPayload:   req.ExecutionPayload,
		FundingGoal:        req.FundingGoal,
		MinApprovalPercent: req.MinApprovalPercent,
		VoteStartEpoch:     req.VoteStartEpoch,
		VoteEndEpoch:       req.VoteEndEpoch,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return toProposalResponse(proposal), nil
}

func (h Handler) GetProposalHandler(ctx context.Context, proposalID string) (httptransport.ProposalResponse, error) {
	proposal, err := h.Queries.GetProposal(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return toProposalResponse(proposal), nil
}

func (h Handler) ListProposalsHandler(ctx context.Context, orgID string) (httptransport.ProposalListResponse, error) {
	proposals, err := h.Queries.ListProposals(ctx, orgID)
	if err != nil {
		return httptransport.ProposalListResponse{}, err
	}
	items := make([]httptransport.ProposalResponse, 0, len(proposals))
	for _, proposal := range proposals {
		items = append(items, toProposalResponse(proposal))
	}
	return httptransport.ProposalListResponse{Items: items}, nil
}

func (h Handler) ActivateHandler(ctx context.Context, proposalID, caller string) (httptransport.ProposalResponse, error) {
	proposal, err := h.Proposals.Activate(ctx, proposalID, caller)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return toProposalResponse(proposal), nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	proposalID, voter string,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	vote, err := h.Proposals.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposalID,
		Voter:      voter,
		Kind:       entities.VoteKind(req.Kind),
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return toVoteResponse(vote), nil
}

func (h Handler) FinalizeHandler(ctx context.Context, proposalID string) (httptransport.FinalizeResponse, error) {
	result, err := h.Proposals.Finalize(ctx, proposalID)
	if err != nil {
		return httptransport.FinalizeResponse{}, err
	}
	return httptransport.FinalizeResponse{
		Proposal:        toProposalResponse(result.Proposal),
		Tally:           toTallyResponse(result.Tally, result.ApprovalPercent),
		ApprovalPercent: result.ApprovalPercent,
	}, nil
}

func (h Handler) ExecuteHandler(ctx context.Context, proposalID string) (httptransport.ProposalResponse, error) {
	proposal, err := h.Proposals.Execute(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return toProposalResponse(proposal), nil
}

func (h Handler) CancelHandler(ctx context.Context, proposalID, caller string) (httptransport.ProposalResponse, error) {
	proposal, err := h.Proposals.Cancel(ctx, proposalID, caller)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return toProposalResponse(proposal), nil
}

func (h Handler) GetTallyHandler(ctx context.Context, proposalID string) (httptransport.TallyResponse, error) {
	view, err := h.Queries.GetTally(ctx, proposalID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	return toTallyResponse(view.Tally, view.ApprovalPercent), nil
}

func (h Handler) ListVotesHandler(ctx context.Context, proposalID string) (httptransport.VoteListResponse, error) {
	votes, err := h.Queries.ListVotes(ctx, proposalID)
	if err != nil {
		return httptransport.VoteListResponse{}, err
	}
	items := make([]httptransport.VoteResponse, 0, len(votes))
	for _, vote := range votes {
		items = append(items, toVoteResponse(vote))
	}
	return httptransport.VoteListResponse{Items: items}, nil
}

func toProposalResponse(proposal entities.Proposal) httptransport.ProposalResponse {
	return httptransport.ProposalResponse{
		ProposalID:         proposal.ProposalID,
		Title:              proposal.Title,
		Description:        proposal.Description,
		OrgID:              proposal.OrgID,
		Proposer:           proposal.Proposer,
		Status:             string(proposal.Status),
		ExecutionPayload:   proposal.ExecutionPayload,
		FundingGoal:        proposal.FundingGoal,
		MinApprovalPercent: proposal.MinApprovalPercent,
		VoteStartEpoch:     proposal.VoteStartEpoch,
		VoteEndEpoch:       proposal.VoteEndEpoch,
		CreatedAtEpoch:     proposal.CreatedAtEpoch,
	}
}

func toVoteResponse(vote entities.VoteRecord) httptransport.VoteResponse {
	return httptransport.VoteResponse{
		ProposalID:  vote.ProposalID,
		Voter:       vote.Voter,
		Kind:        string(vote.Kind),
		Power:       vote.Power,
		CastAtEpoch: vote.CastAtEpoch,
	}
}

func toTallyResponse(tally entities.VoteTally, approval uint64) httptransport.TallyResponse {
	return httptransport.TallyResponse{
		ProposalID:      tally.ProposalID,
		Yes:             tally.Yes,
		No:              tally.No,
		Abstain:         tally.Abstain,
		TotalVoted:      tally.TotalVoted,
		ApprovalPercent: approval,
	}
}
