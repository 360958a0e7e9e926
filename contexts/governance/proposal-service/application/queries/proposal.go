package queries

import (
	"context"
	"strings"

	"quorum/contexts/governance/proposal-service/domain/entities"
	domainerrors "quorum/contexts/governance/proposal-service/domain/errors"
	"quorum/contexts/governance/proposal-service/ports"
)

// TallyView pairs a tally with the derived approval ratio so transports never
// recompute it.
type TallyView struct {
	Tally           entities.VoteTally
	ApprovalPercent uint64
}

type ProposalQueries struct {
	Proposals ports.ProposalRepository
}

func (q ProposalQueries) GetProposal(ctx context.Context, proposalID string) (entities.Proposal, error) {
	proposalID = strings.TrimSpace(proposalID)
	if proposalID == "" {
		return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
	}
	return q.Proposals.GetProposal(ctx, proposalID)
}

func (q ProposalQueries) ListProposals(ctx context.Context, orgID string) ([]entities.Proposal, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, domainerrors.ErrInvalidProposalInput
	}
	return q.Proposals.ListProposalsByOrg(ctx, orgID)
}

func (q ProposalQueries) GetTally(ctx context.Context, proposalID string) (TallyView, error) {
	proposalID = strings.TrimSpace(proposalID)
	if proposalID == "" {
		return TallyView{}, domainerrors.ErrInvalidProposalInput
	}
	tally, err := q.Proposals.GetTally(ctx, proposalID)
	if err != nil {
		return TallyView{}, err
	}
	return TallyView{Tally: tally, ApprovalPercent: tally.ApprovalPercent()}, nil
}

func (q ProposalQueries) ListVotes(ctx context.Context, proposalID string) ([]entities.VoteRecord, error) {
	proposalID = strings.TrimSpace(proposalID)
	if proposalID == "" {
		return nil, domainerrors.ErrInvalidProposalInput
	}
	if _, err := q.Proposals.GetProposal(ctx, proposalID); err != nil {
		return nil, err
	}
	return q.Proposals.ListVotesByProposal(ctx, proposalID)
}
