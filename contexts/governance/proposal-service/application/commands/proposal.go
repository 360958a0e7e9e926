package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/governance/proposal-service/application"
	"quorum/contexts/governance/proposal-service/domain/entities"
	domainerrors "quorum/contexts/governance/proposal-service/domain/errors"
	"quorum/contexts/governance/proposal-service/ports"
)

// CreateProposalCommand registers a new proposal in DRAFT.
type CreateProposalCommand struct {
	ProposalID         string // optional opaque handle; generated when empty
	Title              string
	Description        string
	OrgID              string
	Proposer           string
	ExecutionPayload   string
	FundingGoal        uint64
	MinApprovalPercent uint64
	VoteStartEpoch     uint64
	VoteEndEpoch       uint64
}

type CastVoteCommand struct {
	ProposalID string
	Voter      string
	Kind       entities.VoteKind
}

// FinalizeResult carries the computed outcome for transports and audit.
type FinalizeResult struct {
	Proposal        entities.Proposal
	Tally           entities.VoteTally
	ApprovalPercent uint64
}

// ProposalUseCase drives the proposal lifecycle state machine:
// DRAFT -> ACTIVE -> {PASSED, REJECTED} -> EXECUTED, with CANCELED reachable
// from DRAFT and ACTIVE only. Vote weights come from the power ledger at cast
// time; every precondition is validated before any record write.
type ProposalUseCase struct {
	Proposals ports.ProposalRepository
	Power     ports.PowerSource
	Orgs      ports.OrganizationDirectory
	Outbox    ports.OutboxWriter
	Epochs    ports.EpochSource
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc ProposalUseCase) CreateProposal(ctx context.Context, cmd CreateProposalCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	title := strings.TrimSpace(cmd.Title)
	orgID := strings.TrimSpace(cmd.OrgID)
	proposer := strings.TrimSpace(cmd.Proposer)
	if title == "" || orgID == "" || proposer == "" {
		return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
	}
	if cmd.VoteEndEpoch < cmd.VoteStartEpoch {
		return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
	}
	if cmd.MinApprovalPercent > 100 {
		return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
	}

	org, err := uc.Orgs.Organization(ctx, orgID)
	if err != nil {
		return entities.Proposal{}, err
	}
	if !org.Active {
		return entities.Proposal{}, domainerrors.ErrOrganizationInactive
	}

	proposalID := strings.TrimSpace(cmd.ProposalID)
	if proposalID == "" {
		proposalID, err = uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Proposal{}, err
		}
	}

	now := uc.now()
	proposal := entities.Proposal{
		ProposalID:         proposalID,
		Title:              title,
		Description:        strings.TrimSpace(cmd.Description),
		OrgID:              orgID,
		Proposer:           proposer,
		Status:             entities.StatusDraft,
		ExecutionPayload:   cmd.ExecutionPayload,
		FundingGoal:        cmd.FundingGoal,
		MinApprovalPercent: cmd.MinApprovalPercent,
		VoteStartEpoch:     cmd.VoteStartEpoch,
		VoteEndEpoch:       cmd.VoteEndEpoch,
		CreatedAtEpoch:     uc.Epochs.Epoch(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	tally := entities.VoteTally{ProposalID: proposalID, UpdatedAt: now}
	if err := uc.Proposals.CreateProposal(ctx, proposal, tally); err != nil {
		return entities.Proposal{}, err
	}
	if err := uc.appendProposalEvent(ctx, "proposal.created", proposal, nil); err != nil {
		return entities.Proposal{}, err
	}
	logger.Info("proposal created",
		"event", "proposal_created",
		"module", "governance/proposal-service",
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"org_id", proposal.OrgID,
		"proposer", proposal.Proposer,
	)
	return proposal, nil
}

// Activate opens the proposal for voting. Proposer or organization owner only.
func (uc ProposalUseCase) Activate(ctx context.Context, proposalID, caller string) (entities.Proposal, error) {
	proposal, err := uc.getOwned(ctx, proposalID, caller)
	if err != nil {
		return entities.Proposal{}, err
	}
	if proposal.Status != entities.StatusDraft {
		return entities.Proposal{}, domainerrors.ErrInvalidStatus
	}
	return uc.transition(ctx, proposal, entities.StatusActive, "proposal.activated", nil)
}

// CastVote records an immutable weighted vote and updates the tally in the
// same atomic write.
func (uc ProposalUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.VoteRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	proposalID := strings.TrimSpace(cmd.ProposalID)
	voter := strings.TrimSpace(cmd.Voter)
	if proposalID == "" || voter == "" {
		return entities.VoteRecord{}, domainerrors.ErrInvalidProposalInput
	}
	switch cmd.Kind {
	case entities.VoteKindYes, entities.VoteKindNo, entities.VoteKindAbstain:
	default:
		return entities.VoteRecord{}, domainerrors.ErrInvalidVoteKind
	}

	proposal, err := uc.Proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return entities.VoteRecord{}, err
	}
	if proposal.Status != entities.StatusActive {
		return entities.VoteRecord{}, domainerrors.ErrInvalidStatus
	}
	epoch := uc.Epochs.Epoch()
	if epoch < proposal.VoteStartEpoch || epoch >= proposal.VoteEndEpoch {
		return entities.VoteRecord{}, domainerrors.ErrVotingClosed
	}
	if _, found, err := uc.Proposals.GetVote(ctx, proposalID, voter); err != nil {
		return entities.VoteRecord{}, err
	} else if found {
		return entities.VoteRecord{}, domainerrors.ErrVoteExists
	}

	power, err := uc.Power.SpendableVotePower(ctx, proposal.OrgID, voter)
	if err != nil {
		return entities.VoteRecord{}, err
	}
	if power == 0 {
		return entities.VoteRecord{}, domainerrors.ErrZeroVotePower
	}

	tally, err := uc.Proposals.GetTally(ctx, proposalID)
	if err != nil {
		return entities.VoteRecord{}, err
	}
	now := uc.now()
	switch cmd.Kind {
	case entities.VoteKindYes:
		tally.Yes += power
	case entities.VoteKindNo:
		tally.No += power
	case entities.VoteKindAbstain:
		tally.Abstain += power
	}
	tally.TotalVoted += power
	tally.UpdatedAt = now

	vote := entities.VoteRecord{
		ProposalID:  proposalID,
		Voter:       voter,
		Kind:        cmd.Kind,
		Power:       power,
		CastAtEpoch: epoch,
		CreatedAt:   now,
	}
	if err := uc.Proposals.InsertVote(ctx, vote, tally); err != nil {
		return entities.VoteRecord{}, err
	}
	if err := uc.appendProposalEvent(ctx, "proposal.vote_cast", proposal, map[string]any{
		"voter":       vote.Voter,
		"kind":        string(vote.Kind),
		"power":       vote.Power,
		"cast_epoch":  vote.CastAtEpoch,
		"total_voted": tally.TotalVoted,
	}); err != nil {
		return entities.VoteRecord{}, err
	}
	logger.Info("vote cast",
		"event", "proposal_vote_cast",
		"module", "governance/proposal-service",
		"layer", "application",
		"proposal_id", proposalID,
		"voter", voter,
		"kind", string(cmd.Kind),
		"power", power,
	)
	return vote, nil
}

// Finalize evaluates the tally once after the voting window closes. A second
// call always fails because the proposal is no longer ACTIVE.
func (uc ProposalUseCase) Finalize(ctx context.Context, proposalID string) (FinalizeResult, error) {
	proposal, err := uc.Proposals.GetProposal(ctx, strings.TrimSpace(proposalID))
	if err != nil {
		return FinalizeResult{}, err
	}
	if proposal.Status != entities.StatusActive {
		return FinalizeResult{}, domainerrors.ErrInvalidStatus
	}
	if uc.Epochs.Epoch() < proposal.VoteEndEpoch {
		return FinalizeResult{}, domainerrors.ErrVotingOpen
	}

	tally, err := uc.Proposals.GetTally(ctx, proposal.ProposalID)
	if err != nil {
		return FinalizeResult{}, err
	}
	approval := tally.ApprovalPercent()
	outcome := entities.StatusRejected
	if approval >= proposal.MinApprovalPercent {
		outcome = entities.StatusPassed
	}
	updated, err := uc.transition(ctx, proposal, outcome, "proposal.finalized", map[string]any{
		"approval_percent": approval,
		"yes":              tally.Yes,
		"no":               tally.No,
		"abstain":          tally.Abstain,
		"total_voted":      tally.TotalVoted,
	})
	if err != nil {
		return FinalizeResult{}, err
	}
	return FinalizeResult{Proposal: updated, Tally: tally, ApprovalPercent: approval}, nil
}

// Execute marks a passed proposal executed. Payload execution and its failure
// handling belong to the caller.
func (uc ProposalUseCase) Execute(ctx context.Context, proposalID string) (entities.Proposal, error) {
	proposal, err := uc.Proposals.GetProposal(ctx, strings.TrimSpace(proposalID))
	if err != nil {
		return entities.Proposal{}, err
	}
	if proposal.Status != entities.StatusPassed {
		return entities.Proposal{}, domainerrors.ErrInvalidStatus
	}
	return uc.transition(ctx, proposal, entities.StatusExecuted, "proposal.executed", nil)
}

// Cancel is the terminal escape from DRAFT or ACTIVE. Governance outcomes
// (PASSED, REJECTED, EXECUTED) are immutable.
func (uc ProposalUseCase) Cancel(ctx context.Context, proposalID, caller string) (entities.Proposal, error) {
	proposal, err := uc.getOwned(ctx, proposalID, caller)
	if err != nil {
		return entities.Proposal{}, err
	}
	if proposal.Terminal() {
		return entities.Proposal{}, domainerrors.ErrInvalidStatus
	}
	return uc.transition(ctx, proposal, entities.StatusCanceled, "proposal.canceled", nil)
}

func (uc ProposalUseCase) getOwned(ctx context.Context, proposalID, caller string) (entities.Proposal, error) {
	proposal, err := uc.Proposals.GetProposal(ctx, strings.TrimSpace(proposalID))
	if err != nil {
		return entities.Proposal{}, err
	}
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return entities.Proposal{}, domainerrors.ErrUnauthorized
	}
	if strings.EqualFold(caller, proposal.Proposer) {
		return proposal, nil
	}
	org, err := uc.Orgs.Organization(ctx, proposal.OrgID)
	if err != nil {
		return entities.Proposal{}, err
	}
	if !strings.EqualFold(caller, org.Owner) {
		return entities.Proposal{}, domainerrors.ErrUnauthorized
	}
	return proposal, nil
}

func (uc ProposalUseCase) transition(
	ctx context.Context,
	proposal entities.Proposal,
	to entities.Status,
	eventType string,
	extra map[string]any,
) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	from := proposal.Status
	proposal.Status = to
	proposal.UpdatedAt = uc.now()
	if err := uc.Proposals.SaveProposal(ctx, proposal); err != nil {
		return entities.Proposal{}, err
	}
	data := map[string]any{"from_status": string(from)}
	for key, value := range extra {
		data[key] = value
	}
	if err := uc.appendProposalEvent(ctx, eventType, proposal, data); err != nil {
		return entities.Proposal{}, err
	}
	logger.Info("proposal transitioned",
		"event", "proposal_transitioned",
		"module", "governance/proposal-service",
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"from_status", string(from),
		"to_status", string(to),
	)
	return proposal, nil
}

func (uc ProposalUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
