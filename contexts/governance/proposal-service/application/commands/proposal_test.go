package commands_test

import (
	"context"
	"errors"
	"testing"

	proposalservice "quorum/contexts/governance/proposal-service"
	"quorum/contexts/governance/proposal-service/application/commands"
	"quorum/contexts/governance/proposal-service/domain/entities"
	domainerrors "quorum/contexts/governance/proposal-service/domain/errors"
	"quorum/contexts/governance/proposal-service/ports"
)

func newTestModule(t *testing.T) proposalservice.Module {
	t.Helper()
	module := proposalservice.NewInMemoryModule(nil)
	module.Store.SetOrganization(ports.OrgProjection{OrgID: "org-1", Owner: "dana", Active: true})
	return module
}

func createActiveProposal(t *testing.T, module proposalservice.Module, minApproval uint64) entities.Proposal {
	t.Helper()
	ctx := context.Background()
	module.Store.SetEpoch(10)
	proposal, err := module.Commands.CreateProposal(ctx, commands.CreateProposalCommand{
		Title:              "fund the node operators",
		OrgID:              "org-1",
		Proposer:           "alice",
		MinApprovalPercent: minApproval,
		VoteStartEpoch:     10,
		VoteEndEpoch:       20,
	})
	if err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}
	if proposal.Status != entities.StatusDraft {
		t.Fatalf("expected draft status, got %s", proposal.Status)
	}
	if _, err := module.Commands.Activate(ctx, proposal.ProposalID, "alice"); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	return proposal
}

func TestCreateProposalValidation(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	cases := []commands.CreateProposalCommand{
		{Title: "", OrgID: "org-1", Proposer: "alice", VoteStartEpoch: 1, VoteEndEpoch: 2},
		{Title: "x", OrgID: "org-1", Proposer: "alice", VoteStartEpoch: 5, VoteEndEpoch: 4},
		{Title: "x", OrgID: "org-1", Proposer: "alice", MinApprovalPercent: 101, VoteStartEpoch: 1, VoteEndEpoch: 2},
	}
	for _, cmd := range cases {
		if _, err := module.Commands.CreateProposal(ctx, cmd); !errors.Is(err, domainerrors.ErrInvalidProposalInput) {
			t.Fatalf("expected invalid input for %+v, got %v", cmd, err)
		}
	}

	if _, err := module.Commands.CreateProposal(ctx, commands.CreateProposalCommand{
		Title: "x", OrgID: "org-missing", Proposer: "alice", VoteStartEpoch: 1, VoteEndEpoch: 2,
	}); !errors.Is(err, domainerrors.ErrOrganizationNotFound) {
		t.Fatalf("expected organization not found, got %v", err)
	}

	module.Store.SetOrganization(ports.OrgProjection{OrgID: "org-2", Owner: "dana", Active: false})
	if _, err := module.Commands.CreateProposal(ctx, commands.CreateProposalCommand{
		Title: "x", OrgID: "org-2", Proposer: "alice", VoteStartEpoch: 1, VoteEndEpoch: 2,
	}); !errors.Is(err, domainerrors.ErrOrganizationInactive) {
		t.Fatalf("expected inactive organization, got %v", err)
	}
}

func TestCreateProposalDuplicateID(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	cmd := commands.CreateProposalCommand{
		ProposalID: "prop-1", Title: "x", OrgID: "org-1", Proposer: "alice",
		VoteStartEpoch: 1, VoteEndEpoch: 2,
	}
	if _, err := module.Commands.CreateProposal(ctx, cmd); err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}
	if _, err := module.Commands.CreateProposal(ctx, cmd); !errors.Is(err, domainerrors.ErrProposalExists) {
		t.Fatalf("expected duplicate proposal error, got %v", err)
	}
}

func TestActivateAuthorization(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	proposal, err := module.Commands.CreateProposal(ctx, commands.CreateProposalCommand{
		Title: "x", OrgID: "org-1", Proposer: "alice", VoteStartEpoch: 1, VoteEndEpoch: 2,
	})
	if err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}

	if _, err := module.Commands.Activate(ctx, proposal.ProposalID, "mallory"); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	// Org owner may activate even without being the proposer.
	activated, err := module.Commands.Activate(ctx, proposal.ProposalID, "dana")
	if err != nil {
		t.Fatalf("owner activate failed: %v", err)
	}
	if activated.Status != entities.StatusActive {
		t.Fatalf("expected active status, got %s", activated.Status)
	}
	if _, err := module.Commands.Activate(ctx, proposal.ProposalID, "alice"); !errors.Is(err, domainerrors.ErrInvalidStatus) {
		t.Fatalf("expected invalid status on re-activate, got %v", err)
	}
}

func TestCastVoteRejectsDuplicatesAndKeepsTallyExact(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	proposal := createActiveProposal(t, module, 50)
	module.Store.SetVotePower("org-1", "bob", 30)
	module.Store.SetVotePower("org-1", "carol", 20)

	vote, err := module.Commands.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposal.ProposalID, Voter: "bob", Kind: entities.VoteKindYes,
	})
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if vote.Power != 30 {
		t.Fatalf("expected vote weight 30, got %d", vote.Power)
	}

	_, err = module.Commands.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposal.ProposalID, Voter: "bob", Kind: entities.VoteKindNo,
	})
	if !errors.Is(err, domainerrors.ErrVoteExists) {
		t.Fatalf("expected duplicate vote error, got %v", err)
	}

	if _, err := module.Commands.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposal.ProposalID, Voter: "carol", Kind: entities.VoteKindAbstain,
	}); err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}

	view, err := module.Queries.GetTally(ctx, proposal.ProposalID)
	if err != nil {
		t.Fatalf("get tally failed: %v", err)
	}
	if view.Tally.Yes != 30 || view.Tally.No != 0 || view.Tally.Abstain != 20 || view.Tally.TotalVoted != 50 {
		t.Fatalf("unexpected tally: %+v", view.Tally)
	}

	// Tally must equal the sum of stored vote records.
	votes, err := module.Queries.ListVotes(ctx, proposal.ProposalID)
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	var sum uint64
	for _, record := range votes {
		sum += record.Power
	}
	if sum != view.Tally.TotalVoted {
		t.Fatalf("tally drifted from vote records: sum=%d total=%d", sum, view.Tally.TotalVoted)
	}
}

func TestCastVotePreconditions(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	proposal := createActiveProposal(t, module, 50)

	if _, err := module.Commands.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposal.ProposalID, Voter: "bob", Kind: "maybe",
	}); !errors.Is(err, domainerrors.ErrInvalidVoteKind) {
		t.Fatalf("expected invalid vote kind, got %v", err)
	}

	// Zero spendable power cannot vote.
	if _, err := module.Commands.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposal.ProposalID, Voter: "bob", Kind: entities.VoteKindYes,
	}); !errors.Is(err, domainerrors.ErrZeroVotePower) {
		t.Fatalf("expected zero vote power, got %v", err)
	}

	module.Store.SetVotePower("org-1", "bob", 10)

	// Before the window opens and once it closes, casting fails the same way.
	module.Store.SetEpoch(9)
	if _, err := module.Commands.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposal.ProposalID, Voter: "bob", Kind: entities.VoteKindYes,
	}); !errors.Is(err, domainerrors.ErrVotingClosed) {
		t.Fatalf("expected voting closed before start, got %v", err)
	}
	module.Store.SetEpoch(20)
	if _, err := module.Commands.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposal.ProposalID, Voter: "bob", Kind: entities.VoteKindYes,
	}); !errors.Is(err, domainerrors.ErrVotingClosed) {
		t.Fatalf("expected voting closed at end epoch, got %v", err)
	}

	// The last epoch inside the window still counts.
	module.Store.SetEpoch(19)
	if _, err := module.Commands.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposal.ProposalID, Voter: "bob", Kind: entities.VoteKindYes,
	}); err != nil {
		t.Fatalf("cast vote at final epoch failed: %v", err)
	}
}

func TestFinalizeComparesDecisivePowerOnly(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	proposal := createActiveProposal(t, module, 60)
	module.Store.SetVotePower("org-1", "bob", 51)
	module.Store.SetVotePower("org-1", "carol", 49)
	module.Store.SetVotePower("org-1", "erin", 1000)

	if _, err := module.Commands.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposal.ProposalID, Voter: "bob", Kind: entities.VoteKindYes,
	}); err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if _, err := module.Commands.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposal.ProposalID, Voter: "carol", Kind: entities.VoteKindNo,
	}); err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	// Abstentions never move the approval ratio.
	if _, err := module.Commands.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposal.ProposalID, Voter: "erin", Kind: entities.VoteKindAbstain,
	}); err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}

	if _, err := module.Commands.Finalize(ctx, proposal.ProposalID); !errors.Is(err, domainerrors.ErrVotingOpen) {
		t.Fatalf("expected voting open before end epoch, got %v", err)
	}

	module.Store.SetEpoch(20)
	result, err := module.Commands.Finalize(ctx, proposal.ProposalID)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.ApprovalPercent != 51 {
		t.Fatalf("expected approval 51, got %d", result.ApprovalPercent)
	}
	if result.Proposal.Status != entities.StatusRejected {
		t.Fatalf("expected rejected at 51%% vs 60%% threshold, got %s", result.Proposal.Status)
	}
	if _, err := module.Commands.Finalize(ctx, proposal.ProposalID); !errors.Is(err, domainerrors.ErrInvalidStatus) {
		t.Fatalf("expected invalid status on second finalize, got %v", err)
	}
}

func TestFinalizePassesAtThreshold(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	proposal := createActiveProposal(t, module, 60)
	module.Store.SetVotePower("org-1", "bob", 60)
	module.Store.SetVotePower("org-1", "carol", 40)

	if _, err := module.Commands.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposal.ProposalID, Voter: "bob", Kind: entities.VoteKindYes,
	}); err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if _, err := module.Commands.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposal.ProposalID, Voter: "carol", Kind: entities.VoteKindNo,
	}); err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}

	module.Store.SetEpoch(20)
	result, err := module.Commands.Finalize(ctx, proposal.ProposalID)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.Proposal.Status != entities.StatusPassed {
		t.Fatalf("expected passed at exactly the threshold, got %s", result.Proposal.Status)
	}

	executed, err := module.Commands.Execute(ctx, proposal.ProposalID)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if executed.Status != entities.StatusExecuted {
		t.Fatalf("expected executed status, got %s", executed.Status)
	}
	if _, err := module.Commands.Execute(ctx, proposal.ProposalID); !errors.Is(err, domainerrors.ErrInvalidStatus) {
		t.Fatalf("expected invalid status on second execute, got %v", err)
	}
	if _, err := module.Commands.Cancel(ctx, proposal.ProposalID, "dana"); !errors.Is(err, domainerrors.ErrInvalidStatus) {
		t.Fatalf("expected invalid status canceling executed proposal, got %v", err)
	}
}

func TestFinalizeWithZeroDecisivePower(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	proposal := createActiveProposal(t, module, 0)

	module.Store.SetEpoch(20)
	result, err := module.Commands.Finalize(ctx, proposal.ProposalID)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	// Zero decisive power means zero approval; a zero threshold still passes.
	if result.ApprovalPercent != 0 {
		t.Fatalf("expected approval 0, got %d", result.ApprovalPercent)
	}
	if result.Proposal.Status != entities.StatusPassed {
		t.Fatalf("expected passed with zero threshold, got %s", result.Proposal.Status)
	}
}

func TestCancelOnlyBeforeSettlement(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	proposal := createActiveProposal(t, module, 50)

	if _, err := module.Commands.Cancel(ctx, proposal.ProposalID, "mallory"); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized cancel, got %v", err)
	}
	canceled, err := module.Commands.Cancel(ctx, proposal.ProposalID, "dana")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != entities.StatusCanceled {
		t.Fatalf("expected canceled status, got %s", canceled.Status)
	}

	// Settled proposals are immutable.
	module.Store.SetEpoch(20)
	if _, err := module.Commands.Finalize(ctx, proposal.ProposalID); !errors.Is(err, domainerrors.ErrInvalidStatus) {
		t.Fatalf("expected invalid status finalizing canceled proposal, got %v", err)
	}
	if _, err := module.Commands.Cancel(ctx, proposal.ProposalID, "dana"); !errors.Is(err, domainerrors.ErrInvalidStatus) {
		t.Fatalf("expected invalid status on second cancel, got %v", err)
	}
}
