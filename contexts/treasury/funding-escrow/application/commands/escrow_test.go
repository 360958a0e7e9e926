package commands_test

import (
	"context"
	"errors"
	"testing"

	fundingescrow "quorum/contexts/treasury/funding-escrow"
	"quorum/contexts/treasury/funding-escrow/adapters/memory"
	"quorum/contexts/treasury/funding-escrow/application/commands"
	domainerrors "quorum/contexts/treasury/funding-escrow/domain/errors"
	"quorum/internal/platform/assets"
)

// failingAssetGate rejects transfers of one asset while passing the rest
// through to the ledger.
type failingAssetGate struct {
	*assets.Ledger
	failAsset string
}

func (g *failingAssetGate) Transfer(ctx context.Context, asset, from, to string, amount uint64) error {
	if g.failAsset != "" && asset == g.failAsset {
		return errors.New("asset service unavailable")
	}
	return g.Ledger.Transfer(ctx, asset, from, to, amount)
}

func newFundedModule(t *testing.T, minGoal, targetGoal uint64) fundingescrow.Module {
	t.Helper()
	module := fundingescrow.NewInMemoryModule(nil)
	module.Store.SetEpoch(10)
	_, err := module.Commands.Initialize(context.Background(), commands.InitializeCommand{
		ProposalID:       "prop-1",
		Beneficiary:      "beneficiary",
		Fundable:         true,
		WindowStartEpoch: 10,
		WindowEndEpoch:   20,
		MinGoal:          minGoal,
		TargetGoal:       targetGoal,
	})
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	return module
}

func TestInitializeValidation(t *testing.T) {
	module := fundingescrow.NewInMemoryModule(nil)
	ctx := context.Background()

	cases := []commands.InitializeCommand{
		{ProposalID: "p", Beneficiary: "b", MinGoal: 0, TargetGoal: 10, WindowStartEpoch: 1, WindowEndEpoch: 2},
		{ProposalID: "p", Beneficiary: "b", MinGoal: 10, TargetGoal: 5, WindowStartEpoch: 1, WindowEndEpoch: 2},
		{ProposalID: "p", Beneficiary: "b", MinGoal: 5, TargetGoal: 10, WindowStartEpoch: 3, WindowEndEpoch: 2},
		{ProposalID: "", Beneficiary: "b", MinGoal: 5, TargetGoal: 10, WindowStartEpoch: 1, WindowEndEpoch: 2},
	}
	for _, cmd := range cases {
		if _, err := module.Commands.Initialize(ctx, cmd); !errors.Is(err, domainerrors.ErrInvalidFundingInput) {
			t.Fatalf("expected invalid input for %+v, got %v", cmd, err)
		}
	}

	valid := commands.InitializeCommand{
		ProposalID: "p", Beneficiary: "b", Fundable: true,
		MinGoal: 5, TargetGoal: 10, WindowStartEpoch: 1, WindowEndEpoch: 2,
	}
	if _, err := module.Commands.Initialize(ctx, valid); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if _, err := module.Commands.Initialize(ctx, valid); !errors.Is(err, domainerrors.ErrFundingExists) {
		t.Fatalf("expected double-initialization error, got %v", err)
	}
}

func TestContributeMovesAssetsBeforeRecording(t *testing.T) {
	module := newFundedModule(t, 100, 200)
	ctx := context.Background()
	module.Ledger.SetBalance("", "alice", 50)

	contribution, err := module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "alice", Amount: 40,
	})
	if err != nil {
		t.Fatalf("contribute failed: %v", err)
	}
	if contribution.NativeAmount != 40 || contribution.Count != 1 {
		t.Fatalf("unexpected contribution: %+v", contribution)
	}
	escrowBalance, _ := module.Ledger.BalanceOf(ctx, "", "prop-1")
	if escrowBalance != 40 {
		t.Fatalf("expected escrow balance 40, got %d", escrowBalance)
	}

	view, err := module.Queries.GetFunding(ctx, "prop-1")
	if err != nil {
		t.Fatalf("get funding failed: %v", err)
	}
	if view.Record.TotalRaised != 40 || view.Record.FunderCount != 1 {
		t.Fatalf("unexpected funding record: %+v", view.Record)
	}

	// Overdraw fails at the asset service and must leave zero mutation.
	_, err = module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "alice", Amount: 40,
	})
	if !errors.Is(err, domainerrors.ErrTransferFailed) {
		t.Fatalf("expected transfer failure, got %v", err)
	}
	view, _ = module.Queries.GetFunding(ctx, "prop-1")
	if view.Record.TotalRaised != 40 {
		t.Fatalf("failed transfer must not change raised total, got %d", view.Record.TotalRaised)
	}
	contribution, err = module.Queries.GetContribution(ctx, "prop-1", "alice")
	if err != nil {
		t.Fatalf("get contribution failed: %v", err)
	}
	if contribution.NativeAmount != 40 || contribution.Count != 1 {
		t.Fatalf("failed transfer must not change the contribution, got %+v", contribution)
	}
}

func TestContributeRejectedTransferAbortsWholeAction(t *testing.T) {
	module := newFundedModule(t, 100, 200)
	ctx := context.Background()
	module.Ledger.SetBalance("", "alice", 100)
	module.Ledger.FailNextTransfer()

	_, err := module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "alice", Amount: 40,
	})
	if !errors.Is(err, domainerrors.ErrTransferFailed) {
		t.Fatalf("expected transfer failure, got %v", err)
	}
	view, _ := module.Queries.GetFunding(ctx, "prop-1")
	if view.Record.TotalRaised != 0 || view.Record.FunderCount != 0 {
		t.Fatalf("aborted contribution left state behind: %+v", view.Record)
	}
	if _, err := module.Queries.GetContribution(ctx, "prop-1", "alice"); !errors.Is(err, domainerrors.ErrContributionNotFound) {
		t.Fatalf("expected no contribution record, got %v", err)
	}
}

func TestContributePreconditions(t *testing.T) {
	module := newFundedModule(t, 100, 200)
	ctx := context.Background()
	module.Ledger.SetBalance("", "alice", 1000)
	module.Ledger.SetBalance("gov-token", "alice", 1000)
	module.Ledger.SetBalance("other-token", "alice", 1000)

	if _, err := module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "alice", Amount: 0,
	}); !errors.Is(err, domainerrors.ErrInvalidFundingInput) {
		t.Fatalf("expected invalid input for zero amount, got %v", err)
	}

	module.Store.SetEpoch(21)
	if _, err := module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "alice", Amount: 10,
	}); !errors.Is(err, domainerrors.ErrWindowClosed) {
		t.Fatalf("expected window closed, got %v", err)
	}
	module.Store.SetEpoch(15)

	// First token contribution fixes the alternate asset.
	if _, err := module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "alice", Amount: 10, Asset: "gov-token",
	}); err != nil {
		t.Fatalf("token contribute failed: %v", err)
	}
	if _, err := module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "alice", Amount: 10, Asset: "other-token",
	}); !errors.Is(err, domainerrors.ErrAssetMismatch) {
		t.Fatalf("expected asset mismatch, got %v", err)
	}

	// Reaching the target closes contributions.
	if _, err := module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "alice", Amount: 190,
	}); err != nil {
		t.Fatalf("contribute failed: %v", err)
	}
	if _, err := module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "alice", Amount: 1,
	}); !errors.Is(err, domainerrors.ErrGoalReached) {
		t.Fatalf("expected goal reached, got %v", err)
	}
}

func TestWithdrawAfterSuccessfulRound(t *testing.T) {
	module := newFundedModule(t, 100, 200)
	ctx := context.Background()
	module.Ledger.SetBalance("", "alice", 120)

	if _, err := module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "alice", Amount: 120,
	}); err != nil {
		t.Fatalf("contribute failed: %v", err)
	}

	// Window still open: no withdrawals yet.
	if _, err := module.Commands.Withdraw(ctx, "prop-1", "beneficiary", 50); !errors.Is(err, domainerrors.ErrWindowOpen) {
		t.Fatalf("expected window open error, got %v", err)
	}

	module.Store.SetEpoch(21)
	if _, err := module.Commands.Withdraw(ctx, "prop-1", "mallory", 50); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	withdrawal, err := module.Commands.Withdraw(ctx, "prop-1", "beneficiary", 50)
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if withdrawal.WithdrawnNative != 50 {
		t.Fatalf("expected withdrawn 50, got %d", withdrawal.WithdrawnNative)
	}
	beneficiaryBalance, _ := module.Ledger.BalanceOf(ctx, "", "beneficiary")
	if beneficiaryBalance != 50 {
		t.Fatalf("expected beneficiary balance 50, got %d", beneficiaryBalance)
	}

	// Funding conservation: withdrawn + available always equals raised.
	view, _ := module.Queries.GetFunding(ctx, "prop-1")
	escrowBalance, _ := module.Ledger.BalanceOf(ctx, "", "prop-1")
	if view.Withdrawal.WithdrawnNative+escrowBalance != view.Record.NativeRaised {
		t.Fatalf("conservation violated: withdrawn=%d escrow=%d raised=%d",
			view.Withdrawal.WithdrawnNative, escrowBalance, view.Record.NativeRaised)
	}

	if _, err := module.Commands.Withdraw(ctx, "prop-1", "beneficiary", 71); !errors.Is(err, domainerrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if _, err := module.Commands.Withdraw(ctx, "prop-1", "beneficiary", 70); err != nil {
		t.Fatalf("final withdraw failed: %v", err)
	}
	if _, err := module.Commands.Refund(ctx, "prop-1", "alice"); !errors.Is(err, domainerrors.ErrGoalReached) {
		t.Fatalf("successful round must not refund, got %v", err)
	}
}

func TestFailedRoundRefundsBothAssetsExactlyOnce(t *testing.T) {
	// min_goal 100, target 200, raised 80: withdrawal locked, refunds open.
	module := newFundedModule(t, 100, 200)
	ctx := context.Background()
	module.Ledger.SetBalance("", "alice", 40)
	module.Ledger.SetBalance("", "bob", 15)
	module.Ledger.SetBalance("gov-token", "bob", 25)

	if _, err := module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "alice", Amount: 40,
	}); err != nil {
		t.Fatalf("contribute failed: %v", err)
	}
	if _, err := module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "bob", Amount: 15,
	}); err != nil {
		t.Fatalf("contribute failed: %v", err)
	}
	if _, err := module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "bob", Amount: 25, Asset: "gov-token",
	}); err != nil {
		t.Fatalf("token contribute failed: %v", err)
	}

	// Refund is locked while the window is open.
	if _, err := module.Commands.Refund(ctx, "prop-1", "alice"); !errors.Is(err, domainerrors.ErrWindowOpen) {
		t.Fatalf("expected window open error, got %v", err)
	}

	module.Store.SetEpoch(21)
	if _, err := module.Commands.Withdraw(ctx, "prop-1", "beneficiary", 10); !errors.Is(err, domainerrors.ErrGoalNotReached) {
		t.Fatalf("expected goal not reached, got %v", err)
	}

	result, err := module.Commands.Refund(ctx, "prop-1", "bob")
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if result.NativeRefunded != 15 || result.TokenRefunded != 25 || result.TokenAsset != "gov-token" {
		t.Fatalf("unexpected refund result: %+v", result)
	}
	bobNative, _ := module.Ledger.BalanceOf(ctx, "", "bob")
	bobToken, _ := module.Ledger.BalanceOf(ctx, "gov-token", "bob")
	if bobNative != 15 || bobToken != 25 {
		t.Fatalf("refund did not restore balances: native=%d token=%d", bobNative, bobToken)
	}

	// The deleted contribution cannot be refunded twice.
	if _, err := module.Commands.Refund(ctx, "prop-1", "bob"); !errors.Is(err, domainerrors.ErrContributionNotFound) {
		t.Fatalf("expected contribution gone after refund, got %v", err)
	}

	if _, err := module.Commands.Refund(ctx, "prop-1", "alice"); err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	escrowNative, _ := module.Ledger.BalanceOf(ctx, "", "prop-1")
	escrowToken, _ := module.Ledger.BalanceOf(ctx, "gov-token", "prop-1")
	if escrowNative != 0 || escrowToken != 0 {
		t.Fatalf("escrow not emptied after full refund: native=%d token=%d", escrowNative, escrowToken)
	}
}

func TestRefundFailedTokenLegRetriesOnlyTheToken(t *testing.T) {
	store := memory.NewStore()
	gate := &failingAssetGate{Ledger: assets.NewLedger()}
	module := fundingescrow.NewModule(fundingescrow.Dependencies{
		Fundings: store,
		Assets:   gate,
		Outbox:   store,
		Epochs:   store,
		Clock:    store,
		IDGen:    store,
	})
	ctx := context.Background()

	store.SetEpoch(10)
	if _, err := module.Commands.Initialize(ctx, commands.InitializeCommand{
		ProposalID:       "prop-1",
		Beneficiary:      "beneficiary",
		Fundable:         true,
		WindowStartEpoch: 10,
		WindowEndEpoch:   20,
		MinGoal:          100,
		TargetGoal:       200,
	}); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	gate.SetBalance("", "bob", 15)
	gate.SetBalance("gov-token", "bob", 25)
	if _, err := module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "bob", Amount: 15,
	}); err != nil {
		t.Fatalf("contribute failed: %v", err)
	}
	if _, err := module.Commands.Contribute(ctx, commands.ContributeCommand{
		ProposalID: "prop-1", Funder: "bob", Amount: 25, Asset: "gov-token",
	}); err != nil {
		t.Fatalf("token contribute failed: %v", err)
	}

	// Failed round; the token leg of the refund is rejected after the native
	// leg has already settled.
	store.SetEpoch(21)
	gate.failAsset = "gov-token"
	if _, err := module.Commands.Refund(ctx, "prop-1", "bob"); !errors.Is(err, domainerrors.ErrTransferFailed) {
		t.Fatalf("expected transfer failure, got %v", err)
	}
	bobNative, _ := gate.BalanceOf(ctx, "", "bob")
	if bobNative != 15 {
		t.Fatalf("expected the native leg settled once, got balance %d", bobNative)
	}
	contribution, err := module.Queries.GetContribution(ctx, "prop-1", "bob")
	if err != nil {
		t.Fatalf("get contribution failed: %v", err)
	}
	if contribution.NativeAmount != 0 || contribution.TokenAmount != 25 {
		t.Fatalf("expected only the token outstanding, got %+v", contribution)
	}

	// Retry after the asset service recovers: the settled native leg must not
	// pay a second time.
	gate.failAsset = ""
	result, err := module.Commands.Refund(ctx, "prop-1", "bob")
	if err != nil {
		t.Fatalf("refund retry failed: %v", err)
	}
	if result.NativeRefunded != 0 || result.TokenRefunded != 25 {
		t.Fatalf("retry must refund only the outstanding token, got %+v", result)
	}
	bobNative, _ = gate.BalanceOf(ctx, "", "bob")
	bobToken, _ := gate.BalanceOf(ctx, "gov-token", "bob")
	if bobNative != 15 || bobToken != 25 {
		t.Fatalf("unexpected balances after retry: native=%d token=%d", bobNative, bobToken)
	}
	escrowNative, _ := gate.BalanceOf(ctx, "", "prop-1")
	escrowToken, _ := gate.BalanceOf(ctx, "gov-token", "prop-1")
	if escrowNative != 0 || escrowToken != 0 {
		t.Fatalf("escrow not emptied: native=%d token=%d", escrowNative, escrowToken)
	}
	if _, err := module.Commands.Refund(ctx, "prop-1", "bob"); !errors.Is(err, domainerrors.ErrContributionNotFound) {
		t.Fatalf("expected contribution gone after refund, got %v", err)
	}
}
