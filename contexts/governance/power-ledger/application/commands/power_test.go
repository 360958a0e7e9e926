package commands_test

import (
	"context"
	"errors"
	"testing"

	powerledger "quorum/contexts/governance/power-ledger"
	"quorum/contexts/governance/power-ledger/application/commands"
	domainerrors "quorum/contexts/governance/power-ledger/domain/errors"
)

func TestDelegateFreezesSnapshotAndZeroesEffectivePower(t *testing.T) {
	module := powerledger.NewInMemoryModule(nil)
	ctx := context.Background()

	if _, err := module.Commands.UpdateTokenPower(ctx, "org-1", "alice", 50); err != nil {
		t.Fatalf("update token power failed: %v", err)
	}

	delegation, err := module.Commands.Delegate(ctx, commands.DelegateCommand{
		OrgID:     "org-1",
		Delegator: "alice",
		Delegate:  "bob",
	})
	if err != nil {
		t.Fatalf("delegate failed: %v", err)
	}
	if delegation.Amount != 50 {
		t.Fatalf("expected snapshot amount 50, got %d", delegation.Amount)
	}

	alicePower, err := module.Commands.SpendableVotePower(ctx, "org-1", "alice")
	if err != nil {
		t.Fatalf("spendable power failed: %v", err)
	}
	if alicePower != 0 {
		t.Fatalf("delegated account must spend 0, got %d", alicePower)
	}
	bobPower, err := module.Commands.SpendableVotePower(ctx, "org-1", "bob")
	if err != nil {
		t.Fatalf("spendable power failed: %v", err)
	}
	if bobPower != 50 {
		t.Fatalf("expected delegate power 50, got %d", bobPower)
	}

	// A later balance change never adjusts the standing snapshot.
	if _, err := module.Commands.UpdateTokenPower(ctx, "org-1", "alice", 80); err != nil {
		t.Fatalf("update token power failed: %v", err)
	}
	stillDelegated, found, err := module.Store.GetDelegation(ctx, "org-1", "alice")
	if err != nil || !found {
		t.Fatalf("expected active delegation, found=%v err=%v", found, err)
	}
	if stillDelegated.Amount != 50 {
		t.Fatalf("snapshot must stay 50 after rebalance, got %d", stillDelegated.Amount)
	}
	alicePower, _ = module.Commands.SpendableVotePower(ctx, "org-1", "alice")
	if alicePower != 0 {
		t.Fatalf("delegated account must still spend 0, got %d", alicePower)
	}
}

func TestDelegatePreconditions(t *testing.T) {
	module := powerledger.NewInMemoryModule(nil)
	ctx := context.Background()

	_, err := module.Commands.Delegate(ctx, commands.DelegateCommand{
		OrgID: "org-1", Delegator: "alice", Delegate: "alice",
	})
	if !errors.Is(err, domainerrors.ErrSelfDelegation) {
		t.Fatalf("expected self delegation error, got %v", err)
	}

	_, err = module.Commands.Delegate(ctx, commands.DelegateCommand{
		OrgID: "org-1", Delegator: "alice", Delegate: "bob",
	})
	if !errors.Is(err, domainerrors.ErrNoSpendablePower) {
		t.Fatalf("expected no spendable power error, got %v", err)
	}

	if _, err := module.Commands.UpdateTokenPower(ctx, "org-1", "alice", 10); err != nil {
		t.Fatalf("update token power failed: %v", err)
	}
	if _, err := module.Commands.Delegate(ctx, commands.DelegateCommand{
		OrgID: "org-1", Delegator: "alice", Delegate: "bob",
	}); err != nil {
		t.Fatalf("delegate failed: %v", err)
	}
	_, err = module.Commands.Delegate(ctx, commands.DelegateCommand{
		OrgID: "org-1", Delegator: "alice", Delegate: "carol",
	})
	if !errors.Is(err, domainerrors.ErrDelegationExists) {
		t.Fatalf("expected duplicate delegation error, got %v", err)
	}
}

func TestRevokeRestoresConservation(t *testing.T) {
	module := powerledger.NewInMemoryModule(nil)
	ctx := context.Background()

	accounts := map[string]uint64{"alice": 30, "bob": 20, "carol": 40}
	for account, balance := range accounts {
		if _, err := module.Commands.UpdateTokenPower(ctx, "org-1", account, balance); err != nil {
			t.Fatalf("update token power failed: %v", err)
		}
	}
	if _, err := module.Commands.Delegate(ctx, commands.DelegateCommand{
		OrgID: "org-1", Delegator: "alice", Delegate: "carol",
	}); err != nil {
		t.Fatalf("delegate failed: %v", err)
	}
	if _, err := module.Commands.Delegate(ctx, commands.DelegateCommand{
		OrgID: "org-1", Delegator: "bob", Delegate: "carol",
	}); err != nil {
		t.Fatalf("delegate failed: %v", err)
	}

	totals, err := module.Queries.OrgTotals(ctx, "org-1")
	if err != nil {
		t.Fatalf("org totals failed: %v", err)
	}
	if totals.ReceivedDelegated != totals.ActiveSnapshots || totals.ReceivedDelegated != 50 {
		t.Fatalf("conservation violated: received=%d snapshots=%d", totals.ReceivedDelegated, totals.ActiveSnapshots)
	}

	reclaimed, err := module.Commands.Revoke(ctx, "org-1", "alice")
	if err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if reclaimed != 30 {
		t.Fatalf("expected reclaimed 30, got %d", reclaimed)
	}
	totals, _ = module.Queries.OrgTotals(ctx, "org-1")
	if totals.ReceivedDelegated != totals.ActiveSnapshots || totals.ReceivedDelegated != 20 {
		t.Fatalf("conservation violated after revoke: received=%d snapshots=%d", totals.ReceivedDelegated, totals.ActiveSnapshots)
	}

	alicePower, _ := module.Commands.SpendableVotePower(ctx, "org-1", "alice")
	if alicePower != 30 {
		t.Fatalf("expected alice power 30 after revoke, got %d", alicePower)
	}
	if _, err := module.Commands.Revoke(ctx, "org-1", "alice"); !errors.Is(err, domainerrors.ErrDelegationNotFound) {
		t.Fatalf("expected delegation not found, got %v", err)
	}
}

func TestLazyExpirySweep(t *testing.T) {
	module := powerledger.NewInMemoryModule(nil)
	ctx := context.Background()
	module.Store.SetEpoch(10)

	if _, err := module.Commands.UpdateTokenPower(ctx, "org-1", "alice", 25); err != nil {
		t.Fatalf("update token power failed: %v", err)
	}
	expiry := uint64(100)
	if _, err := module.Commands.Delegate(ctx, commands.DelegateCommand{
		OrgID: "org-1", Delegator: "alice", Delegate: "bob", ExpiresAtEpoch: &expiry,
	}); err != nil {
		t.Fatalf("delegate failed: %v", err)
	}

	// Before expiry the sweep is a no-op.
	module.Store.SetEpoch(99)
	reclaimed, err := module.Commands.CheckExpiry(ctx, "org-1", "alice")
	if err != nil {
		t.Fatalf("check expiry failed: %v", err)
	}
	if reclaimed != 0 {
		t.Fatalf("expected no-op before expiry, reclaimed %d", reclaimed)
	}
	bobPower, _ := module.Commands.SpendableVotePower(ctx, "org-1", "bob")
	if bobPower != 25 {
		t.Fatalf("expected bob power 25 before expiry, got %d", bobPower)
	}

	module.Store.SetEpoch(100)
	reclaimed, err = module.Commands.CheckExpiry(ctx, "org-1", "alice")
	if err != nil {
		t.Fatalf("check expiry failed: %v", err)
	}
	if reclaimed != 25 {
		t.Fatalf("expected reclaimed 25 at expiry, got %d", reclaimed)
	}
	if _, found, _ := module.Store.GetDelegation(ctx, "org-1", "alice"); found {
		t.Fatalf("expected delegation removed after expiry")
	}
	bobPower, _ = module.Commands.SpendableVotePower(ctx, "org-1", "bob")
	if bobPower != 0 {
		t.Fatalf("expected bob power 0 after expiry, got %d", bobPower)
	}
	alicePower, _ := module.Commands.SpendableVotePower(ctx, "org-1", "alice")
	if alicePower != 25 {
		t.Fatalf("expected alice power 25 back after expiry, got %d", alicePower)
	}
}

func TestRefreshCurrencyPowerUsesOracle(t *testing.T) {
	module := powerledger.NewInMemoryModule(nil)
	ctx := context.Background()
	module.Store.SetNativeBalance("alice", 75)

	record, err := module.Commands.RefreshCurrencyPower(ctx, "org-1", "alice")
	if err != nil {
		t.Fatalf("refresh currency power failed: %v", err)
	}
	if record.CurrencyPower != 75 {
		t.Fatalf("expected currency power 75, got %d", record.CurrencyPower)
	}
	power, _ := module.Commands.SpendableVotePower(ctx, "org-1", "alice")
	if power != 75 {
		t.Fatalf("expected effective power 75, got %d", power)
	}
}
