package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/governance/power-ledger/application"
	"quorum/contexts/governance/power-ledger/domain/entities"
	domainerrors "quorum/contexts/governance/power-ledger/domain/errors"
	"quorum/contexts/governance/power-ledger/ports"
)

// DelegateCommand grants the delegator's own power to another account.
type DelegateCommand struct {
	OrgID          string
	Delegator      string
	Delegate       string
	ExpiresAtEpoch *uint64
}

// PowerUseCase owns all power-ledger mutations: balance refreshes, delegation
// grant/revoke, and the lazy expiry sweep. Every precondition is checked
// before any record write so a failing call never leaves partial state.
type PowerUseCase struct {
	Powers ports.PowerRepository
	Oracle ports.BalanceOracle
	Outbox ports.OutboxWriter
	Epochs ports.EpochSource
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// UpdateTokenPower overwrites the token-derived component of the account's
// own power. Standing delegation snapshots are intentionally untouched.
func (uc PowerUseCase) UpdateTokenPower(ctx context.Context, orgID, account string, balance uint64) (entities.PowerRecord, error) {
	orgID, account = strings.TrimSpace(orgID), strings.TrimSpace(account)
	if orgID == "" || account == "" {
		return entities.PowerRecord{}, domainerrors.ErrInvalidPowerInput
	}
	record, err := uc.upsertOwnPower(ctx, orgID, account, func(rec *entities.PowerRecord) {
		rec.TokenPower = balance
	})
	if err != nil {
		return entities.PowerRecord{}, err
	}
	if err := uc.appendPowerEvent(ctx, "power.token_updated", record, map[string]any{
		"token_power": record.TokenPower,
	}); err != nil {
		return entities.PowerRecord{}, err
	}
	return record, nil
}

// RefreshCurrencyPower reads the account's native currency balance from the
// oracle and overwrites the currency-derived component.
func (uc PowerUseCase) RefreshCurrencyPower(ctx context.Context, orgID, account string) (entities.PowerRecord, error) {
	orgID, account = strings.TrimSpace(orgID), strings.TrimSpace(account)
	if orgID == "" || account == "" {
		return entities.PowerRecord{}, domainerrors.ErrInvalidPowerInput
	}
	balance, err := uc.Oracle.NativeBalance(ctx, account)
	if err != nil {
		return entities.PowerRecord{}, fmt.Errorf("%w: %s", domainerrors.ErrOracleUnavailable, err.Error())
	}
	record, err := uc.upsertOwnPower(ctx, orgID, account, func(rec *entities.PowerRecord) {
		rec.CurrencyPower = balance
	})
	if err != nil {
		return entities.PowerRecord{}, err
	}
	if err := uc.appendPowerEvent(ctx, "power.currency_refreshed", record, map[string]any{
		"currency_power": record.CurrencyPower,
	}); err != nil {
		return entities.PowerRecord{}, err
	}
	return record, nil
}

// Delegate snapshots the delegator's own power and grants it to the delegate.
// One active delegation per (org, delegator); re-delegation requires an
// explicit revoke first.
func (uc PowerUseCase) Delegate(ctx context.Context, cmd DelegateCommand) (entities.Delegation, error) {
	logger := application.ResolveLogger(uc.Logger)
	orgID := strings.TrimSpace(cmd.OrgID)
	delegator := strings.TrimSpace(cmd.Delegator)
	delegate := strings.TrimSpace(cmd.Delegate)
	if orgID == "" || delegator == "" || delegate == "" {
		return entities.Delegation{}, domainerrors.ErrInvalidPowerInput
	}
	if strings.EqualFold(delegator, delegate) {
		return entities.Delegation{}, domainerrors.ErrSelfDelegation
	}

	// Sweep an expired grant first so a stale delegation does not block a
	// fresh one.
	if _, err := uc.CheckExpiry(ctx, orgID, delegator); err != nil {
		return entities.Delegation{}, err
	}
	if _, found, err := uc.Powers.GetDelegation(ctx, orgID, delegator); err != nil {
		return entities.Delegation{}, err
	} else if found {
		return entities.Delegation{}, domainerrors.ErrDelegationExists
	}

	delegatorRec, found, err := uc.Powers.GetPower(ctx, orgID, delegator)
	if err != nil {
		return entities.Delegation{}, err
	}
	if !found || delegatorRec.OwnPower() == 0 {
		return entities.Delegation{}, domainerrors.ErrNoSpendablePower
	}

	delegateRec, found, err := uc.Powers.GetPower(ctx, orgID, delegate)
	if err != nil {
		return entities.Delegation{}, err
	}
	now := uc.now()
	epoch := uc.Epochs.Epoch()
	if !found {
		delegateRec = entities.PowerRecord{OrgID: orgID, Account: delegate, CreatedAt: now}
	}

	amount := delegatorRec.OwnPower()
	delegation := entities.Delegation{
		OrgID:          orgID,
		Delegator:      delegator,
		Delegate:       delegate,
		Amount:         amount,
		ExpiresAtEpoch: cmd.ExpiresAtEpoch,
		GrantedAtEpoch: epoch,
		CreatedAt:      now,
	}
	delegatorRec.DelegateTarget = delegate
	delegatorRec.UpdatedAtEpoch = epoch
	delegatorRec.UpdatedAt = now
	delegateRec.ReceivedDelegated += amount
	delegateRec.UpdatedAtEpoch = epoch
	delegateRec.UpdatedAt = now

	if err := uc.Powers.ApplyDelegation(ctx, delegation, delegatorRec, delegateRec); err != nil {
		return entities.Delegation{}, err
	}
	if err := uc.appendDelegationEvent(ctx, "power.delegated", delegation); err != nil {
		return entities.Delegation{}, err
	}
	logger.Info("power delegated",
		"event", "power_delegated",
		"module", "governance/power-ledger",
		"layer", "application",
		"org_id", orgID,
		"delegator", delegator,
		"delegate", delegate,
		"amount", amount,
	)
	return delegation, nil
}

// Revoke dissolves the delegator's active grant and returns the reclaimed
// snapshot amount.
func (uc PowerUseCase) Revoke(ctx context.Context, orgID, delegator string) (uint64, error) {
	orgID, delegator = strings.TrimSpace(orgID), strings.TrimSpace(delegator)
	if orgID == "" || delegator == "" {
		return 0, domainerrors.ErrInvalidPowerInput
	}
	delegation, found, err := uc.Powers.GetDelegation(ctx, orgID, delegator)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, domainerrors.ErrDelegationNotFound
	}
	if err := uc.dissolve(ctx, delegation, "power.delegation_revoked"); err != nil {
		return 0, err
	}
	return delegation.Amount, nil
}

// CheckExpiry is the lazy expiry sweep: when the grant has an expiry and the
// clock has passed it, the grant is dissolved exactly as a revoke and the
// reclaimed amount returned. Expiry is never enforced proactively; every
// power-consuming action calls this first.
func (uc PowerUseCase) CheckExpiry(ctx context.Context, orgID, delegator string) (uint64, error) {
	delegation, found, err := uc.Powers.GetDelegation(ctx, strings.TrimSpace(orgID), strings.TrimSpace(delegator))
	if err != nil {
		return 0, err
	}
	if !found || !delegation.Expired(uc.Epochs.Epoch()) {
		return 0, nil
	}
	if err := uc.dissolve(ctx, delegation, "power.delegation_expired"); err != nil {
		return 0, err
	}
	return delegation.Amount, nil
}

// SpendableVotePower is the sole vote-weight source for the proposal
// lifecycle. It runs the voter's lazy expiry sweep, then computes effective
// power at call time; the value is never cached.
func (uc PowerUseCase) SpendableVotePower(ctx context.Context, orgID, account string) (uint64, error) {
	if _, err := uc.CheckExpiry(ctx, orgID, account); err != nil {
		return 0, err
	}
	record, found, err := uc.Powers.GetPower(ctx, strings.TrimSpace(orgID), strings.TrimSpace(account))
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return record.EffectivePower(), nil
}

func (uc PowerUseCase) dissolve(ctx context.Context, delegation entities.Delegation, eventType string) error {
	logger := application.ResolveLogger(uc.Logger)
	delegatorRec, found, err := uc.Powers.GetPower(ctx, delegation.OrgID, delegation.Delegator)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrPowerRecordNotFound
	}
	delegateRec, found, err := uc.Powers.GetPower(ctx, delegation.OrgID, delegation.Delegate)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrPowerRecordNotFound
	}
	if delegateRec.ReceivedDelegated < delegation.Amount {
		return domainerrors.ErrConflict
	}

	now := uc.now()
	epoch := uc.Epochs.Epoch()
	delegatorRec.DelegateTarget = ""
	delegatorRec.UpdatedAtEpoch = epoch
	delegatorRec.UpdatedAt = now
	delegateRec.ReceivedDelegated -= delegation.Amount
	delegateRec.UpdatedAtEpoch = epoch
	delegateRec.UpdatedAt = now

	if err := uc.Powers.RemoveDelegation(ctx, delegation.OrgID, delegation.Delegator, delegatorRec, delegateRec); err != nil {
		return err
	}
	if err := uc.appendDelegationEvent(ctx, eventType, delegation); err != nil {
		return err
	}
	logger.Info("delegation dissolved",
		"event", "power_delegation_dissolved",
		"module", "governance/power-ledger",
		"layer", "application",
		"org_id", delegation.OrgID,
		"delegator", delegation.Delegator,
		"delegate", delegation.Delegate,
		"amount", delegation.Amount,
		"cause", eventType,
	)
	return nil
}

func (uc PowerUseCase) upsertOwnPower(
	ctx context.Context,
	orgID, account string,
	mutate func(*entities.PowerRecord),
) (entities.PowerRecord, error) {
	record, found, err := uc.Powers.GetPower(ctx, orgID, account)
	if err != nil {
		return entities.PowerRecord{}, err
	}
	now := uc.now()
	if !found {
		record = entities.PowerRecord{OrgID: orgID, Account: account, CreatedAt: now}
	}
	mutate(&record)
	record.UpdatedAtEpoch = uc.Epochs.Epoch()
	record.UpdatedAt = now
	if err := uc.Powers.SavePower(ctx, record); err != nil {
		return entities.PowerRecord{}, err
	}
	return record, nil
}

func (uc PowerUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
