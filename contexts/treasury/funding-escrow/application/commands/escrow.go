package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/treasury/funding-escrow/application"
	"quorum/contexts/treasury/funding-escrow/domain/entities"
	domainerrors "quorum/contexts/treasury/funding-escrow/domain/errors"
	"quorum/contexts/treasury/funding-escrow/ports"
)

type InitializeCommand struct {
	ProposalID       string
	OrgID            string
	Beneficiary      string
	Fundable         bool
	WindowStartEpoch uint64
	WindowEndEpoch   uint64
	MinGoal          uint64
	TargetGoal       uint64
}

type ContributeCommand struct {
	ProposalID string
	Funder     string
	Amount     uint64
	// Asset "" contributes native currency; anything else is the proposal's
	// single alternate asset.
	Asset string
}

// RefundResult reports the assets returned to the funder.
type RefundResult struct {
	NativeRefunded uint64
	TokenAsset     string
	TokenRefunded  uint64
}

// EscrowUseCase holds contributed assets against a proposal's funding goals.
// Every external transfer runs before the matching record write, so a rejected
// transfer always leaves escrow state untouched.
type EscrowUseCase struct {
	Fundings ports.FundingRepository
	Assets   ports.AssetGateway
	Outbox   ports.OutboxWriter
	Epochs   ports.EpochSource
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc EscrowUseCase) Initialize(ctx context.Context, cmd InitializeCommand) (entities.FundingRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	proposalID := strings.TrimSpace(cmd.ProposalID)
	beneficiary := strings.TrimSpace(cmd.Beneficiary)
	if proposalID == "" || beneficiary == "" {
		return entities.FundingRecord{}, domainerrors.ErrInvalidFundingInput
	}
	if cmd.MinGoal == 0 || cmd.TargetGoal < cmd.MinGoal {
		return entities.FundingRecord{}, domainerrors.ErrInvalidFundingInput
	}
	if cmd.WindowEndEpoch < cmd.WindowStartEpoch {
		return entities.FundingRecord{}, domainerrors.ErrInvalidFundingInput
	}

	now := uc.now()
	record := entities.FundingRecord{
		ProposalID:       proposalID,
		OrgID:            strings.TrimSpace(cmd.OrgID),
		Beneficiary:      beneficiary,
		Fundable:         cmd.Fundable,
		WindowStartEpoch: cmd.WindowStartEpoch,
		WindowEndEpoch:   cmd.WindowEndEpoch,
		MinGoal:          cmd.MinGoal,
		TargetGoal:       cmd.TargetGoal,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.Fundings.CreateFunding(ctx, record); err != nil {
		return entities.FundingRecord{}, err
	}
	if err := uc.appendEscrowEvent(ctx, "escrow.initialized", record, map[string]any{
		"min_goal":    record.MinGoal,
		"target_goal": record.TargetGoal,
	}); err != nil {
		return entities.FundingRecord{}, err
	}
	logger.Info("escrow initialized",
		"event", "escrow_initialized",
		"module", "treasury/funding-escrow",
		"layer", "application",
		"proposal_id", record.ProposalID,
		"beneficiary", record.Beneficiary,
	)
	return record, nil
}

func (uc EscrowUseCase) Contribute(ctx context.Context, cmd ContributeCommand) (entities.Contribution, error) {
	logger := application.ResolveLogger(uc.Logger)
	proposalID := strings.TrimSpace(cmd.ProposalID)
	funder := strings.TrimSpace(cmd.Funder)
	if proposalID == "" || funder == "" || cmd.Amount == 0 {
		return entities.Contribution{}, domainerrors.ErrInvalidFundingInput
	}

	record, err := uc.Fundings.GetFunding(ctx, proposalID)
	if err != nil {
		return entities.Contribution{}, err
	}
	if !record.Fundable {
		return entities.Contribution{}, domainerrors.ErrNotFundable
	}
	epoch := uc.Epochs.Epoch()
	if !record.WindowOpen(epoch) {
		return entities.Contribution{}, domainerrors.ErrWindowClosed
	}
	if record.TargetReached() {
		return entities.Contribution{}, domainerrors.ErrGoalReached
	}
	asset := strings.TrimSpace(cmd.Asset)
	if asset != "" {
		if record.TokenAsset != "" && record.TokenAsset != asset {
			return entities.Contribution{}, domainerrors.ErrAssetMismatch
		}
	}

	contribution, found, err := uc.Fundings.GetContribution(ctx, proposalID, funder)
	if err != nil {
		return entities.Contribution{}, err
	}

	// Escrow custody lives on the asset service under the proposal's handle.
	if err := uc.Assets.Transfer(ctx, asset, funder, proposalID, cmd.Amount); err != nil {
		return entities.Contribution{}, fmt.Errorf("%w: %w", domainerrors.ErrTransferFailed, err)
	}

	now := uc.now()
	if !found {
		contribution = entities.Contribution{
			ProposalID: proposalID,
			Funder:     funder,
			FirstEpoch: epoch,
			CreatedAt:  now,
		}
		record.FunderCount++
	}
	if asset == "" {
		contribution.NativeAmount += cmd.Amount
		record.NativeRaised += cmd.Amount
	} else {
		record.TokenAsset = asset
		contribution.TokenAmount += cmd.Amount
		record.TokenRaised += cmd.Amount
	}
	contribution.LastEpoch = epoch
	contribution.Count++
	contribution.UpdatedAt = now
	record.TotalRaised += cmd.Amount
	record.UpdatedAt = now

	if err := uc.Fundings.ApplyContribution(ctx, record, contribution); err != nil {
		return entities.Contribution{}, err
	}
	if err := uc.appendEscrowEvent(ctx, "escrow.contributed", record, map[string]any{
		"funder":       funder,
		"asset":        asset,
		"amount":       cmd.Amount,
		"total_raised": record.TotalRaised,
	}); err != nil {
		return entities.Contribution{}, err
	}
	logger.Info("contribution accepted",
		"event", "escrow_contribution_accepted",
		"module", "treasury/funding-escrow",
		"layer", "application",
		"proposal_id", proposalID,
		"funder", funder,
		"asset", asset,
		"amount", cmd.Amount,
	)
	return contribution, nil
}

// Withdraw pays out native currency to the beneficiary after a successful
// funding round.
func (uc EscrowUseCase) Withdraw(ctx context.Context, proposalID, caller string, amount uint64) (entities.WithdrawalRecord, error) {
	return uc.withdraw(ctx, proposalID, caller, amount, false)
}

// WithdrawToken pays out the alternate asset to the beneficiary.
func (uc EscrowUseCase) WithdrawToken(ctx context.Context, proposalID, caller string, amount uint64) (entities.WithdrawalRecord, error) {
	return uc.withdraw(ctx, proposalID, caller, amount, true)
}

func (uc EscrowUseCase) withdraw(
	ctx context.Context,
	proposalID, caller string,
	amount uint64,
	token bool,
) (entities.WithdrawalRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	proposalID = strings.TrimSpace(proposalID)
	if proposalID == "" || amount == 0 {
		return entities.WithdrawalRecord{}, domainerrors.ErrInvalidFundingInput
	}

	record, err := uc.Fundings.GetFunding(ctx, proposalID)
	if err != nil {
		return entities.WithdrawalRecord{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(caller), record.Beneficiary) {
		return entities.WithdrawalRecord{}, domainerrors.ErrUnauthorized
	}
	epoch := uc.Epochs.Epoch()
	if !record.WindowClosed(epoch) {
		return entities.WithdrawalRecord{}, domainerrors.ErrWindowOpen
	}
	if !record.MinGoalReached() {
		return entities.WithdrawalRecord{}, domainerrors.ErrGoalNotReached
	}

	withdrawal, found, err := uc.Fundings.GetWithdrawal(ctx, proposalID)
	if err != nil {
		return entities.WithdrawalRecord{}, err
	}
	now := uc.now()
	if !found {
		withdrawal = entities.WithdrawalRecord{ProposalID: proposalID, CreatedAt: now}
	}

	asset := ""
	if token {
		asset = record.TokenAsset
		if asset == "" || amount > record.TokenRaised-withdrawal.WithdrawnToken {
			return entities.WithdrawalRecord{}, domainerrors.ErrInsufficientFunds
		}
	} else if amount > record.NativeRaised-withdrawal.WithdrawnNative {
		return entities.WithdrawalRecord{}, domainerrors.ErrInsufficientFunds
	}

	if err := uc.Assets.Transfer(ctx, asset, proposalID, record.Beneficiary, amount); err != nil {
		return entities.WithdrawalRecord{}, fmt.Errorf("%w: %w", domainerrors.ErrTransferFailed, err)
	}

	if token {
		withdrawal.WithdrawnToken += amount
	} else {
		withdrawal.WithdrawnNative += amount
	}
	withdrawal.LastEpoch = epoch
	withdrawal.Count++
	withdrawal.UpdatedAt = now
	if err := uc.Fundings.ApplyWithdrawal(ctx, withdrawal); err != nil {
		return entities.WithdrawalRecord{}, err
	}
	if err := uc.appendEscrowEvent(ctx, "escrow.withdrawn", record, map[string]any{
		"asset":  asset,
		"amount": amount,
	}); err != nil {
		return entities.WithdrawalRecord{}, err
	}
	logger.Info("withdrawal completed",
		"event", "escrow_withdrawal_completed",
		"module", "treasury/funding-escrow",
		"layer", "application",
		"proposal_id", proposalID,
		"asset", asset,
		"amount", amount,
	)
	return withdrawal, nil
}

// Refund returns the funder's full contribution, both tracked assets, after a
// failed round, then deletes the contribution so it can never pay out twice.
func (uc EscrowUseCase) Refund(ctx context.Context, proposalID, funder string) (RefundResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	proposalID = strings.TrimSpace(proposalID)
	funder = strings.TrimSpace(funder)
	if proposalID == "" || funder == "" {
		return RefundResult{}, domainerrors.ErrInvalidFundingInput
	}

	record, err := uc.Fundings.GetFunding(ctx, proposalID)
	if err != nil {
		return RefundResult{}, err
	}
	contribution, found, err := uc.Fundings.GetContribution(ctx, proposalID, funder)
	if err != nil {
		return RefundResult{}, err
	}
	if !found {
		return RefundResult{}, domainerrors.ErrContributionNotFound
	}
	epoch := uc.Epochs.Epoch()
	if !record.WindowClosed(epoch) {
		return RefundResult{}, domainerrors.ErrWindowOpen
	}
	if record.MinGoalReached() {
		return RefundResult{}, domainerrors.ErrGoalReached
	}

	// Each leg is transfer-then-record on its own: the paid component is
	// zeroed on the Contribution before the next transfer runs, so a failure
	// between legs leaves only the outstanding component refundable on retry.
	result := RefundResult{TokenAsset: record.TokenAsset}
	if contribution.NativeAmount > 0 {
		amount := contribution.NativeAmount
		if err := uc.Assets.Transfer(ctx, "", proposalID, funder, amount); err != nil {
			return RefundResult{}, fmt.Errorf("%w: %w", domainerrors.ErrTransferFailed, err)
		}
		contribution.NativeAmount = 0
		contribution.UpdatedAt = uc.now()
		if err := uc.Fundings.ApplyContribution(ctx, record, contribution); err != nil {
			return RefundResult{}, err
		}
		result.NativeRefunded = amount
	}
	if contribution.TokenAmount > 0 {
		amount := contribution.TokenAmount
		if err := uc.Assets.Transfer(ctx, record.TokenAsset, proposalID, funder, amount); err != nil {
			return RefundResult{}, fmt.Errorf("%w: %w", domainerrors.ErrTransferFailed, err)
		}
		result.TokenRefunded = amount
	}

	if err := uc.Fundings.RemoveContribution(ctx, proposalID, funder); err != nil {
		return RefundResult{}, err
	}
	if err := uc.appendEscrowEvent(ctx, "escrow.refunded", record, map[string]any{
		"funder":          funder,
		"native_refunded": result.NativeRefunded,
		"token_asset":     result.TokenAsset,
		"token_refunded":  result.TokenRefunded,
	}); err != nil {
		return RefundResult{}, err
	}
	logger.Info("refund completed",
		"event", "escrow_refund_completed",
		"module", "treasury/funding-escrow",
		"layer", "application",
		"proposal_id", proposalID,
		"funder", funder,
		"native_refunded", result.NativeRefunded,
		"token_refunded", result.TokenRefunded,
	)
	return result, nil
}

func (uc EscrowUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
