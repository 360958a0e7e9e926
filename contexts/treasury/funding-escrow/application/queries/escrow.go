package queries

import (
	"context"
	"strings"

	"quorum/contexts/treasury/funding-escrow/domain/entities"
	domainerrors "quorum/contexts/treasury/funding-escrow/domain/errors"
	"quorum/contexts/treasury/funding-escrow/ports"
)

// FundingView pairs the funding record with the per-asset amounts still held
// in escrow, so withdrawn + available always reconciles with raised.
type FundingView struct {
	Record          entities.FundingRecord
	Withdrawal      entities.WithdrawalRecord
	AvailableNative uint64
	AvailableToken  uint64
}

type EscrowQueries struct {
	Fundings ports.FundingRepository
}

func (q EscrowQueries) GetFunding(ctx context.Context, proposalID string) (FundingView, error) {
	proposalID = strings.TrimSpace(proposalID)
	if proposalID == "" {
		return FundingView{}, domainerrors.ErrInvalidFundingInput
	}
	record, err := q.Fundings.GetFunding(ctx, proposalID)
	if err != nil {
		return FundingView{}, err
	}
	withdrawal, found, err := q.Fundings.GetWithdrawal(ctx, proposalID)
	if err != nil {
		return FundingView{}, err
	}
	if !found {
		withdrawal = entities.WithdrawalRecord{ProposalID: proposalID}
	}
	return FundingView{
		Record:          record,
		Withdrawal:      withdrawal,
		AvailableNative: record.NativeRaised - withdrawal.WithdrawnNative,
		AvailableToken:  record.TokenRaised - withdrawal.WithdrawnToken,
	}, nil
}

func (q EscrowQueries) GetContribution(ctx context.Context, proposalID, funder string) (entities.Contribution, error) {
	proposalID = strings.TrimSpace(proposalID)
	funder = strings.TrimSpace(funder)
	if proposalID == "" || funder == "" {
		return entities.Contribution{}, domainerrors.ErrInvalidFundingInput
	}
	contribution, found, err := q.Fundings.GetContribution(ctx, proposalID, funder)
	if err != nil {
		return entities.Contribution{}, err
	}
	if !found {
		return entities.Contribution{}, domainerrors.ErrContributionNotFound
	}
	return contribution, nil
}

func (q EscrowQueries) ListContributions(ctx context.Context, proposalID string) ([]entities.Contribution, error) {
	proposalID = strings.TrimSpace(proposalID)
	if proposalID == "" {
		return nil, domainerrors.ErrInvalidFundingInput
	}
	if _, err := q.Fundings.GetFunding(ctx, proposalID); err != nil {
		return nil, err
	}
	return q.Fundings.ListContributionsByProposal(ctx, proposalID)
}
