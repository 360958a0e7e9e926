package httpadapter

import (
	"context"
	"log/slog"

	"quorum/contexts/treasury/funding-escrow/application/commands"
	"quorum/contexts/treasury/funding-escrow/application/queries"
	"quorum/contexts/treasury/funding-escrow/domain/entities"
	httptransport "quorum/contexts/treasury/funding-escrow/transport/http"
)

type Handler struct {
	Escrow  commands.EscrowUseCase
	Queries queries.EscrowQueries
	Logger  *slog.Logger
}

func (h Handler) InitializeHandler(
	ctx context.Context,
	proposalID string,
	req httptransport.InitializeFundingRequest,
) (httptransport.FundingResponse, error) {
	record, err := h.Escrow.Initialize(ctx, commands.InitializeCommand{
		ProposalID:       proposalID,
		OrgID:            req.OrgID,
		Beneficiary:      req.Beneficiary,
		Fundable:         req.Fundable,
		WindowStartEpoch: req.WindowStartEpoch,
		WindowEndEpoch:   req.WindowEndEpoch,
		MinGoal:          req.MinGoal,
		TargetGoal:       req.TargetGoal,
	})
	if err != nil {
		return httptransport.FundingResponse{}, err
	}
	return toFundingResponse(record, entities.WithdrawalRecord{}), nil
}

func (h Handler) GetFundingHandler(ctx context.Context, proposalID string) (httptransport.FundingResponse, error) {
	view, err := h.Queries.GetFunding(ctx, proposalID)
	if err != nil {
		return httptransport.FundingResponse{}, err
	}
	return toFundingResponse(view.Record, view.Withdrawal), nil
}

func (h Handler) ContributeHandler(
	ctx context.Context,
	proposalID, funder string,
	req httptransport.ContributeRequest,
) (httptransport.ContributionResponse, error) {
	contribution, err := h.Escrow.Contribute(ctx, commands.ContributeCommand{
		ProposalID: proposalID,
		Funder:     funder,
		Amount:     req.Amount,
		Asset:      req.Asset,
	})
	if err != nil {
		return httptransport.ContributionResponse{}, err
	}
	return toContributionResponse(contribution), nil
}

func (h Handler) GetContributionHandler(ctx context.Context, proposalID, funder string) (httptransport.ContributionResponse, error) {
	contribution, err := h.Queries.GetContribution(ctx, proposalID, funder)
	if err != nil {
		return httptransport.ContributionResponse{}, err
	}
	return toContributionResponse(contribution), nil
}

func (h Handler) ListContributionsHandler(ctx context.Context, proposalID string) (httptransport.ContributionListResponse, error) {
	contributions, err := h.Queries.ListContributions(ctx, proposalID)
	if err != nil {
		return httptransport.ContributionListResponse{}, err
	}
	items := make([]httptransport.ContributionResponse, 0, len(contributions))
	for _, contribution := range contributions {
		items = append(items, toContributionResponse(contribution))
	}
	return httptransport.ContributionListResponse{Items: items}, nil
}

func (h Handler) WithdrawHandler(
	ctx context.Context,
	proposalID, caller string,
	req httptransport.WithdrawRequest,
) (httptransport.WithdrawalResponse, error) {
	withdrawal, err := h.Escrow.Withdraw(ctx, proposalID, caller, req.Amount)
	if err != nil {
		return httptransport.WithdrawalResponse{}, err
	}
	return toWithdrawalResponse(withdrawal), nil
}

func (h Handler) WithdrawTokenHandler(
	ctx context.Context,
	proposalID, caller string,
	req httptransport.WithdrawRequest,
) (httptransport.WithdrawalResponse, error) {
	withdrawal, err := h.Escrow.WithdrawToken(ctx, proposalID, caller, req.Amount)
	if err != nil {
		return httptransport.WithdrawalResponse{}, err
	}
	return toWithdrawalResponse(withdrawal), nil
}

func (h Handler) RefundHandler(ctx context.Context, proposalID, funder string) (httptransport.RefundResponse, error) {
	result, err := h.Escrow.Refund(ctx, proposalID, funder)
	if err != nil {
		return httptransport.RefundResponse{}, err
	}
	return httptransport.RefundResponse{
		ProposalID:     proposalID,
		Funder:         funder,
		NativeRefunded: result.NativeRefunded,
		TokenAsset:     result.TokenAsset,
		TokenRefunded:  result.TokenRefunded,
	}, nil
}

func toFundingResponse(record entities.FundingRecord, withdrawal entities.WithdrawalRecord) httptransport.FundingResponse {
	return httptransport.FundingResponse{
		ProposalID:       record.ProposalID,
		OrgID:            record.OrgID,
		Beneficiary:      record.Beneficiary,
		Fundable:         record.Fundable,
		WindowStartEpoch: record.WindowStartEpoch,
		WindowEndEpoch:   record.WindowEndEpoch,
		MinGoal:          record.MinGoal,
		TargetGoal:       record.TargetGoal,
		TotalRaised:      record.TotalRaised,
		NativeRaised:     record.NativeRaised,
		TokenAsset:       record.TokenAsset,
		TokenRaised:      record.TokenRaised,
		FunderCount:      record.FunderCount,
		AvailableNative:  record.NativeRaised - withdrawal.WithdrawnNative,
		AvailableToken:   record.TokenRaised - withdrawal.WithdrawnToken,
	}
}

func toContributionResponse(contribution entities.Contribution) httptransport.ContributionResponse {
	return httptransport.ContributionResponse{
		ProposalID:   contribution.ProposalID,
		Funder:       contribution.Funder,
		NativeAmount: contribution.NativeAmount,
		TokenAmount:  contribution.TokenAmount,
		FirstEpoch:   contribution.FirstEpoch,
		LastEpoch:    contribution.LastEpoch,
		Count:        contribution.Count,
	}
}

func toWithdrawalResponse(withdrawal entities.WithdrawalRecord) httptransport.WithdrawalResponse {
	return httptransport.WithdrawalResponse{
		ProposalID:      withdrawal.ProposalID,
		WithdrawnNative: withdrawal.WithdrawnNative,
		WithdrawnToken:  withdrawal.WithdrawnToken,
		LastEpoch:       withdrawal.LastEpoch,
		Count:           withdrawal.Count,
	}
}
