package httpadapter

import (
	"context"
	"log/slog"

	"quorum/contexts/governance/power-ledger/application/commands"
	"quorum/contexts/governance/power-ledger/application/queries"
	"quorum/contexts/governance/power-ledger/domain/entities"
	httptransport "quorum/contexts/governance/power-ledger/transport/http"
)

type Handler struct {
	Powers  commands.PowerUseCase
	Queries queries.PowerQueries
	Logger  *slog.Logger
}

func (h Handler) UpdateTokenPowerHandler(
	ctx context.Context,
	orgID string,
	req httptransport.UpdateTokenPowerRequest,
) (httptransport.PowerResponse, error) {
	record, err := h.Powers.UpdateTokenPower(ctx, orgID, req.Account, req.Balance)
	if err != nil {
		return httptransport.PowerResponse{}, err
	}
	return toPowerResponse(record), nil
}

func (h Handler) RefreshCurrencyPowerHandler(
	ctx context.Context,
	orgID string,
	req httptransport.RefreshCurrencyPowerRequest,
) (httptransport.PowerResponse, error) {
	record, err := h.Powers.RefreshCurrencyPower(ctx, orgID, req.Account)
	if err != nil {
		return httptransport.PowerResponse{}, err
	}
	return toPowerResponse(record), nil
}

func (h Handler) GetPowerHandler(ctx context.Context, orgID, account string) (httptransport.PowerResponse, error) {
	record, err := h.Queries.GetPowerRecord(ctx, orgID, account)
	if err != nil {
		return httptransport.PowerResponse{}, err
	}
	return toPowerResponse(record), nil
}

func (h Handler) DelegateHandler(
	ctx context.Context,
	orgID string,
	delegator string,
	req httptransport.DelegateRequest,
) (httptransport.DelegationResponse, error) {
	delegation, err := h.Powers.Delegate(ctx, commands.DelegateCommand{
		OrgID:          orgID,
		Delegator:      delegator,
		Delegate:       req.Delegate,
		ExpiresAtEpoch: req.ExpiresAtEpoch,
	})
	if err != nil {
		return httptransport.DelegationResponse{}, err
	}
	return toDelegationResponse(delegation), nil
}

func (h Handler) RevokeHandler(ctx context.Context, orgID, delegator string) (httptransport.RevokeResponse, error) {
	amount, err := h.Powers.Revoke(ctx, orgID, delegator)
	if err != nil {
		return httptransport.RevokeResponse{}, err
	}
	return httptransport.RevokeResponse{ReclaimedAmount: amount}, nil
}

func (h Handler) ListDelegationsHandler(ctx context.Context, orgID string) (httptransport.DelegationListResponse, error) {
	delegations, err := h.Queries.ListDelegations(ctx, orgID)
	if err != nil {
		return httptransport.DelegationListResponse{}, err
	}
	items := make([]httptransport.DelegationResponse, 0, len(delegations))
	for _, delegation := range delegations {
		items = append(items, toDelegationResponse(delegation))
	}
	return httptransport.DelegationListResponse{Items: items}, nil
}

func toPowerResponse(record entities.PowerRecord) httptransport.PowerResponse {
	return httptransport.PowerResponse{
		OrgID:             record.OrgID,
		Account:           record.Account,
		TokenPower:        record.TokenPower,
		CurrencyPower:     record.CurrencyPower,
		ReceivedDelegated: record.ReceivedDelegated,
		DelegateTarget:    record.DelegateTarget,
		EffectivePower:    record.EffectivePower(),
		UpdatedAtEpoch:    record.UpdatedAtEpoch,
	}
}

func toDelegationResponse(delegation entities.Delegation) httptransport.DelegationResponse {
	return httptransport.DelegationResponse{
		OrgID:          delegation.OrgID,
		Delegator:      delegation.Delegator,
		Delegate:       delegation.Delegate,
		Amount:         delegation.Amount,
		ExpiresAtEpoch: delegation.ExpiresAtEpoch,
		GrantedAtEpoch: delegation.GrantedAtEpoch,
	}
}
