package queries

import (
	"context"
	"strings"

	"quorum/contexts/governance/power-ledger/domain/entities"
	domainerrors "quorum/contexts/governance/power-ledger/domain/errors"
	"quorum/contexts/governance/power-ledger/ports"
)

type PowerQueries struct {
	Powers ports.PowerRepository
}

// EffectivePower is the read-side weight view. Unlike the command path it
// never triggers the lazy expiry sweep.
func (q PowerQueries) EffectivePower(ctx context.Context, orgID, account string) (uint64, error) {
	record, found, err := q.Powers.GetPower(ctx, strings.TrimSpace(orgID), strings.TrimSpace(account))
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return record.EffectivePower(), nil
}

func (q PowerQueries) GetPowerRecord(ctx context.Context, orgID, account string) (entities.PowerRecord, error) {
	record, found, err := q.Powers.GetPower(ctx, strings.TrimSpace(orgID), strings.TrimSpace(account))
	if err != nil {
		return entities.PowerRecord{}, err
	}
	if !found {
		return entities.PowerRecord{}, domainerrors.ErrPowerRecordNotFound
	}
	return record, nil
}

func (q PowerQueries) ListDelegations(ctx context.Context, orgID string) ([]entities.Delegation, error) {
	return q.Powers.ListDelegationsByOrg(ctx, strings.TrimSpace(orgID))
}

// OrgPowerTotals sums received delegated power and active snapshot amounts;
// the two sides must always match.
type OrgPowerTotals struct {
	ReceivedDelegated uint64
	ActiveSnapshots   uint64
}

func (q PowerQueries) OrgTotals(ctx context.Context, orgID string) (OrgPowerTotals, error) {
	records, err := q.Powers.ListPowerByOrg(ctx, strings.TrimSpace(orgID))
	if err != nil {
		return OrgPowerTotals{}, err
	}
	delegations, err := q.Powers.ListDelegationsByOrg(ctx, strings.TrimSpace(orgID))
	if err != nil {
		return OrgPowerTotals{}, err
	}
	totals := OrgPowerTotals{}
	for _, record := range records {
		totals.ReceivedDelegated += record.ReceivedDelegated
	}
	for _, delegation := range delegations {
		totals.ActiveSnapshots += delegation.Amount
	}
	return totals, nil
}
