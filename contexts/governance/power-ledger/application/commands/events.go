package commands

import (
	"context"
	"encoding/json"

	"quorum/contexts/governance/power-ledger/domain/entities"
	"quorum/internal/shared/events"
)

// Audit events are partitioned by (org, account-or-delegator) so org-scoped
// consumers see a stable order.

func (uc PowerUseCase) appendPowerEvent(
	ctx context.Context,
	eventType string,
	record entities.PowerRecord,
	extra map[string]any,
) error {
	data := map[string]any{
		"org_id":           record.OrgID,
		"account":          record.Account,
		"token_power":      record.TokenPower,
		"currency_power":   record.CurrencyPower,
		"received_power":   record.ReceivedDelegated,
		"delegate_target":  record.DelegateTarget,
		"updated_at_epoch": record.UpdatedAtEpoch,
	}
	for key, value := range extra {
		data[key] = value
	}
	return uc.appendEvent(ctx, eventType, record.OrgID+"/"+record.Account, data)
}

func (uc PowerUseCase) appendDelegationEvent(
	ctx context.Context,
	eventType string,
	delegation entities.Delegation,
) error {
	data := map[string]any{
		"org_id":           delegation.OrgID,
		"delegator":        delegation.Delegator,
		"delegate":         delegation.Delegate,
		"amount":           delegation.Amount,
		"granted_at_epoch": delegation.GrantedAtEpoch,
	}
	if delegation.ExpiresAtEpoch != nil {
		data["expires_at_epoch"] = *delegation.ExpiresAtEpoch
	}
	return uc.appendEvent(ctx, eventType, delegation.OrgID+"/"+delegation.Delegator, data)
}

func (uc PowerUseCase) appendEvent(ctx context.Context, eventType, partitionKey string, data map[string]any) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, events.Envelope{
		EventID:          eventID,
		EventType:        eventType,
		SourceModule:     "power-ledger",
		OccurredAt:       uc.now(),
		Epoch:            uc.Epochs.Epoch(),
		SchemaVersion:    1,
		PartitionKeyPath: "org_id",
		PartitionKey:     partitionKey,
		Data:             payload,
	})
}
