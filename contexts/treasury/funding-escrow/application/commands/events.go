package commands

import (
	"context"
	"encoding/json"

	"quorum/contexts/treasury/funding-escrow/domain/entities"
	"quorum/internal/shared/events"
)

func (uc EscrowUseCase) appendEscrowEvent(
	ctx context.Context,
	eventType string,
	record entities.FundingRecord,
	extra map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	payload := map[string]any{
		"proposal_id":  record.ProposalID,
		"org_id":       record.OrgID,
		"beneficiary":  record.Beneficiary,
		"total_raised": record.TotalRaised,
		"funder_count": record.FunderCount,
	}
	for key, value := range extra {
		payload[key] = value
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, events.Envelope{
		EventID:          eventID,
		EventType:        eventType,
		SourceModule:     "funding-escrow",
		OccurredAt:       uc.now(),
		Epoch:            uc.Epochs.Epoch(),
		SchemaVersion:    1,
		PartitionKeyPath: "proposal_id",
		PartitionKey:     record.ProposalID,
		Data:             data,
	})
}
