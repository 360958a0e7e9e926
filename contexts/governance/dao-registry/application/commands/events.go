package commands

import (
	"context"
	"encoding/json"

	"quorum/contexts/governance/dao-registry/domain/entities"
	"quorum/internal/shared/events"
)

func (uc RegistryUseCase) appendOrgEvent(ctx context.Context, eventType string, org entities.Organization) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	data, err := json.Marshal(map[string]any{
		"org_id": org.OrgID,
		"owner":  org.Owner,
		"name":   org.Name,
		"active": org.Active,
	})
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
		SourceModule:     "dao-registry",
		OccurredAt:       uc.now(),
		Epoch:            uc.Epochs.Epoch(),
		SchemaVersion:    1,
		PartitionKeyPath: "org_id",
		PartitionKey:     org.OrgID,
		Data:             data,
	})
}
