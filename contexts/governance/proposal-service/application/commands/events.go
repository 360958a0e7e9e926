package commands

import (
	"context"
	"encoding/json"

	"quorum/contexts/governance/proposal-service/domain/entities"
	"quorum/internal/shared/events"
)

func (uc ProposalUseCase) appendProposalEvent(
	ctx context.Context,
	eventType string,
	proposal entities.Proposal,
	extra map[string]any,
) error {
	if uc.Outbox == nil {
		return nil
	}
	payload := map[string]any{
		"proposal_id": proposal.ProposalID,
		"org_id":      proposal.OrgID,
		"proposer":    proposal.Proposer,
		"status":      string(proposal.Status),
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
		SourceModule:     "proposal-service",
		OccurredAt:       uc.now(),
		Epoch:            uc.Epochs.Epoch(),
		SchemaVersion:    1,
		PartitionKeyPath: "proposal_id",
		PartitionKey:     proposal.ProposalID,
		Data:             data,
	})
}
