package ports

import (
	"context"
	"time"

	"quorum/contexts/governance/dao-registry/domain/entities"
	"quorum/internal/shared/events"
)

type OrganizationRepository interface {
	// CreateOrganization fails with ErrOrganizationExists on a duplicate id.
	CreateOrganization(ctx context.Context, org entities.Organization) error
	GetOrganization(ctx context.Context, orgID string) (entities.Organization, error)
	SaveOrganization(ctx context.Context, org entities.Organization) error
	ListOrganizations(ctx context.Context) ([]entities.Organization, error)
}

type EpochSource interface {
	Epoch() uint64
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope events.Envelope) error
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}
