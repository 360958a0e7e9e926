package ports

import (
	"context"
	"time"

	"quorum/contexts/governance/power-ledger/domain/entities"
	"quorum/internal/shared/events"
)

type PowerRepository interface {
	GetPower(ctx context.Context, orgID, account string) (entities.PowerRecord, bool, error)
	SavePower(ctx context.Context, record entities.PowerRecord) error
	ListPowerByOrg(ctx context.Context, orgID string) ([]entities.PowerRecord, error)

	GetDelegation(ctx context.Context, orgID, delegator string) (entities.Delegation, bool, error)
	ListDelegationsByOrg(ctx context.Context, orgID string) ([]entities.Delegation, error)

	// ApplyDelegation persists the delegation together with the updated
	// delegator and delegate records in one atomic write. Fails with
	// ErrDelegationExists when the delegator already holds an active grant.
	ApplyDelegation(ctx context.Context, delegation entities.Delegation, delegator, delegate entities.PowerRecord) error

	// RemoveDelegation deletes the delegation and persists both adjusted
	// records in one atomic write. Fails with ErrDelegationNotFound when no
	// grant exists.
	RemoveDelegation(ctx context.Context, orgID, delegatorID string, delegator, delegate entities.PowerRecord) error
}

// BalanceOracle reads the delegator-side native currency balance from the
// external asset service.
type BalanceOracle interface {
	NativeBalance(ctx context.Context, account string) (uint64, error)
}

// EpochSource reads the host-supplied logical clock.
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
