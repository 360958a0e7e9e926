package ports

import (
	"context"
	"time"

	"quorum/contexts/treasury/funding-escrow/domain/entities"
	"quorum/internal/shared/events"
)

type FundingRepository interface {
	// CreateFunding persists a new escrow record. Fails with ErrFundingExists
	// when the proposal was already initialized.
	CreateFunding(ctx context.Context, record entities.FundingRecord) error
	GetFunding(ctx context.Context, proposalID string) (entities.FundingRecord, error)

	GetContribution(ctx context.Context, proposalID, funder string) (entities.Contribution, bool, error)
	ListContributionsByProposal(ctx context.Context, proposalID string) ([]entities.Contribution, error)
	GetWithdrawal(ctx context.Context, proposalID string) (entities.WithdrawalRecord, bool, error)

	// ApplyContribution persists the updated funding record and the upserted
	// contribution in one atomic write.
	ApplyContribution(ctx context.Context, record entities.FundingRecord, contribution entities.Contribution) error
	// ApplyWithdrawal upserts the withdrawal record.
	ApplyWithdrawal(ctx context.Context, withdrawal entities.WithdrawalRecord) error
	// RemoveContribution deletes the funder's contribution record. Fails with
	// ErrContributionNotFound when absent.
	RemoveContribution(ctx context.Context, proposalID, funder string) error
}

// AssetGateway is the external asset-transfer capability. Asset "" is the
// native currency. Transfers either move the full amount or fail with no
// effect; the use case writes records only after a successful transfer.
type AssetGateway interface {
	Transfer(ctx context.Context, asset, from, to string, amount uint64) error
	BalanceOf(ctx context.Context, asset, account string) (uint64, error)
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
