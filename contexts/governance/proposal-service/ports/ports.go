package ports

import (
	"context"
	"time"

	"quorum/contexts/governance/proposal-service/domain/entities"
	"quorum/internal/shared/events"
)

type ProposalRepository interface {
	// CreateProposal persists the proposal together with its zeroed tally in
	// one atomic write. Fails with ErrProposalExists on duplicate id.
	CreateProposal(ctx context.Context, proposal entities.Proposal, tally entities.VoteTally) error
	GetProposal(ctx context.Context, proposalID string) (entities.Proposal, error)
	SaveProposal(ctx context.Context, proposal entities.Proposal) error
	ListProposalsByOrg(ctx context.Context, orgID string) ([]entities.Proposal, error)

	GetTally(ctx context.Context, proposalID string) (entities.VoteTally, error)
	GetVote(ctx context.Context, proposalID, voter string) (entities.VoteRecord, bool, error)
	ListVotesByProposal(ctx context.Context, proposalID string) ([]entities.VoteRecord, error)

	// InsertVote persists the vote record and the updated tally in one atomic
	// write. Fails with ErrVoteExists when the voter already has a record.
	InsertVote(ctx context.Context, vote entities.VoteRecord, tally entities.VoteTally) error
}

// PowerSource is the power ledger boundary: vote weight is fetched at cast
// time, never cached. Implementations run the voter's lazy expiry sweep.
type PowerSource interface {
	SpendableVotePower(ctx context.Context, orgID, account string) (uint64, error)
}

type OrgProjection struct {
	OrgID  string
	Owner  string
	Active bool
}

// OrganizationDirectory is the registry boundary used for ownership and
// active checks.
type OrganizationDirectory interface {
	Organization(ctx context.Context, orgID string) (OrgProjection, error)
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
