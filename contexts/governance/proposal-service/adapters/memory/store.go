package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"quorum/contexts/governance/proposal-service/domain/entities"
	domainerrors "quorum/contexts/governance/proposal-service/domain/errors"
	"quorum/contexts/governance/proposal-service/ports"
	"quorum/internal/shared/events"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory proposal repository. One mutex covers every keyed
// map so paired writes (vote + tally, proposal + tally) are observed
// all-or-nothing. It also hosts seedable organization and power projections
// for self-contained wiring.
type Store struct {
	mu sync.RWMutex

	proposals map[string]entities.Proposal
	tallies   map[string]entities.VoteTally
	votes     map[string]entities.VoteRecord
	outbox    map[string]outboxRecord

	orgs   map[string]ports.OrgProjection
	powers map[string]uint64
	epoch  uint64
}

func NewStore() *Store {
	return &Store{
		proposals: make(map[string]entities.Proposal),
		tallies:   make(map[string]entities.VoteTally),
		votes:     make(map[string]entities.VoteRecord),
		outbox:    make(map[string]outboxRecord),
		orgs:      make(map[string]ports.OrgProjection),
		powers:    make(map[string]uint64),
	}
}

func voteKey(proposalID, voter string) string {
	return strings.TrimSpace(proposalID) + "/" + strings.TrimSpace(voter)
}

func powerKey(orgID, account string) string {
	return strings.TrimSpace(orgID) + "/" + strings.TrimSpace(account)
}

// SetEpoch moves the store's logical clock; test helper standing in for the
// host environment.
func (s *Store) SetEpoch(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch = epoch
}

// SetOrganization seeds the registry projection.
func (s *Store) SetOrganization(org ports.OrgProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[strings.TrimSpace(org.OrgID)] = org
}

// SetVotePower seeds the power projection used by SpendableVotePower.
func (s *Store) SetVotePower(orgID, account string, power uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.powers[powerKey(orgID, account)] = power
}

func (s *Store) CreateProposal(_ context.Context, proposal entities.Proposal, tally entities.VoteTally) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(proposal.ProposalID)
	if _, exists := s.proposals[id]; exists {
		return domainerrors.ErrProposalExists
	}
	s.proposals[id] = proposal
	s.tallies[id] = tally
	return nil
}

func (s *Store) GetProposal(_ context.Context, proposalID string) (entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[strings.TrimSpace(proposalID)]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}

func (s *Store) SaveProposal(_ context.Context, proposal entities.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(proposal.ProposalID)
	if _, ok := s.proposals[id]; !ok {
		return domainerrors.ErrProposalNotFound
	}
	s.proposals[id] = proposal
	return nil
}

func (s *Store) ListProposalsByOrg(_ context.Context, orgID string) ([]entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Proposal, 0)
	for _, proposal := range s.proposals {
		if proposal.OrgID == strings.TrimSpace(orgID) {
			items = append(items, proposal)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAtEpoch != items[j].CreatedAtEpoch {
			return items[i].CreatedAtEpoch < items[j].CreatedAtEpoch
		}
		return items[i].ProposalID < items[j].ProposalID
	})
	return items, nil
}

func (s *Store) GetTally(_ context.Context, proposalID string) (entities.VoteTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tally, ok := s.tallies[strings.TrimSpace(proposalID)]
	if !ok {
		return entities.VoteTally{}, domainerrors.ErrTallyNotFound
	}
	return tally, nil
}

func (s *Store) GetVote(_ context.Context, proposalID, voter string) (entities.VoteRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, ok := s.votes[voteKey(proposalID, voter)]
	return vote, ok, nil
}

func (s *Store) ListVotesByProposal(_ context.Context, proposalID string) ([]entities.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.VoteRecord, 0)
	for _, vote := range s.votes {
		if vote.ProposalID == strings.TrimSpace(proposalID) {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Voter < items[j].Voter })
	return items, nil
}

func (s *Store) InsertVote(_ context.Context, vote entities.VoteRecord, tally entities.VoteTally) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey(vote.ProposalID, vote.Voter)
	if _, exists := s.votes[key]; exists {
		return domainerrors.ErrVoteExists
	}
	if _, ok := s.tallies[strings.TrimSpace(vote.ProposalID)]; !ok {
		return domainerrors.ErrTallyNotFound
	}
	s.votes[key] = vote
	s.tallies[strings.TrimSpace(vote.ProposalID)] = tally
	return nil
}

func (s *Store) Organization(_ context.Context, orgID string) (ports.OrgProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[strings.TrimSpace(orgID)]
	if !ok {
		return ports.OrgProjection{}, domainerrors.ErrOrganizationNotFound
	}
	return org, nil
}

func (s *Store) SpendableVotePower(_ context.Context, orgID, account string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.powers[powerKey(orgID, account)], nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope events.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
