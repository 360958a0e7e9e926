package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"quorum/contexts/treasury/funding-escrow/domain/entities"
	domainerrors "quorum/contexts/treasury/funding-escrow/domain/errors"
	"quorum/contexts/treasury/funding-escrow/ports"
	"quorum/internal/shared/events"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory escrow repository. One mutex covers every keyed map
// so the funding-record + contribution pair is observed all-or-nothing.
type Store struct {
	mu sync.RWMutex

	fundings      map[string]entities.FundingRecord
	contributions map[string]entities.Contribution
	withdrawals   map[string]entities.WithdrawalRecord
	outbox        map[string]outboxRecord

	epoch uint64
}

func NewStore() *Store {
	return &Store{
		fundings:      make(map[string]entities.FundingRecord),
		contributions: make(map[string]entities.Contribution),
		withdrawals:   make(map[string]entities.WithdrawalRecord),
		outbox:        make(map[string]outboxRecord),
	}
}

func contributionKey(proposalID, funder string) string {
	return strings.TrimSpace(proposalID) + "/" + strings.TrimSpace(funder)
}

// SetEpoch moves the store's logical clock; test helper standing in for the
// host environment.
func (s *Store) SetEpoch(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch = epoch
}

func (s *Store) CreateFunding(_ context.Context, record entities.FundingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(record.ProposalID)
	if _, exists := s.fundings[id]; exists {
		return domainerrors.ErrFundingExists
	}
	s.fundings[id] = record
	return nil
}

func (s *Store) GetFunding(_ context.Context, proposalID string) (entities.FundingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.fundings[strings.TrimSpace(proposalID)]
	if !ok {
		return entities.FundingRecord{}, domainerrors.ErrFundingNotFound
	}
	return record, nil
}

func (s *Store) GetContribution(_ context.Context, proposalID, funder string) (entities.Contribution, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contribution, ok := s.contributions[contributionKey(proposalID, funder)]
	return contribution, ok, nil
}

func (s *Store) ListContributionsByProposal(_ context.Context, proposalID string) ([]entities.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Contribution, 0)
	for _, contribution := range s.contributions {
		if contribution.ProposalID == strings.TrimSpace(proposalID) {
			items = append(items, contribution)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Funder < items[j].Funder })
	return items, nil
}

func (s *Store) GetWithdrawal(_ context.Context, proposalID string) (entities.WithdrawalRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	withdrawal, ok := s.withdrawals[strings.TrimSpace(proposalID)]
	return withdrawal, ok, nil
}

func (s *Store) ApplyContribution(
	_ context.Context,
	record entities.FundingRecord,
	contribution entities.Contribution,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(record.ProposalID)
	if _, ok := s.fundings[id]; !ok {
		return domainerrors.ErrFundingNotFound
	}
	s.fundings[id] = record
	s.contributions[contributionKey(contribution.ProposalID, contribution.Funder)] = contribution
	return nil
}

func (s *Store) ApplyWithdrawal(_ context.Context, withdrawal entities.WithdrawalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.withdrawals[strings.TrimSpace(withdrawal.ProposalID)] = withdrawal
	return nil
}

func (s *Store) RemoveContribution(_ context.Context, proposalID, funder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := contributionKey(proposalID, funder)
	if _, ok := s.contributions[key]; !ok {
		return domainerrors.ErrContributionNotFound
	}
	delete(s.contributions, key)
	return nil
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
