package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"quorum/contexts/governance/power-ledger/domain/entities"
	domainerrors "quorum/contexts/governance/power-ledger/domain/errors"
	"quorum/contexts/governance/power-ledger/ports"
	"quorum/internal/shared/events"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory power ledger. One mutex covers every keyed map so
// paired writes (delegation + both power records) are observed all-or-nothing.
type Store struct {
	mu sync.RWMutex

	powers      map[string]entities.PowerRecord
	delegations map[string]entities.Delegation
	outbox      map[string]outboxRecord

	nativeBalances map[string]uint64
	epoch          uint64
}

func NewStore() *Store {
	return &Store{
		powers:         make(map[string]entities.PowerRecord),
		delegations:    make(map[string]entities.Delegation),
		outbox:         make(map[string]outboxRecord),
		nativeBalances: make(map[string]uint64),
	}
}

func recordKey(orgID, account string) string {
	return strings.TrimSpace(orgID) + "/" + strings.TrimSpace(account)
}

// SetEpoch moves the store's logical clock; test helper standing in for the
// host environment.
func (s *Store) SetEpoch(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch = epoch
}

func (s *Store) SetNativeBalance(account string, balance uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nativeBalances[strings.TrimSpace(account)] = balance
}

func (s *Store) GetPower(_ context.Context, orgID, account string) (entities.PowerRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.powers[recordKey(orgID, account)]
	return record, ok, nil
}

func (s *Store) SavePower(_ context.Context, record entities.PowerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.powers[recordKey(record.OrgID, record.Account)] = record
	return nil
}

func (s *Store) ListPowerByOrg(_ context.Context, orgID string) ([]entities.PowerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.PowerRecord, 0)
	for _, record := range s.powers {
		if record.OrgID == strings.TrimSpace(orgID) {
			items = append(items, record)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Account < items[j].Account })
	return items, nil
}

func (s *Store) GetDelegation(_ context.Context, orgID, delegator string) (entities.Delegation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	delegation, ok := s.delegations[recordKey(orgID, delegator)]
	return delegation, ok, nil
}

func (s *Store) ListDelegationsByOrg(_ context.Context, orgID string) ([]entities.Delegation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Delegation, 0)
	for _, delegation := range s.delegations {
		if delegation.OrgID == strings.TrimSpace(orgID) {
			items = append(items, delegation)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Delegator < items[j].Delegator })
	return items, nil
}

func (s *Store) ApplyDelegation(
	_ context.Context,
	delegation entities.Delegation,
	delegator, delegate entities.PowerRecord,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey(delegation.OrgID, delegation.Delegator)
	if _, exists := s.delegations[key]; exists {
		return domainerrors.ErrDelegationExists
	}
	s.delegations[key] = delegation
	s.powers[recordKey(delegator.OrgID, delegator.Account)] = delegator
	s.powers[recordKey(delegate.OrgID, delegate.Account)] = delegate
	return nil
}

func (s *Store) RemoveDelegation(
	_ context.Context,
	orgID, delegatorID string,
	delegator, delegate entities.PowerRecord,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey(orgID, delegatorID)
	if _, exists := s.delegations[key]; !exists {
		return domainerrors.ErrDelegationNotFound
	}
	delete(s.delegations, key)
	s.powers[recordKey(delegator.OrgID, delegator.Account)] = delegator
	s.powers[recordKey(delegate.OrgID, delegate.Account)] = delegate
	return nil
}

func (s *Store) NativeBalance(_ context.Context, account string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nativeBalances[strings.TrimSpace(account)], nil
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
