package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"quorum/contexts/governance/dao-registry/domain/entities"
	domainerrors "quorum/contexts/governance/dao-registry/domain/errors"
	"quorum/contexts/governance/dao-registry/ports"
	"quorum/internal/shared/events"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory organization directory.
type Store struct {
	mu sync.RWMutex

	orgs   map[string]entities.Organization
	outbox map[string]outboxRecord

	epoch uint64
}

func NewStore() *Store {
	return &Store{
		orgs:   make(map[string]entities.Organization),
		outbox: make(map[string]outboxRecord),
	}
}

// SetEpoch moves the store's logical clock; test helper standing in for the
// host environment.
func (s *Store) SetEpoch(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch = epoch
}

func (s *Store) CreateOrganization(_ context.Context, org entities.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(org.OrgID)
	if _, exists := s.orgs[id]; exists {
		return domainerrors.ErrOrganizationExists
	}
	s.orgs[id] = org
	return nil
}

func (s *Store) GetOrganization(_ context.Context, orgID string) (entities.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[strings.TrimSpace(orgID)]
	if !ok {
		return entities.Organization{}, domainerrors.ErrOrganizationNotFound
	}
	return org, nil
}

func (s *Store) SaveOrganization(_ context.Context, org entities.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(org.OrgID)
	if _, ok := s.orgs[id]; !ok {
		return domainerrors.ErrOrganizationNotFound
	}
	s.orgs[id] = org
	return nil
}

func (s *Store) ListOrganizations(_ context.Context) ([]entities.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Organization, 0, len(s.orgs))
	for _, org := range s.orgs {
		items = append(items, org)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].OrgID < items[j].OrgID })
	return items, nil
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
