package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/governance/dao-registry/domain/entities"
	domainerrors "quorum/contexts/governance/dao-registry/domain/errors"
	"quorum/contexts/governance/dao-registry/ports"
	"quorum/internal/shared/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// AutoMigrate creates the module's tables; used by local/sqlite runs.
func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&organizationModel{}, &outboxModel{})
}

func (r *Repository) CreateOrganization(ctx context.Context, org entities.Organization) error {
	row := organizationModelFromEntity(org)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrOrganizationExists
		}
		return r.logError("registry_repo_create_failed", err, "org_id", row.ID)
	}
	return nil
}

func (r *Repository) GetOrganization(ctx context.Context, orgID string) (entities.Organization, error) {
	var row organizationModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(orgID)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Organization{}, domainerrors.ErrOrganizationNotFound
		}
		return entities.Organization{}, r.logError("registry_repo_get_failed", err, "org_id", strings.TrimSpace(orgID))
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveOrganization(ctx context.Context, org entities.Organization) error {
	row := organizationModelFromEntity(org)
	result := r.db.WithContext(ctx).Model(&organizationModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"name":        row.Name,
			"description": row.Description,
			"url":         row.URL,
			"active":      row.Active,
			"updated_at":  row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("registry_repo_save_failed", result.Error, "org_id", row.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOrganizationNotFound
	}
	return nil
}

func (r *Repository) ListOrganizations(ctx context.Context) ([]entities.Organization, error) {
	var rows []organizationModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("registry_repo_list_failed", err)
	}
	items := make([]entities.Organization, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	row := outboxModel{
		ID:           outboxID,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    createdAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("registry_repo_append_outbox_failed", err, "outbox_id", outboxID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("registry_repo_list_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.ID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("registry_repo_mark_outbox_failed", result.Error, "outbox_id", strings.TrimSpace(outboxID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance/dao-registry",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("dao registry repository failure", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

type organizationModel struct {
	ID                string    `gorm:"column:id;primaryKey"`
	Name              string    `gorm:"column:name"`
	Description       string    `gorm:"column:description"`
	URL               string    `gorm:"column:url"`
	Owner             string    `gorm:"column:owner;index"`
	Active            bool      `gorm:"column:active"`
	RegisteredAtEpoch uint64    `gorm:"column:registered_at_epoch"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (organizationModel) TableName() string {
	return "organizations"
}

func organizationModelFromEntity(org entities.Organization) organizationModel {
	return organizationModel{
		ID:                strings.TrimSpace(org.OrgID),
		Name:              org.Name,
		Description:       org.Description,
		URL:               org.URL,
		Owner:             strings.TrimSpace(org.Owner),
		Active:            org.Active,
		RegisteredAtEpoch: org.RegisteredAtEpoch,
		CreatedAt:         org.CreatedAt,
		UpdatedAt:         org.UpdatedAt,
	}
}

func (m organizationModel) toEntity() entities.Organization {
	return entities.Organization{
		OrgID:             m.ID,
		Name:              m.Name,
		Description:       m.Description,
		URL:               m.URL,
		Owner:             m.Owner,
		Active:            m.Active,
		RegisteredAtEpoch: m.RegisteredAtEpoch,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

type outboxModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "registry_outbox"
}

// SystemClock and UUIDGenerator are the production ports implementations.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
