package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/governance/power-ledger/domain/entities"
	domainerrors "quorum/contexts/governance/power-ledger/domain/errors"
	"quorum/contexts/governance/power-ledger/ports"
	"quorum/internal/shared/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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
	return r.db.AutoMigrate(&powerModel{}, &delegationModel{}, &outboxModel{})
}

func (r *Repository) GetPower(ctx context.Context, orgID, account string) (entities.PowerRecord, bool, error) {
	var row powerModel
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND account = ?", strings.TrimSpace(orgID), strings.TrimSpace(account)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.PowerRecord{}, false, nil
		}
		return entities.PowerRecord{}, false, r.logError("power_repo_get_power_failed", err,
			"org_id", strings.TrimSpace(orgID),
			"account", strings.TrimSpace(account),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SavePower(ctx context.Context, record entities.PowerRecord) error {
	row := powerModelFromEntity(record)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "org_id"}, {Name: "account"}},
		DoUpdates: powerAssignments(row),
	}).Create(&row).Error
	if err != nil {
		return r.logError("power_repo_save_power_failed", err,
			"org_id", row.OrgID,
			"account", row.Account,
		)
	}
	return nil
}

func (r *Repository) ListPowerByOrg(ctx context.Context, orgID string) ([]entities.PowerRecord, error) {
	var rows []powerModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", strings.TrimSpace(orgID)).
		Order("account ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("power_repo_list_power_failed", err, "org_id", strings.TrimSpace(orgID))
	}
	items := make([]entities.PowerRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetDelegation(ctx context.Context, orgID, delegator string) (entities.Delegation, bool, error) {
	var row delegationModel
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND delegator = ?", strings.TrimSpace(orgID), strings.TrimSpace(delegator)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Delegation{}, false, nil
		}
		return entities.Delegation{}, false, r.logError("power_repo_get_delegation_failed", err,
			"org_id", strings.TrimSpace(orgID),
			"delegator", strings.TrimSpace(delegator),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListDelegationsByOrg(ctx context.Context, orgID string) ([]entities.Delegation, error) {
	var rows []delegationModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", strings.TrimSpace(orgID)).
		Order("delegator ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("power_repo_list_delegations_failed", err, "org_id", strings.TrimSpace(orgID))
	}
	items := make([]entities.Delegation, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ApplyDelegation(
	ctx context.Context,
	delegation entities.Delegation,
	delegator, delegate entities.PowerRecord,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := delegationModelFromEntity(delegation)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDelegationExists
			}
			return err
		}
		for _, record := range []entities.PowerRecord{delegator, delegate} {
			power := powerModelFromEntity(record)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "org_id"}, {Name: "account"}},
				DoUpdates: powerAssignments(power),
			}).Create(&power).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrDelegationExists) {
			return err
		}
		return r.logError("power_repo_apply_delegation_failed", err,
			"org_id", delegation.OrgID,
			"delegator", delegation.Delegator,
		)
	}
	return nil
}

func (r *Repository) RemoveDelegation(
	ctx context.Context,
	orgID, delegatorID string,
	delegator, delegate entities.PowerRecord,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("org_id = ? AND delegator = ?", strings.TrimSpace(orgID), strings.TrimSpace(delegatorID)).
			Delete(&delegationModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrDelegationNotFound
		}
		for _, record := range []entities.PowerRecord{delegator, delegate} {
			power := powerModelFromEntity(record)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "org_id"}, {Name: "account"}},
				DoUpdates: powerAssignments(power),
			}).Create(&power).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrDelegationNotFound) {
			return err
		}
		return r.logError("power_repo_remove_delegation_failed", err,
			"org_id", strings.TrimSpace(orgID),
			"delegator", strings.TrimSpace(delegatorID),
		)
	}
	return nil
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
		return r.logError("power_repo_append_outbox_failed", err, "outbox_id", outboxID)
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
		return nil, r.logError("power_repo_list_outbox_failed", err)
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
		return r.logError("power_repo_mark_outbox_failed", result.Error, "outbox_id", strings.TrimSpace(outboxID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance/power-ledger",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("power ledger repository failure", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

type powerModel struct {
	OrgID             string    `gorm:"column:org_id;primaryKey"`
	Account           string    `gorm:"column:account;primaryKey"`
	TokenPower        uint64    `gorm:"column:token_power"`
	CurrencyPower     uint64    `gorm:"column:currency_power"`
	ReceivedDelegated uint64    `gorm:"column:received_delegated"`
	DelegateTarget    string    `gorm:"column:delegate_target"`
	UpdatedAtEpoch    uint64    `gorm:"column:updated_at_epoch"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (powerModel) TableName() string {
	return "power_records"
}

func powerAssignments(row powerModel) clause.Set {
	return clause.Assignments(map[string]any{
		"token_power":        row.TokenPower,
		"currency_power":     row.CurrencyPower,
		"received_delegated": row.ReceivedDelegated,
		"delegate_target":    row.DelegateTarget,
		"updated_at_epoch":   row.UpdatedAtEpoch,
		"updated_at":         row.UpdatedAt,
	})
}

func powerModelFromEntity(record entities.PowerRecord) powerModel {
	return powerModel{
		OrgID:             strings.TrimSpace(record.OrgID),
		Account:           strings.TrimSpace(record.Account),
		TokenPower:        record.TokenPower,
		CurrencyPower:     record.CurrencyPower,
		ReceivedDelegated: record.ReceivedDelegated,
		DelegateTarget:    strings.TrimSpace(record.DelegateTarget),
		UpdatedAtEpoch:    record.UpdatedAtEpoch,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}

func (m powerModel) toEntity() entities.PowerRecord {
	return entities.PowerRecord{
		OrgID:             m.OrgID,
		Account:           m.Account,
		TokenPower:        m.TokenPower,
		CurrencyPower:     m.CurrencyPower,
		ReceivedDelegated: m.ReceivedDelegated,
		DelegateTarget:    m.DelegateTarget,
		UpdatedAtEpoch:    m.UpdatedAtEpoch,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

type delegationModel struct {
	OrgID          string    `gorm:"column:org_id;primaryKey"`
	Delegator      string    `gorm:"column:delegator;primaryKey"`
	Delegate       string    `gorm:"column:delegate"`
	Amount         uint64    `gorm:"column:amount"`
	ExpiresAtEpoch *uint64   `gorm:"column:expires_at_epoch"`
	GrantedAtEpoch uint64    `gorm:"column:granted_at_epoch"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (delegationModel) TableName() string {
	return "delegations"
}

func delegationModelFromEntity(delegation entities.Delegation) delegationModel {
	return delegationModel{
		OrgID:          strings.TrimSpace(delegation.OrgID),
		Delegator:      strings.TrimSpace(delegation.Delegator),
		Delegate:       strings.TrimSpace(delegation.Delegate),
		Amount:         delegation.Amount,
		ExpiresAtEpoch: delegation.ExpiresAtEpoch,
		GrantedAtEpoch: delegation.GrantedAtEpoch,
		CreatedAt:      delegation.CreatedAt,
	}
}

func (m delegationModel) toEntity() entities.Delegation {
	return entities.Delegation{
		OrgID:          m.OrgID,
		Delegator:      m.Delegator,
		Delegate:       m.Delegate,
		Amount:         m.Amount,
		ExpiresAtEpoch: m.ExpiresAtEpoch,
		GrantedAtEpoch: m.GrantedAtEpoch,
		CreatedAt:      m.CreatedAt,
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
	return "power_outbox"
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
