package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/treasury/funding-escrow/domain/entities"
	domainerrors "quorum/contexts/treasury/funding-escrow/domain/errors"
	"quorum/contexts/treasury/funding-escrow/ports"
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
	return r.db.AutoMigrate(&fundingModel{}, &contributionModel{}, &withdrawalModel{}, &outboxModel{})
}

func (r *Repository) CreateFunding(ctx context.Context, record entities.FundingRecord) error {
	row := fundingModelFromEntity(record)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrFundingExists
		}
		return r.logError("escrow_repo_create_funding_failed", err, "proposal_id", row.ProposalID)
	}
	return nil
}

func (r *Repository) GetFunding(ctx context.Context, proposalID string) (entities.FundingRecord, error) {
	var row fundingModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.FundingRecord{}, domainerrors.ErrFundingNotFound
		}
		return entities.FundingRecord{}, r.logError("escrow_repo_get_funding_failed", err,
			"proposal_id", strings.TrimSpace(proposalID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetContribution(ctx context.Context, proposalID, funder string) (entities.Contribution, bool, error) {
	var row contributionModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ? AND funder = ?", strings.TrimSpace(proposalID), strings.TrimSpace(funder)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Contribution{}, false, nil
		}
		return entities.Contribution{}, false, r.logError("escrow_repo_get_contribution_failed", err,
			"proposal_id", strings.TrimSpace(proposalID),
			"funder", strings.TrimSpace(funder),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListContributionsByProposal(ctx context.Context, proposalID string) ([]entities.Contribution, error) {
	var rows []contributionModel
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		Order("funder ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("escrow_repo_list_contributions_failed", err, "proposal_id", strings.TrimSpace(proposalID))
	}
	items := make([]entities.Contribution, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetWithdrawal(ctx context.Context, proposalID string) (entities.WithdrawalRecord, bool, error) {
	var row withdrawalModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.WithdrawalRecord{}, false, nil
		}
		return entities.WithdrawalRecord{}, false, r.logError("escrow_repo_get_withdrawal_failed", err,
			"proposal_id", strings.TrimSpace(proposalID))
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ApplyContribution(
	ctx context.Context,
	record entities.FundingRecord,
	contribution entities.Contribution,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fundingRow := fundingModelFromEntity(record)
		result := tx.Model(&fundingModel{}).
			Where("proposal_id = ?", fundingRow.ProposalID).
			Updates(map[string]any{
				"total_raised":  fundingRow.TotalRaised,
				"native_raised": fundingRow.NativeRaised,
				"token_asset":   fundingRow.TokenAsset,
				"token_raised":  fundingRow.TokenRaised,
				"funder_count":  fundingRow.FunderCount,
				"updated_at":    fundingRow.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrFundingNotFound
		}
		row := contributionModelFromEntity(contribution)
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "proposal_id"}, {Name: "funder"}},
			DoUpdates: contributionAssignments(row),
		}).Create(&row).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrFundingNotFound) {
			return err
		}
		return r.logError("escrow_repo_apply_contribution_failed", err,
			"proposal_id", record.ProposalID,
			"funder", contribution.Funder,
		)
	}
	return nil
}

func (r *Repository) ApplyWithdrawal(ctx context.Context, withdrawal entities.WithdrawalRecord) error {
	row := withdrawalModelFromEntity(withdrawal)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "proposal_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"withdrawn_native": row.WithdrawnNative,
			"withdrawn_token":  row.WithdrawnToken,
			"last_epoch":       row.LastEpoch,
			"count":            row.Count,
			"updated_at":       row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("escrow_repo_apply_withdrawal_failed", err, "proposal_id", row.ProposalID)
	}
	return nil
}

func (r *Repository) RemoveContribution(ctx context.Context, proposalID, funder string) error {
	result := r.db.WithContext(ctx).
		Where("proposal_id = ? AND funder = ?", strings.TrimSpace(proposalID), strings.TrimSpace(funder)).
		Delete(&contributionModel{})
	if result.Error != nil {
		return r.logError("escrow_repo_remove_contribution_failed", result.Error,
			"proposal_id", strings.TrimSpace(proposalID),
			"funder", strings.TrimSpace(funder),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrContributionNotFound
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
		return r.logError("escrow_repo_append_outbox_failed", err, "outbox_id", outboxID)
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
		return nil, r.logError("escrow_repo_list_outbox_failed", err)
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
		return r.logError("escrow_repo_mark_outbox_failed", result.Error, "outbox_id", strings.TrimSpace(outboxID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "treasury/funding-escrow",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("funding escrow repository failure", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

type fundingModel struct {
	ProposalID       string    `gorm:"column:proposal_id;primaryKey"`
	OrgID            string    `gorm:"column:org_id;index"`
	Beneficiary      string    `gorm:"column:beneficiary"`
	Fundable         bool      `gorm:"column:fundable"`
	WindowStartEpoch uint64    `gorm:"column:window_start_epoch"`
	WindowEndEpoch   uint64    `gorm:"column:window_end_epoch"`
	MinGoal          uint64    `gorm:"column:min_goal"`
	TargetGoal       uint64    `gorm:"column:target_goal"`
	TotalRaised      uint64    `gorm:"column:total_raised"`
	NativeRaised     uint64    `gorm:"column:native_raised"`
	TokenAsset       string    `gorm:"column:token_asset"`
	TokenRaised      uint64    `gorm:"column:token_raised"`
	FunderCount      uint64    `gorm:"column:funder_count"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (fundingModel) TableName() string {
	return "funding_records"
}

func fundingModelFromEntity(record entities.FundingRecord) fundingModel {
	return fundingModel{
		ProposalID:       strings.TrimSpace(record.ProposalID),
		OrgID:            strings.TrimSpace(record.OrgID),
		Beneficiary:      strings.TrimSpace(record.Beneficiary),
		Fundable:         record.Fundable,
		WindowStartEpoch: record.WindowStartEpoch,
		WindowEndEpoch:   record.WindowEndEpoch,
		MinGoal:          record.MinGoal,
		TargetGoal:       record.TargetGoal,
		TotalRaised:      record.TotalRaised,
		NativeRaised:     record.NativeRaised,
		TokenAsset:       strings.TrimSpace(record.TokenAsset),
		TokenRaised:      record.TokenRaised,
		FunderCount:      record.FunderCount,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}

func (m fundingModel) toEntity() entities.FundingRecord {
	return entities.FundingRecord{
		ProposalID:       m.ProposalID,
		OrgID:            m.OrgID,
		Beneficiary:      m.Beneficiary,
		Fundable:         m.Fundable,
		WindowStartEpoch: m.WindowStartEpoch,
		WindowEndEpoch:   m.WindowEndEpoch,
		MinGoal:          m.MinGoal,
		TargetGoal:       m.TargetGoal,
		TotalRaised:      m.TotalRaised,
		NativeRaised:     m.NativeRaised,
		TokenAsset:       m.TokenAsset,
		TokenRaised:      m.TokenRaised,
		FunderCount:      m.FunderCount,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

type contributionModel struct {
	ProposalID   string    `gorm:"column:proposal_id;primaryKey"`
	Funder       string    `gorm:"column:funder;primaryKey"`
	NativeAmount uint64    `gorm:"column:native_amount"`
	TokenAmount  uint64    `gorm:"column:token_amount"`
	FirstEpoch   uint64    `gorm:"column:first_epoch"`
	LastEpoch    uint64    `gorm:"column:last_epoch"`
	Count        uint64    `gorm:"column:count"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (contributionModel) TableName() string {
	return "contributions"
}

func contributionAssignments(row contributionModel) clause.Set {
	return clause.Assignments(map[string]any{
		"native_amount": row.NativeAmount,
		"token_amount":  row.TokenAmount,
		"last_epoch":    row.LastEpoch,
		"count":         row.Count,
		"updated_at":    row.UpdatedAt,
	})
}

func contributionModelFromEntity(contribution entities.Contribution) contributionModel {
	return contributionModel{
		ProposalID:   strings.TrimSpace(contribution.ProposalID),
		Funder:       strings.TrimSpace(contribution.Funder),
		NativeAmount: contribution.NativeAmount,
		TokenAmount:  contribution.TokenAmount,
		FirstEpoch:   contribution.FirstEpoch,
		LastEpoch:    contribution.LastEpoch,
		Count:        contribution.Count,
		CreatedAt:    contribution.CreatedAt,
		UpdatedAt:    contribution.UpdatedAt,
	}
}

func (m contributionModel) toEntity() entities.Contribution {
	return entities.Contribution{
		ProposalID:   m.ProposalID,
		Funder:       m.Funder,
		NativeAmount: m.NativeAmount,
		TokenAmount:  m.TokenAmount,
		FirstEpoch:   m.FirstEpoch,
		LastEpoch:    m.LastEpoch,
		Count:        m.Count,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type withdrawalModel struct {
	ProposalID      string    `gorm:"column:proposal_id;primaryKey"`
	WithdrawnNative uint64    `gorm:"column:withdrawn_native"`
	WithdrawnToken  uint64    `gorm:"column:withdrawn_token"`
	LastEpoch       uint64    `gorm:"column:last_epoch"`
	Count           uint64    `gorm:"column:count"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (withdrawalModel) TableName() string {
	return "withdrawal_records"
}

func withdrawalModelFromEntity(withdrawal entities.WithdrawalRecord) withdrawalModel {
	return withdrawalModel{
		ProposalID:      strings.TrimSpace(withdrawal.ProposalID),
		WithdrawnNative: withdrawal.WithdrawnNative,
		WithdrawnToken:  withdrawal.WithdrawnToken,
		LastEpoch:       withdrawal.LastEpoch,
		Count:           withdrawal.Count,
		CreatedAt:       withdrawal.CreatedAt,
		UpdatedAt:       withdrawal.UpdatedAt,
	}
}

func (m withdrawalModel) toEntity() entities.WithdrawalRecord {
	return entities.WithdrawalRecord{
		ProposalID:      m.ProposalID,
		WithdrawnNative: m.WithdrawnNative,
		WithdrawnToken:  m.WithdrawnToken,
		LastEpoch:       m.LastEpoch,
		Count:           m.Count,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
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
	return "escrow_outbox"
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
