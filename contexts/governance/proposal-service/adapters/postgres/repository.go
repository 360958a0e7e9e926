package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/governance/proposal-service/domain/entities"
	domainerrors "quorum/contexts/governance/proposal-service/domain/errors"
	"quorum/contexts/governance/proposal-service/ports"
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
	return r.db.AutoMigrate(&proposalModel{}, &voteModel{}, &tallyModel{}, &outboxModel{})
}

func (r *Repository) CreateProposal(ctx context.Context, proposal entities.Proposal, tally entities.VoteTally) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := proposalModelFromEntity(proposal)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrProposalExists
			}
			return err
		}
		tallyRow := tallyModelFromEntity(tally)
		return tx.Create(&tallyRow).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrProposalExists) {
			return err
		}
		return r.logError("proposal_repo_create_failed", err, "proposal_id", proposal.ProposalID)
	}
	return nil
}

func (r *Repository) GetProposal(ctx context.Context, proposalID string) (entities.Proposal, error) {
	var row proposalModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(proposalID)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		return entities.Proposal{}, r.logError("proposal_repo_get_failed", err, "proposal_id", strings.TrimSpace(proposalID))
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveProposal(ctx context.Context, proposal entities.Proposal) error {
	row := proposalModelFromEntity(proposal)
	result := r.db.WithContext(ctx).Model(&proposalModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"title":                row.Title,
			"description":          row.Description,
			"status":               row.Status,
			"execution_payload":    row.ExecutionPayload,
			"funding_goal":         row.FundingGoal,
			"min_approval_percent": row.MinApprovalPercent,
			"vote_start_epoch":     row.VoteStartEpoch,
			"vote_end_epoch":       row.VoteEndEpoch,
			"updated_at":           row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("proposal_repo_save_failed", result.Error, "proposal_id", row.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrProposalNotFound
	}
	return nil
}

func (r *Repository) ListProposalsByOrg(ctx context.Context, orgID string) ([]entities.Proposal, error) {
	var rows []proposalModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", strings.TrimSpace(orgID)).
		Order("created_at_epoch ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("proposal_repo_list_failed", err, "org_id", strings.TrimSpace(orgID))
	}
	items := make([]entities.Proposal, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetTally(ctx context.Context, proposalID string) (entities.VoteTally, error) {
	var row tallyModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoteTally{}, domainerrors.ErrTallyNotFound
		}
		return entities.VoteTally{}, r.logError("proposal_repo_get_tally_failed", err, "proposal_id", strings.TrimSpace(proposalID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetVote(ctx context.Context, proposalID, voter string) (entities.VoteRecord, bool, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ? AND voter = ?", strings.TrimSpace(proposalID), strings.TrimSpace(voter)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoteRecord{}, false, nil
		}
		return entities.VoteRecord{}, false, r.logError("proposal_repo_get_vote_failed", err,
			"proposal_id", strings.TrimSpace(proposalID),
			"voter", strings.TrimSpace(voter),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListVotesByProposal(ctx context.Context, proposalID string) ([]entities.VoteRecord, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		Order("voter ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("proposal_repo_list_votes_failed", err, "proposal_id", strings.TrimSpace(proposalID))
	}
	items := make([]entities.VoteRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) InsertVote(ctx context.Context, vote entities.VoteRecord, tally entities.VoteTally) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := voteModelFromEntity(vote)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrVoteExists
			}
			return err
		}
		tallyRow := tallyModelFromEntity(tally)
		result := tx.Model(&tallyModel{}).
			Where("proposal_id = ?", tallyRow.ProposalID).
			Updates(map[string]any{
				"yes":         tallyRow.Yes,
				"no":          tallyRow.No,
				"abstain":     tallyRow.Abstain,
				"total_voted": tallyRow.TotalVoted,
				"updated_at":  tallyRow.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrTallyNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrVoteExists) || errors.Is(err, domainerrors.ErrTallyNotFound) {
			return err
		}
		return r.logError("proposal_repo_insert_vote_failed", err,
			"proposal_id", vote.ProposalID,
			"voter", vote.Voter,
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
		return r.logError("proposal_repo_append_outbox_failed", err, "outbox_id", outboxID)
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
		return nil, r.logError("proposal_repo_list_outbox_failed", err)
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
		return r.logError("proposal_repo_mark_outbox_failed", result.Error, "outbox_id", strings.TrimSpace(outboxID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance/proposal-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("proposal repository failure", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

type proposalModel struct {
	ID                 string    `gorm:"column:id;primaryKey"`
	Title              string    `gorm:"column:title"`
	Description        string    `gorm:"column:description"`
	OrgID              string    `gorm:"column:org_id;index"`
	Proposer           string    `gorm:"column:proposer"`
	Status             string    `gorm:"column:status"`
	ExecutionPayload   string    `gorm:"column:execution_payload"`
	FundingGoal        uint64    `gorm:"column:funding_goal"`
	MinApprovalPercent uint64    `gorm:"column:min_approval_percent"`
	VoteStartEpoch     uint64    `gorm:"column:vote_start_epoch"`
	VoteEndEpoch       uint64    `gorm:"column:vote_end_epoch"`
	CreatedAtEpoch     uint64    `gorm:"column:created_at_epoch"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (proposalModel) TableName() string {
	return "proposals"
}

func proposalModelFromEntity(proposal entities.Proposal) proposalModel {
	return proposalModel{
		ID:                 strings.TrimSpace(proposal.ProposalID),
		Title:              proposal.Title,
		Description:        proposal.Description,
		OrgID:              strings.TrimSpace(proposal.OrgID),
		Proposer:           strings.TrimSpace(proposal.Proposer),
		Status:             string(proposal.Status),
		ExecutionPayload:   proposal.ExecutionPayload,
		FundingGoal:        proposal.FundingGoal,
		MinApprovalPercent: proposal.MinApprovalPercent,
		VoteStartEpoch:     proposal.VoteStartEpoch,
		VoteEndEpoch:       proposal.VoteEndEpoch,
		CreatedAtEpoch:     proposal.CreatedAtEpoch,
		CreatedAt:          proposal.CreatedAt,
		UpdatedAt:          proposal.UpdatedAt,
	}
}

func (m proposalModel) toEntity() entities.Proposal {
	return entities.Proposal{
		ProposalID:         m.ID,
		Title:              m.Title,
		Description:        m.Description,
		OrgID:              m.OrgID,
		Proposer:           m.Proposer,
		Status:             entities.Status(m.Status),
		ExecutionPayload:   m.ExecutionPayload,
		FundingGoal:        m.FundingGoal,
		MinApprovalPercent: m.MinApprovalPercent,
		VoteStartEpoch:     m.VoteStartEpoch,
		VoteEndEpoch:       m.VoteEndEpoch,
		CreatedAtEpoch:     m.CreatedAtEpoch,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

type voteModel struct {
	ProposalID  string    `gorm:"column:proposal_id;primaryKey"`
	Voter       string    `gorm:"column:voter;primaryKey"`
	Kind        string    `gorm:"column:kind"`
	Power       uint64    `gorm:"column:power"`
	CastAtEpoch uint64    `gorm:"column:cast_at_epoch"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "vote_records"
}

func voteModelFromEntity(vote entities.VoteRecord) voteModel {
	return voteModel{
		ProposalID:  strings.TrimSpace(vote.ProposalID),
		Voter:       strings.TrimSpace(vote.Voter),
		Kind:        string(vote.Kind),
		Power:       vote.Power,
		CastAtEpoch: vote.CastAtEpoch,
		CreatedAt:   vote.CreatedAt,
	}
}

func (m voteModel) toEntity() entities.VoteRecord {
	return entities.VoteRecord{
		ProposalID:  m.ProposalID,
		Voter:       m.Voter,
		Kind:        entities.VoteKind(m.Kind),
		Power:       m.Power,
		CastAtEpoch: m.CastAtEpoch,
		CreatedAt:   m.CreatedAt,
	}
}

type tallyModel struct {
	ProposalID string    `gorm:"column:proposal_id;primaryKey"`
	Yes        uint64    `gorm:"column:yes"`
	No         uint64    `gorm:"column:no"`
	Abstain    uint64    `gorm:"column:abstain"`
	TotalVoted uint64    `gorm:"column:total_voted"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (tallyModel) TableName() string {
	return "vote_tallies"
}

func tallyModelFromEntity(tally entities.VoteTally) tallyModel {
	return tallyModel{
		ProposalID: strings.TrimSpace(tally.ProposalID),
		Yes:        tally.Yes,
		No:         tally.No,
		Abstain:    tally.Abstain,
		TotalVoted: tally.TotalVoted,
		UpdatedAt:  tally.UpdatedAt,
	}
}

func (m tallyModel) toEntity() entities.VoteTally {
	return entities.VoteTally{
		ProposalID: m.ProposalID,
		Yes:        m.Yes,
		No:         m.No,
		Abstain:    m.Abstain,
		TotalVoted: m.TotalVoted,
		UpdatedAt:  m.UpdatedAt,
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
	return "proposal_outbox"
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
