package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/types"
)

type MomentSummaryRepo interface {
	GetByMomentID(ctx context.Context, tx *gorm.DB, momentID uuid.UUID) (*types.MomentSummary, error)
	GetByMomentIDs(ctx context.Context, tx *gorm.DB, momentIDs []uuid.UUID) ([]*types.MomentSummary, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.MomentSummary) error
}

type momentSummaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMomentSummaryRepo(db *gorm.DB, baseLog *logger.Logger) MomentSummaryRepo {
	return &momentSummaryRepo{db: db, log: baseLog.With("repo", "MomentSummaryRepo")}
}

func (r *momentSummaryRepo) GetByMomentID(ctx context.Context, tx *gorm.DB, momentID uuid.UUID) (*types.MomentSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if momentID == uuid.Nil {
		return nil, nil
	}
	var row types.MomentSummary
	if err := transaction.WithContext(ctx).Where("moment_id = ?", momentID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *momentSummaryRepo) GetByMomentIDs(ctx context.Context, tx *gorm.DB, momentIDs []uuid.UUID) ([]*types.MomentSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.MomentSummary
	if len(momentIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("moment_id IN ?", momentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *momentSummaryRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.MomentSummary) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.MomentID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "moment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"summary_text",
				"caption_hash",
				"updated_at",
			}),
		}).
		Create(row).Error
}
