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

type MomentEmbeddingRepo interface {
	GetByMomentID(ctx context.Context, tx *gorm.DB, momentID uuid.UUID) (*types.MomentEmbedding, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.MomentEmbedding) error
	DeleteByMomentID(ctx context.Context, tx *gorm.DB, momentID uuid.UUID) error
}

type momentEmbeddingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMomentEmbeddingRepo(db *gorm.DB, baseLog *logger.Logger) MomentEmbeddingRepo {
	return &momentEmbeddingRepo{db: db, log: baseLog.With("repo", "MomentEmbeddingRepo")}
}

func (r *momentEmbeddingRepo) GetByMomentID(ctx context.Context, tx *gorm.DB, momentID uuid.UUID) (*types.MomentEmbedding, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if momentID == uuid.Nil {
		return nil, nil
	}
	var row types.MomentEmbedding
	if err := transaction.WithContext(ctx).Where("moment_id = ?", momentID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// Upsert writes vector and hash in a single statement so a reader never sees
// a fresh hash next to a stale vector.
func (r *momentEmbeddingRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.MomentEmbedding) error {
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
				"embedding",
				"content_hash",
				"updated_at",
			}),
		}).
		Create(row).Error
}

func (r *momentEmbeddingRepo) DeleteByMomentID(ctx context.Context, tx *gorm.DB, momentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if momentID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).Where("moment_id = ?", momentID).Delete(&types.MomentEmbedding{}).Error
}
