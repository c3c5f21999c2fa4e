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

type InterestProfileRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.InterestProfile, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.InterestProfile) error
}

type interestProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInterestProfileRepo(db *gorm.DB, baseLog *logger.Logger) InterestProfileRepo {
	return &interestProfileRepo{db: db, log: baseLog.With("repo", "InterestProfileRepo")}
}

func (r *interestProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.InterestProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.InterestProfile
	if err := transaction.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *interestProfileRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.InterestProfile) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"interest_text",
				"profile_hash",
				"updated_at",
			}),
		}).
		Create(row).Error
}
