package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/types"
)

type MomentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, moment *types.Moment) (*types.Moment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Moment, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Moment, error)
	// ListRecent returns moments newest first, capped at limit.
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Moment, error)
	// ListRecentExcludingUser is ListRecent minus the viewer's own moments.
	ListRecentExcludingUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Moment, error)
	// GetRecentCaptions returns up to n non-empty captions for a user, newest first.
	GetRecentCaptions(ctx context.Context, tx *gorm.DB, userID uuid.UUID, n int) ([]string, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type momentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMomentRepo(db *gorm.DB, baseLog *logger.Logger) MomentRepo {
	return &momentRepo{db: db, log: baseLog.With("repo", "MomentRepo")}
}

func (r *momentRepo) Create(ctx context.Context, tx *gorm.DB, moment *types.Moment) (*types.Moment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if moment == nil || moment.UserID == uuid.Nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(moment).Error; err != nil {
		return nil, err
	}
	return moment, nil
}

func (r *momentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Moment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Moment
	if err := transaction.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *momentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Moment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Moment
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *momentRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Moment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 200
	}
	var results []*types.Moment
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *momentRepo) ListRecentExcludingUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Moment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 200
	}
	var results []*types.Moment
	q := transaction.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if userID != uuid.Nil {
		q = q.Where("user_id <> ?", userID)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *momentRepo) GetRecentCaptions(ctx context.Context, tx *gorm.DB, userID uuid.UUID, n int) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || n <= 0 {
		return []string{}, nil
	}
	var captions []string
	if err := transaction.WithContext(ctx).
		Model(&types.Moment{}).
		Where("user_id = ? AND caption <> ''", userID).
		Order("created_at DESC").
		Limit(n).
		Pluck("caption", &captions).Error; err != nil {
		return nil, err
	}
	return captions, nil
}

func (r *momentRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.Moment{}).Error
}
