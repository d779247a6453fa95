package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/types"
)

type ResourceSearchRepo interface {
	Create(ctx context.Context, tx *gorm.DB, search *types.ResourceSearch) (*types.ResourceSearch, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*types.ResourceSearch, error)
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID string) error
}

type resourceSearchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResourceSearchRepo(db *gorm.DB, baseLog *logger.Logger) ResourceSearchRepo {
	return &resourceSearchRepo{db: db, log: baseLog.With("repo", "ResourceSearchRepo")}
}

func (rr *resourceSearchRepo) Create(ctx context.Context, tx *gorm.DB, search *types.ResourceSearch) (*types.ResourceSearch, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if err := transaction.WithContext(ctx).Create(search).Error; err != nil {
		return nil, err
	}
	return search, nil
}

func (rr *resourceSearchRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*types.ResourceSearch, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*types.ResourceSearch
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *resourceSearchRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID string) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.ResourceSearch{}).Error
}
