package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/types"
)

type EmergencyContactRepo interface {
	Create(ctx context.Context, tx *gorm.DB, contact *types.EmergencyContact) (*types.EmergencyContact, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.EmergencyContact, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (*types.EmergencyContact, error)
	Update(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID, updates map[string]any) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (int64, error)
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID string) error
}

type emergencyContactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmergencyContactRepo(db *gorm.DB, baseLog *logger.Logger) EmergencyContactRepo {
	return &emergencyContactRepo{db: db, log: baseLog.With("repo", "EmergencyContactRepo")}
}

func (er *emergencyContactRepo) Create(ctx context.Context, tx *gorm.DB, contact *types.EmergencyContact) (*types.EmergencyContact, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	if err := transaction.WithContext(ctx).Create(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

func (er *emergencyContactRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.EmergencyContact, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var results []*types.EmergencyContact
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *emergencyContactRepo) GetByID(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (*types.EmergencyContact, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var contact types.EmergencyContact
	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (er *emergencyContactRepo) Update(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID, updates map[string]any) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.EmergencyContact{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (er *emergencyContactRepo) Delete(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.EmergencyContact{})
	return res.RowsAffected, res.Error
}

func (er *emergencyContactRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID string) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.EmergencyContact{}).Error
}
