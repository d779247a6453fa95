package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/types"
)

type EmergencyAlertRepo interface {
	Create(ctx context.Context, tx *gorm.DB, alert *types.EmergencyAlert) (*types.EmergencyAlert, error)
	GetByAlertID(ctx context.Context, tx *gorm.DB, userID, alertID string) (*types.EmergencyAlert, error)
	Complete(ctx context.Context, tx *gorm.DB, alertID string, contactsNotified []string, completedAt time.Time) error
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID string) error
}

type emergencyAlertRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmergencyAlertRepo(db *gorm.DB, baseLog *logger.Logger) EmergencyAlertRepo {
	return &emergencyAlertRepo{db: db, log: baseLog.With("repo", "EmergencyAlertRepo")}
}

func (ar *emergencyAlertRepo) Create(ctx context.Context, tx *gorm.DB, alert *types.EmergencyAlert) (*types.EmergencyAlert, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if err := transaction.WithContext(ctx).Create(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

func (ar *emergencyAlertRepo) GetByAlertID(ctx context.Context, tx *gorm.DB, userID, alertID string) (*types.EmergencyAlert, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var alert types.EmergencyAlert
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND alert_id = ?", userID, alertID).
		First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (ar *emergencyAlertRepo) Complete(ctx context.Context, tx *gorm.DB, alertID string, contactsNotified []string, completedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(ctx).
		Model(&types.EmergencyAlert{}).
		Where("alert_id = ?", alertID).
		Updates(map[string]any{
			"status":            types.AlertCompleted,
			"contacts_notified": datatypes.JSONSlice[string](contactsNotified),
			"completed_at":      completedAt,
		}).Error
}

func (ar *emergencyAlertRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID string) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.EmergencyAlert{}).Error
}
