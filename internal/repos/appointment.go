package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/types"
)

type AppointmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, appt *types.Appointment) (*types.Appointment, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID, statusFilter string) ([]*types.Appointment, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (*types.Appointment, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Appointment, error)
	Update(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID, updates map[string]any) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (int64, error)
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID string) error
}

type appointmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAppointmentRepo(db *gorm.DB, baseLog *logger.Logger) AppointmentRepo {
	return &appointmentRepo{db: db, log: baseLog.With("repo", "AppointmentRepo")}
}

func (ar *appointmentRepo) Create(ctx context.Context, tx *gorm.DB, appt *types.Appointment) (*types.Appointment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if err := transaction.WithContext(ctx).Create(appt).Error; err != nil {
		return nil, err
	}
	return appt, nil
}

func (ar *appointmentRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID, statusFilter string) ([]*types.Appointment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if statusFilter != "" {
		q = q.Where("status = ?", statusFilter)
	}
	var results []*types.Appointment
	if err := q.Order("date ASC, start_time ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *appointmentRepo) GetByID(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (*types.Appointment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var appt types.Appointment
	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&appt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appt, nil
}

func (ar *appointmentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Appointment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.Appointment
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

func (ar *appointmentRepo) Update(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID, updates map[string]any) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Appointment{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (ar *appointmentRepo) Delete(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.Appointment{})
	return res.RowsAffected, res.Error
}

func (ar *appointmentRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID string) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.Appointment{}).Error
}
