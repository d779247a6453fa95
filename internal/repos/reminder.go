package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/types"
)

type ReminderRepo interface {
	Create(ctx context.Context, tx *gorm.DB, reminder *types.Reminder) (*types.Reminder, error)
	GetPending(ctx context.Context, tx *gorm.DB) ([]*types.Reminder, error)
	GetPendingByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Reminder, error)
	MarkSent(ctx context.Context, tx *gorm.DB, id uuid.UUID, sentAt time.Time) error
	CancelByAppointmentID(ctx context.Context, tx *gorm.DB, appointmentID uuid.UUID) error
	DeleteByAppointmentID(ctx context.Context, tx *gorm.DB, appointmentID uuid.UUID) error
	GetByAppointmentID(ctx context.Context, tx *gorm.DB, appointmentID uuid.UUID) ([]*types.Reminder, error)
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID string) error
}

type reminderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReminderRepo(db *gorm.DB, baseLog *logger.Logger) ReminderRepo {
	return &reminderRepo{db: db, log: baseLog.With("repo", "ReminderRepo")}
}

func (rr *reminderRepo) Create(ctx context.Context, tx *gorm.DB, reminder *types.Reminder) (*types.Reminder, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if err := transaction.WithContext(ctx).Create(reminder).Error; err != nil {
		return nil, err
	}
	return reminder, nil
}

func (rr *reminderRepo) GetPending(ctx context.Context, tx *gorm.DB) ([]*types.Reminder, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.Reminder
	if err := transaction.WithContext(ctx).
		Where("status = ?", types.ReminderPending).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *reminderRepo) GetPendingByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Reminder, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.Reminder
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, types.ReminderPending).
		Order("appointment_date ASC, appointment_time ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *reminderRepo) MarkSent(ctx context.Context, tx *gorm.DB, id uuid.UUID, sentAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Reminder{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": types.ReminderSent, "sent_at": sentAt}).Error
}

func (rr *reminderRepo) CancelByAppointmentID(ctx context.Context, tx *gorm.DB, appointmentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Reminder{}).
		Where("appointment_id = ? AND status = ?", appointmentID, types.ReminderPending).
		Update("status", types.ReminderCancelled).Error
}

func (rr *reminderRepo) DeleteByAppointmentID(ctx context.Context, tx *gorm.DB, appointmentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Delete(&types.Reminder{}).Error
}

func (rr *reminderRepo) GetByAppointmentID(ctx context.Context, tx *gorm.DB, appointmentID uuid.UUID) ([]*types.Reminder, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.Reminder
	if err := transaction.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *reminderRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID string) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.Reminder{}).Error
}
