package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AlertInitiated = "initiated"
	AlertCompleted = "completed"
)

type EmergencyAlert struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	AlertID          string                      `gorm:"uniqueIndex;not null;column:alert_id" json:"alert_id"`
	UserID           string                      `gorm:"index;not null;column:user_id" json:"user_id"`
	Status           string                      `gorm:"not null;default:initiated;column:status" json:"status"`
	ContactsNotified datatypes.JSONSlice[string] `gorm:"column:contacts_notified" json:"contacts_notified"`
	Timestamp        time.Time                   `gorm:"not null;column:timestamp" json:"timestamp"`
	CompletedAt      *time.Time                  `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (EmergencyAlert) TableName() string {
	return "emergency_alert"
}
