package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReminderPending   = "pending"
	ReminderSent      = "sent"
	ReminderCancelled = "cancelled"
)

type Reminder struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID   uuid.UUID  `gorm:"index;type:uuid;not null;column:appointment_id" json:"appointment_id"`
	UserID          string     `gorm:"index;not null;column:user_id" json:"user_id"`
	Title           string     `gorm:"column:title" json:"title"`
	AppointmentDate string     `gorm:"not null;column:appointment_date" json:"appointment_date"`
	AppointmentTime string     `gorm:"not null;column:appointment_time" json:"appointment_time"`
	ReminderTime    int        `gorm:"not null;column:reminder_time" json:"reminder_time"`
	Status          string     `gorm:"not null;default:pending;column:status" json:"status"`
	SentAt          *time.Time `gorm:"column:sent_at" json:"sent_at,omitempty"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}

func (Reminder) TableName() string {
	return "reminder"
}
