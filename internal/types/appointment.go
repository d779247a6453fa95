package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

func IsValidAppointmentStatus(status string) bool {
	switch status {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string    `gorm:"index;not null;column:user_id" json:"user_id"`
	SpecialistID   string    `gorm:"not null;column:specialist_id" json:"specialist_id"`
	SpecialistName string    `gorm:"column:specialist_name" json:"specialist_name"`
	Title          string    `gorm:"column:title" json:"title"`
	Description    string    `gorm:"column:description" json:"description"`
	Date           string    `gorm:"index;not null;column:date" json:"date"`
	StartTime      string    `gorm:"not null;column:start_time" json:"start_time"`
	EndTime        string    `gorm:"column:end_time" json:"end_time"`
	Type           string    `gorm:"default:therapy;column:type" json:"type"`
	Location       string    `gorm:"column:location" json:"location"`
	ReminderTime   int       `gorm:"column:reminder_time" json:"reminder_time"`
	Status         string    `gorm:"not null;default:scheduled;column:status" json:"status"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointment"
}
