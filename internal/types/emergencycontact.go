package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotifyForCrisis marks a contact as a recipient of crisis alerts.
const NotifyForCrisis = "crisis"

type EmergencyContact struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string                      `gorm:"index;not null;column:user_id" json:"user_id"`
	Name         string                      `gorm:"not null;column:name" json:"name"`
	Relationship string                      `gorm:"not null;column:relationship" json:"relationship"`
	Phone        string                      `gorm:"column:phone" json:"phone"`
	Email        string                      `gorm:"column:email" json:"email"`
	NotifyFor    datatypes.JSONSlice[string] `gorm:"column:notify_for" json:"notify_for"`
	CreatedAt    time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time                   `gorm:"not null" json:"updated_at"`
}

func (EmergencyContact) TableName() string {
	return "emergency_contact"
}

func (c *EmergencyContact) NotifiesFor(event string) bool {
	for _, e := range c.NotifyFor {
		if e == event {
			return true
		}
	}
	return false
}
