package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationPreferences struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	SMS   bool `json:"sms"`
}

// DefaultNotificationPreferences matches what a profile is seeded with on
// first access.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{Email: true, Push: true, SMS: false}
}

type UserProfile struct {
	ID                      uuid.UUID                                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                  string                                      `gorm:"uniqueIndex;not null;column:user_id" json:"user_id"`
	Email                   string                                      `gorm:"column:email" json:"email"`
	FullName                string                                      `gorm:"column:full_name" json:"full_name"`
	AvatarURL               string                                      `gorm:"column:avatar_url" json:"avatar_url"`
	Location                string                                      `gorm:"column:location" json:"location"`
	Phone                   string                                      `gorm:"column:phone" json:"phone"`
	DateOfBirth             string                                      `gorm:"column:date_of_birth" json:"date_of_birth"`
	Gender                  string                                      `gorm:"column:gender" json:"gender"`
	Language                string                                      `gorm:"default:en;column:language" json:"language"`
	Timezone                string                                      `gorm:"column:timezone" json:"timezone"`
	Theme                   string                                      `gorm:"default:light;column:theme" json:"theme"`
	NotificationPreferences datatypes.JSONType[NotificationPreferences] `gorm:"column:notification_preferences" json:"notification_preferences"`
	CreatedAt               time.Time                                   `gorm:"not null" json:"created_at"`
	UpdatedAt               time.Time                                   `gorm:"not null" json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profile"
}
