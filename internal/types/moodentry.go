package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MoodSourceManual = "manual"
	MoodSourceChat   = "chat_message"
)

// ValidMoods is the fixed mood vocabulary. Unrecognized values coming out of
// sentiment analysis are coerced to "neutral"; manual entries are rejected.
var ValidMoods = []string{"very_happy", "happy", "neutral", "sad", "very_sad", "anxious", "angry"}

func IsValidMood(mood string) bool {
	for _, m := range ValidMoods {
		if m == mood {
			return true
		}
	}
	return false
}

// ClampMoodScore forces a score into the [-5, 5] band.
func ClampMoodScore(score float64) float64 {
	if score < -5 {
		return -5
	}
	if score > 5 {
		return 5
	}
	return score
}

type MoodEntry struct {
	ID        uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string                      `gorm:"index;not null;column:user_id" json:"user_id"`
	Date      string                      `gorm:"index;not null;column:date" json:"date"`
	Mood      string                      `gorm:"not null;column:mood" json:"mood"`
	MoodScore float64                     `gorm:"not null;column:mood_score" json:"mood_score"`
	Factors   datatypes.JSONSlice[string] `gorm:"column:factors" json:"factors"`
	Notes     string                      `gorm:"column:notes" json:"notes"`
	Source    string                      `gorm:"not null;default:manual;column:source" json:"source"`
	MessageID string                      `gorm:"column:message_id" json:"message_id,omitempty"`
	SessionID string                      `gorm:"column:session_id" json:"session_id,omitempty"`
	CreatedAt time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"not null" json:"updated_at"`
}

func (MoodEntry) TableName() string {
	return "mood_entry"
}
