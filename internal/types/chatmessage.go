package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Sentiment is the LLM-derived rating of a single user message. Score is
// always within [-5, 5] and Mood one of the seven mood values; anything else
// is coerced before the struct is built.
type Sentiment struct {
	Score   float64  `json:"score"`
	Mood    string   `json:"mood"`
	Factors []string `json:"factors"`
}

type ChatMessage struct {
	ID        uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string                         `gorm:"index;not null;column:user_id" json:"user_id"`
	SessionID string                         `gorm:"index;not null;column:session_id" json:"session_id"`
	Subject   string                         `gorm:"column:subject" json:"subject"`
	Message   string                         `gorm:"not null;column:message" json:"message"`
	Response  string                         `gorm:"column:response" json:"response"`
	Sentiment datatypes.JSONType[Sentiment]  `gorm:"column:sentiment" json:"sentiment"`
	Timestamp time.Time                      `gorm:"index;not null;column:timestamp" json:"timestamp"`
}

func (ChatMessage) TableName() string {
	return "chat_message"
}
