package types

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"index:idx_session_user_sid;not null;column:user_id" json:"user_id"`
	SessionID    string    `gorm:"index:idx_session_user_sid;not null;column:session_id" json:"session_id"`
	Title        string    `gorm:"column:title" json:"title"`
	MessageCount int       `gorm:"not null;default:0;column:message_count" json:"message_count"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (ChatSession) TableName() string {
	return "chat_session"
}
