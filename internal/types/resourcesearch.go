package types

import (
	"time"

	"github.com/google/uuid"
)

// ResourceSearch logs a resource directory lookup for later analysis.
type ResourceSearch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"index;not null;column:user_id" json:"user_id"`
	Location  string    `gorm:"column:location" json:"location"`
	Type      string    `gorm:"column:type" json:"type"`
	Keyword   string    `gorm:"column:keyword" json:"keyword"`
	Timestamp time.Time `gorm:"not null;column:timestamp" json:"timestamp"`
}

func (ResourceSearch) TableName() string {
	return "resource_search"
}
