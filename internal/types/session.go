package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Session is the isolation boundary: it owns one knowledge store directory,
// its documents, and its conversation history.
type Session struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string         `gorm:"column:title;not null" json:"title"`
	Settings  datatypes.JSON `gorm:"column:settings" json:"settings,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Session) TableName() string { return "session" }
