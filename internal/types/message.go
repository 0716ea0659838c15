package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// Message is one turn of a session's conversation. Content is a JSON object;
// the usual shape is {"text": "..."} with an optional {"error": true} marker
// on failed assistant answers.
type Message struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	Session    *Session       `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	Role       Role           `gorm:"column:role;not null" json:"role"`
	Content    datatypes.JSON `gorm:"column:content;not null" json:"content"`
	TokenUsage datatypes.JSON `gorm:"column:token_usage" json:"token_usage,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

func (Message) TableName() string { return "message" }
