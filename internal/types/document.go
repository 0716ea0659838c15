package types

import (
	"time"

	"github.com/google/uuid"
)

type DocSource string

const (
	DocSourceUpload DocSource = "upload"
	DocSourceRemote DocSource = "remote"
)

type DocStatus string

const (
	DocStatusPending     DocStatus = "pending"
	DocStatusDownloading DocStatus = "downloading"
	DocStatusInserting   DocStatus = "inserting"
	DocStatusReady       DocStatus = "ready"
	DocStatusError       DocStatus = "error"
)

// Terminal reports whether no further status transitions may occur.
func (s DocStatus) Terminal() bool {
	return s == DocStatusReady || s == DocStatusError
}

type Document struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID       uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	Session         *Session  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	SourceType      DocSource `gorm:"column:source_type;not null" json:"source_type"`
	Title           string    `gorm:"column:title" json:"title"`
	RemoteID        string    `gorm:"column:remote_id" json:"remote_id,omitempty"`
	Authors         string    `gorm:"column:authors" json:"authors,omitempty"`
	PublishedAt     string    `gorm:"column:published_at" json:"published_at,omitempty"`
	PDFURL          string    `gorm:"column:pdf_url" json:"pdf_url,omitempty"`
	LocalPDFPath    string    `gorm:"column:local_pdf_path" json:"-"`
	Status          DocStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	ProcessingPhase *string   `gorm:"column:processing_phase" json:"processing_phase,omitempty"`
	ProgressPercent int       `gorm:"column:progress_percent;not null;default:0" json:"progress_percent"`
	InsertLog       string    `gorm:"column:insert_log;type:text" json:"log,omitempty"`
	Pages           int       `gorm:"column:pages" json:"pages,omitempty"`
	Tokens          int       `gorm:"column:tokens" json:"tokens,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (Document) TableName() string { return "document" }
