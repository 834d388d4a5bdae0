package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Resource kinds in the object store.
const (
	ResourceImage = "image"
	ResourceRaw   = "raw"
)

// Attachment is a file uploaded against a daily log. The bytes live in the object store.
type Attachment struct {
	Base
	DailyLogID   uuid.UUID                   `gorm:"type:uuid;index;not null" json:"dailyLog"`
	FileURL      string                      `gorm:"not null" json:"fileUrl"`
	FileName     string                      `gorm:"not null" json:"fileName"`
	MimeType     string                      `gorm:"type:varchar(64);not null" json:"mimeType"`
	FileSize     int64                       `gorm:"not null" json:"fileSize"`
	PublicID     string                      `gorm:"index" json:"publicId"`
	ResourceType string                      `gorm:"type:varchar(16)" json:"resourceType"`
	Caption      string                      `gorm:"size:200" json:"caption"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	Comments     []Comment                   `gorm:"foreignKey:AttachmentID" json:"comments"`
	UploadedBy   uuid.UUID                   `gorm:"type:uuid;not null" json:"uploadedBy"`
	UploadedAt   time.Time                   `gorm:"not null;index" json:"uploadedAt"`
}

// IsImage reports whether the attachment can be embedded in a report.
func (a *Attachment) IsImage() bool {
	return a.MimeType == "image/jpeg" || a.MimeType == "image/png"
}

// Label is the caption, falling back to the original file name.
func (a *Attachment) Label() string {
	if a.Caption != "" {
		return a.Caption
	}
	return a.FileName
}

// Comment is an append-only note on an attachment.
type Comment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AttachmentID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	Text         string    `gorm:"size:500;not null" json:"text"`
	CreatedBy    uuid.UUID `gorm:"type:uuid;not null" json:"createdBy"`
	AuthorName   string    `json:"authorName"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}

func (Comment) TableName() string { return "attachment_comments" }
