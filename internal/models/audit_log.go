package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog records a security relevant event. Rows are inserted and never read by the API.
type AuditLog struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Action    string            `gorm:"type:varchar(64);not null;index" json:"action"`
	UserID    *uuid.UUID        `gorm:"type:uuid;index" json:"userId,omitempty"`
	UserEmail string            `json:"userEmail,omitempty"`
	IP        string            `gorm:"type:varchar(64)" json:"ip,omitempty"`
	Details   datatypes.JSONMap `json:"details,omitempty"`
	CreatedAt time.Time         `gorm:"index" json:"createdAt"`
}
