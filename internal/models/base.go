package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the identifier and timestamps shared by every table.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a random UUID so ids do not depend on database extensions.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All returns every model that needs migration, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&LogFolder{},
		&DailyLog{},
		&Attachment{},
		&Comment{},
		&AuditLog{},
	}
}
