package models

import "github.com/google/uuid"

// LogFolder groups daily logs inside a project.
type LogFolder struct {
	Base
	ProjectID uuid.UUID `gorm:"type:uuid;index;not null" json:"project"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"createdBy"`
}
