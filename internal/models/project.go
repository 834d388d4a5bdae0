package models

import (
	"time"

	"github.com/google/uuid"
)

// Project statuses.
const (
	ProjectActive    = "active"
	ProjectArchived  = "archived"
	ProjectCompleted = "completed"
	ProjectOnHold    = "on-hold"
)

// Project is a construction site owned by the user who created it.
type Project struct {
	Base
	Name        string     `gorm:"not null" json:"name"`
	Client      string     `gorm:"not null" json:"client"`
	SiteAddress string     `gorm:"not null" json:"siteAddress"`
	StartDate   time.Time  `gorm:"not null" json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Status      string     `gorm:"type:varchar(16);not null;default:active;index" json:"status"`
	Archived    bool       `gorm:"not null;default:false;index" json:"archived"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;index;not null;<-:create" json:"createdBy"`
}
