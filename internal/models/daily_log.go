package models

import (
	"time"

	"github.com/google/uuid"
)

// Weather conditions.
var WeatherConditions = []string{"sunny", "rainy", "windy", "cloudy", "other"}

// Activity types.
var ActivityTypes = []string{"excavation", "rebar", "concrete_pour", "drainage", "masonry", "inspection", "delivery", "other"}

// Weather is stored inline on the log row.
type Weather struct {
	Condition string `gorm:"type:varchar(16);not null;default:other" json:"condition"`
	Notes     string `json:"notes"`
}

// DailyLog is one dated site diary entry.
type DailyLog struct {
	Base
	ProjectID      uuid.UUID  `gorm:"type:uuid;index;not null;<-:create" json:"project"`
	FolderID       *uuid.UUID `gorm:"type:uuid;index" json:"folder"`
	Date           time.Time  `gorm:"not null;index" json:"date"`
	Weather        Weather    `gorm:"embedded;embeddedPrefix:weather_" json:"weather"`
	SiteArea       string     `gorm:"not null" json:"siteArea"`
	ActivityType   string     `gorm:"type:varchar(32);not null;index" json:"activityType"`
	Summary        string     `gorm:"type:text;not null" json:"summary"`
	IssuesRisks    string     `gorm:"type:text" json:"issuesRisks,omitempty"`
	NextSteps      string     `gorm:"type:text" json:"nextSteps,omitempty"`
	PotentialClaim bool       `gorm:"not null;default:false" json:"potentialClaim"`
	DelayCause     string     `json:"delayCause,omitempty"`
	InstructionRef string     `json:"instructionRef,omitempty"`
	Impact         string     `json:"impact,omitempty"`
	CostNote       string     `json:"costNote,omitempty"`
	CreatedBy      uuid.UUID  `gorm:"type:uuid;not null;<-:create" json:"createdBy"`
}
