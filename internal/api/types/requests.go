package types

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/models"
	"github.com/site-tracker/engine/internal/services"
	appErr "github.com/site-tracker/engine/pkg/errors"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type LoginResponse struct {
	Token string         `json:"token"`
	User  models.Profile `json:"user"`
}

type MessageResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}

type ProjectRequest struct {
	Name        string `json:"name"`
	Client      string `json:"client"`
	SiteAddress string `json:"siteAddress"`
	StartDate   Date   `json:"startDate"`
	EndDate     Date   `json:"endDate"`
	Status      string `json:"status"`
}

func (r ProjectRequest) Input() services.ProjectInput {
	return services.ProjectInput{
		Name:        strings.TrimSpace(r.Name),
		Client:      strings.TrimSpace(r.Client),
		SiteAddress: strings.TrimSpace(r.SiteAddress),
		StartDate:   r.StartDate.Time,
		EndDate:     r.EndDate.Ptr(),
		Status:      r.Status,
	}
}

type ProjectPatchRequest struct {
	Name        *string `json:"name"`
	Client      *string `json:"client"`
	SiteAddress *string `json:"siteAddress"`
	StartDate   *Date   `json:"startDate"`
	EndDate     *Date   `json:"endDate"`
	Status      *string `json:"status"`
	Archived    *bool   `json:"archived"`
}

func (r ProjectPatchRequest) Patch() services.ProjectPatch {
	p := services.ProjectPatch{
		Name:        r.Name,
		Client:      r.Client,
		SiteAddress: r.SiteAddress,
		Status:      r.Status,
		Archived:    r.Archived,
		EndDate:     r.EndDate.Ptr(),
	}
	if r.StartDate != nil && !r.StartDate.IsZero() {
		t := r.StartDate.Time
		p.StartDate = &t
	}
	return p
}

type FolderRequest struct {
	Name string `json:"name"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type WeatherRequest struct {
	Condition string `json:"condition"`
	Type      string `json:"type"`
	Notes     string `json:"notes"`
}

// LogRequest is the body of log create, replace and patch. Folder is kept raw so a patch
// can tell an explicit null (detach) from an absent field.
type LogRequest struct {
	Date           *Date           `json:"date"`
	Weather        *WeatherRequest `json:"weather"`
	Condition      string          `json:"condition"`
	Folder         json.RawMessage `json:"folder"`
	SiteArea       *string         `json:"siteArea"`
	ActivityType   *string         `json:"activityType"`
	Summary        *string         `json:"summary"`
	IssuesRisks    *string         `json:"issuesRisks"`
	NextSteps      *string         `json:"nextSteps"`
	PotentialClaim *bool           `json:"potentialClaim"`
	DelayCause     *string         `json:"delayCause"`
	InstructionRef *string         `json:"instructionRef"`
	Impact         *string         `json:"impact"`
	CostNote       *string         `json:"costNote"`
}

func (r LogRequest) weather() *models.Weather {
	switch {
	case r.Weather != nil:
		cond := r.Weather.Condition
		if cond == "" {
			cond = r.Weather.Type
		}
		return &models.Weather{Condition: cond, Notes: r.Weather.Notes}
	case r.Condition != "":
		return &models.Weather{Condition: r.Condition}
	}
	return nil
}

// folder reports the requested folder. clear is true for an explicit null or empty string.
func (r LogRequest) folder() (id *uuid.UUID, clear bool, err error) {
	raw := bytes.TrimSpace(r.Folder)
	if len(raw) == 0 {
		return nil, false, nil
	}
	if bytes.Equal(raw, []byte("null")) {
		return nil, true, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, appErr.Invalid("Invalid folder.")
	}
	if s == "" {
		return nil, true, nil
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return nil, false, appErr.Invalid("Invalid folder.")
	}
	return &parsed, false, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Input builds a full log input; missing required fields are left empty for the service to reject.
func (r LogRequest) Input() (services.LogInput, error) {
	folderID, _, err := r.folder()
	if err != nil {
		return services.LogInput{}, err
	}
	in := services.LogInput{
		FolderID:       folderID,
		SiteArea:       strings.TrimSpace(deref(r.SiteArea)),
		ActivityType:   deref(r.ActivityType),
		Summary:        deref(r.Summary),
		IssuesRisks:    deref(r.IssuesRisks),
		NextSteps:      deref(r.NextSteps),
		PotentialClaim: deref(r.PotentialClaim),
		DelayCause:     deref(r.DelayCause),
		InstructionRef: deref(r.InstructionRef),
		Impact:         deref(r.Impact),
		CostNote:       deref(r.CostNote),
	}
	if r.Date != nil {
		in.Date = r.Date.Time
	}
	if w := r.weather(); w != nil {
		in.Weather = *w
	}
	return in, nil
}

func (r LogRequest) Patch() (services.LogPatch, error) {
	folderID, clear, err := r.folder()
	if err != nil {
		return services.LogPatch{}, err
	}
	p := services.LogPatch{
		Weather:        r.weather(),
		FolderID:       folderID,
		ClearFolder:    clear,
		SiteArea:       r.SiteArea,
		ActivityType:   r.ActivityType,
		Summary:        r.Summary,
		IssuesRisks:    r.IssuesRisks,
		NextSteps:      r.NextSteps,
		PotentialClaim: r.PotentialClaim,
		DelayCause:     r.DelayCause,
		InstructionRef: r.InstructionRef,
		Impact:         r.Impact,
		CostNote:       r.CostNote,
	}
	if r.Date != nil && !r.Date.IsZero() {
		t := r.Date.Time
		p.Date = &t
	}
	return p, nil
}

// ProjectListQuery holds the query string of GET /api/projects.
type ProjectListQuery struct {
	Status   string `query:"status" validate:"omitempty,oneof=active archived completed on-hold"`
	Archived string `query:"archived" validate:"omitempty,oneof=true false"`
}

func (q ProjectListQuery) Filters() services.ProjectFilters {
	f := services.ProjectFilters{Status: q.Status}
	if q.Archived != "" {
		archived := q.Archived == "true"
		f.Archived = &archived
	}
	return f
}

// LogListQuery holds the query string of GET /api/projects/{projectId}/logs.
type LogListQuery struct {
	From         string `query:"from"`
	To           string `query:"to"`
	ActivityType string `query:"activityType" validate:"omitempty,oneof=excavation rebar concrete_pour drainage masonry inspection delivery other"`
	Folder       string `query:"folder" validate:"omitempty,uuid"`
	Page         int    `query:"page" validate:"gte=0"`
	Limit        int    `query:"limit" validate:"gte=0"`
}

// ReportQueryParams holds the query string of both report routes.
type ReportQueryParams struct {
	From   string   `query:"from"`
	To     string   `query:"to"`
	Folder string   `query:"folder" validate:"omitempty,uuid"`
	LogIDs []string `query:"logIds" validate:"dive,uuid"`
}
