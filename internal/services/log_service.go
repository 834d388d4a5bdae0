package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/audit"
	"github.com/site-tracker/engine/internal/authz"
	"github.com/site-tracker/engine/internal/models"
	"github.com/site-tracker/engine/internal/repository"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"github.com/site-tracker/engine/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type LogService interface {
	CreateLog(ctx context.Context, p authz.Principal, projectID uuid.UUID, in LogInput) (*models.DailyLog, error)
	ListLogs(ctx context.Context, p authz.Principal, projectID uuid.UUID, q LogQuery) (*LogPage, error)
	GetLog(ctx context.Context, p authz.Principal, id uuid.UUID) (*LogDetail, error)
	ListLogAttachments(ctx context.Context, p authz.Principal, id uuid.UUID) ([]models.Attachment, error)
	ReplaceLog(ctx context.Context, p authz.Principal, id uuid.UUID, in LogInput) (*models.DailyLog, error)
	PatchLog(ctx context.Context, p authz.Principal, id uuid.UUID, in LogPatch) (*models.DailyLog, error)
	DeleteLog(ctx context.Context, p authz.Principal, id uuid.UUID) error
}

type LogInput struct {
	Date           time.Time
	Weather        models.Weather
	FolderID       *uuid.UUID
	SiteArea       string
	ActivityType   string
	Summary        string
	IssuesRisks    string
	NextSteps      string
	PotentialClaim bool
	DelayCause     string
	InstructionRef string
	Impact         string
	CostNote       string
}

// LogPatch carries only the fields to change. ClearFolder detaches the log from its folder.
type LogPatch struct {
	Date           *time.Time
	Weather        *models.Weather
	FolderID       *uuid.UUID
	ClearFolder    bool
	SiteArea       *string
	ActivityType   *string
	Summary        *string
	IssuesRisks    *string
	NextSteps      *string
	PotentialClaim *bool
	DelayCause     *string
	InstructionRef *string
	Impact         *string
	CostNote       *string
}

type LogQuery struct {
	From         *time.Time
	To           *time.Time
	ActivityType string
	FolderID     *uuid.UUID
	Page         int
	Limit        int
}

type LogPage struct {
	Logs        []models.DailyLog   `json:"logs"`
	Attachments []models.Attachment `json:"attachments"`
	Total       int64               `json:"total"`
}

type LogDetail struct {
	Log         *models.DailyLog    `json:"log"`
	Attachments []models.Attachment `json:"attachments"`
}

type logService struct {
	access
	purger Purger
	audit  audit.Recorder
}

func NewLogService(projects repository.ProjectRepository, folders repository.FolderRepository, logs repository.LogRepository, attachments repository.AttachmentRepository, purger Purger, recorder audit.Recorder) LogService {
	return &logService{
		access: access{projects: projects, folders: folders, logs: logs, attachments: attachments},
		purger: purger,
		audit:  recorder,
	}
}

var _ LogService = (*logService)(nil)

func (in *LogInput) normalize() error {
	if in.Date.IsZero() || blank(in.SiteArea) || blank(in.ActivityType) || blank(in.Summary) {
		return appErr.Invalid("Missing required log fields.")
	}
	if !validActivity(in.ActivityType) {
		return appErr.Invalid("Invalid activity type.")
	}
	if in.Weather.Condition == "" {
		in.Weather.Condition = "other"
	}
	if !validWeather(in.Weather.Condition) {
		return appErr.Invalid("Invalid weather condition.")
	}
	in.Date = in.Date.UTC()
	return nil
}

// checkFolder requires the folder to exist and belong to projectID.
func (s *logService) checkFolder(ctx context.Context, projectID uuid.UUID, folderID *uuid.UUID) error {
	if folderID == nil {
		return nil
	}
	var f models.LogFolder
	if err := s.folders.GetByID(ctx, *folderID, &f); err != nil {
		return err
	}
	if f.ProjectID != projectID {
		return appErr.Invalid("Folder does not belong to this project.")
	}
	return nil
}

func (s *logService) CreateLog(ctx context.Context, p authz.Principal, projectID uuid.UUID, in LogInput) (*models.DailyLog, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if _, err := s.project(ctx, p, projectID); err != nil {
		return nil, internal(err, "Unable to create daily log.")
	}
	if err := s.checkFolder(ctx, projectID, in.FolderID); err != nil {
		return nil, internal(err, "Unable to create daily log.")
	}

	l := &models.DailyLog{ProjectID: projectID, CreatedBy: p.UserID}
	in.apply(l)
	if err := s.logs.Create(ctx, l); err != nil {
		return nil, internal(err, "Unable to create daily log.")
	}
	logger.FromContext(ctx).Info("daily log created", zap.String("log_id", l.ID.String()), zap.String("project_id", projectID.String()))
	_ = s.audit.Record(ctx, audit.Event{Action: "log.create", Actor: p, Details: map[string]any{"logId": l.ID.String(), "projectId": projectID.String()}})
	return l, nil
}

func (in LogInput) apply(l *models.DailyLog) {
	l.Date = in.Date
	l.Weather = in.Weather
	l.FolderID = in.FolderID
	l.SiteArea = in.SiteArea
	l.ActivityType = in.ActivityType
	l.Summary = in.Summary
	l.IssuesRisks = in.IssuesRisks
	l.NextSteps = in.NextSteps
	l.PotentialClaim = in.PotentialClaim
	l.DelayCause = in.DelayCause
	l.InstructionRef = in.InstructionRef
	l.Impact = in.Impact
	l.CostNote = in.CostNote
}

func (s *logService) ListLogs(ctx context.Context, p authz.Principal, projectID uuid.UUID, q LogQuery) (*LogPage, error) {
	if _, err := s.project(ctx, p, projectID); err != nil {
		return nil, internal(err, "Unable to fetch daily logs.")
	}
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	logs, total, err := s.logs.List(ctx, repository.LogFilter{
		ProjectID:    projectID,
		From:         q.From,
		To:           q.To,
		ActivityType: q.ActivityType,
		FolderID:     q.FolderID,
		Offset:       (page - 1) * limit,
		Limit:        limit,
	})
	if err != nil {
		return nil, internal(err, "Unable to fetch daily logs.")
	}
	atts, err := s.attachments.ListByLogs(ctx, idsOf(logs))
	if err != nil {
		return nil, internal(err, "Unable to fetch daily logs.")
	}
	return &LogPage{Logs: logs, Attachments: atts, Total: total}, nil
}

func (s *logService) GetLog(ctx context.Context, p authz.Principal, id uuid.UUID) (*LogDetail, error) {
	l, err := s.log(ctx, p, id)
	if err != nil {
		return nil, internal(err, "Unable to fetch daily log.")
	}
	atts, err := s.attachments.ListByLogs(ctx, []uuid.UUID{l.ID})
	if err != nil {
		return nil, internal(err, "Unable to fetch daily log.")
	}
	return &LogDetail{Log: l, Attachments: atts}, nil
}

func (s *logService) ListLogAttachments(ctx context.Context, p authz.Principal, id uuid.UUID) ([]models.Attachment, error) {
	l, err := s.log(ctx, p, id)
	if err != nil {
		return nil, internal(err, "Unable to fetch attachments.")
	}
	atts, err := s.attachments.ListByLogs(ctx, []uuid.UUID{l.ID})
	if err != nil {
		return nil, internal(err, "Unable to fetch attachments.")
	}
	return atts, nil
}

func (s *logService) ReplaceLog(ctx context.Context, p authz.Principal, id uuid.UUID, in LogInput) (*models.DailyLog, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	l, err := s.log(ctx, p, id)
	if err != nil {
		return nil, internal(err, "Unable to update daily log.")
	}
	if err := s.checkFolder(ctx, l.ProjectID, in.FolderID); err != nil {
		return nil, internal(err, "Unable to update daily log.")
	}
	in.apply(l)
	return s.save(ctx, p, l)
}

func (s *logService) PatchLog(ctx context.Context, p authz.Principal, id uuid.UUID, in LogPatch) (*models.DailyLog, error) {
	l, err := s.log(ctx, p, id)
	if err != nil {
		return nil, internal(err, "Unable to update daily log.")
	}
	full := LogInput{
		Date: l.Date, Weather: l.Weather, FolderID: l.FolderID, SiteArea: l.SiteArea,
		ActivityType: l.ActivityType, Summary: l.Summary, IssuesRisks: l.IssuesRisks,
		NextSteps: l.NextSteps, PotentialClaim: l.PotentialClaim, DelayCause: l.DelayCause,
		InstructionRef: l.InstructionRef, Impact: l.Impact, CostNote: l.CostNote,
	}
	in.merge(&full)
	if err := full.normalize(); err != nil {
		return nil, err
	}
	if in.FolderID != nil {
		if err := s.checkFolder(ctx, l.ProjectID, in.FolderID); err != nil {
			return nil, internal(err, "Unable to update daily log.")
		}
	}
	full.apply(l)
	return s.save(ctx, p, l)
}

func (in LogPatch) merge(dst *LogInput) {
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	if in.Date != nil {
		dst.Date = *in.Date
	}
	if in.Weather != nil {
		dst.Weather = *in.Weather
	}
	if in.ClearFolder {
		dst.FolderID = nil
	} else if in.FolderID != nil {
		dst.FolderID = in.FolderID
	}
	if in.PotentialClaim != nil {
		dst.PotentialClaim = *in.PotentialClaim
	}
	setStr(&dst.SiteArea, in.SiteArea)
	setStr(&dst.ActivityType, in.ActivityType)
	setStr(&dst.Summary, in.Summary)
	setStr(&dst.IssuesRisks, in.IssuesRisks)
	setStr(&dst.NextSteps, in.NextSteps)
	setStr(&dst.DelayCause, in.DelayCause)
	setStr(&dst.InstructionRef, in.InstructionRef)
	setStr(&dst.Impact, in.Impact)
	setStr(&dst.CostNote, in.CostNote)
}

func (s *logService) save(ctx context.Context, p authz.Principal, l *models.DailyLog) (*models.DailyLog, error) {
	if err := s.logs.Update(ctx, l); err != nil {
		return nil, internal(err, "Unable to update daily log.")
	}
	_ = s.audit.Record(ctx, audit.Event{Action: "log.update", Actor: p, Details: map[string]any{"logId": l.ID.String()}})
	return l, nil
}

// DeleteLog purges the log's remote files, then removes the log and its attachments.
func (s *logService) DeleteLog(ctx context.Context, p authz.Principal, id uuid.UUID) error {
	l, err := s.log(ctx, p, id)
	if err != nil {
		return internal(err, "Unable to delete daily log.")
	}
	atts, err := s.attachments.ListByLogs(ctx, []uuid.UUID{l.ID})
	if err != nil {
		return internal(err, "Unable to delete daily log.")
	}
	_ = s.purger.Purge(ctx, refsOf(atts)...)

	if err := s.logs.DeleteCascade(ctx, l.ID); err != nil {
		return internal(err, "Unable to delete daily log.")
	}
	logger.FromContext(ctx).Info("daily log deleted", zap.String("log_id", id.String()), zap.Int("attachments", len(atts)))
	_ = s.audit.Record(ctx, audit.Event{Action: "log.delete", Actor: p, Details: map[string]any{"logId": id.String()}})
	return nil
}

func idsOf(logs []models.DailyLog) []uuid.UUID {
	ids := make([]uuid.UUID, len(logs))
	for i, l := range logs {
		ids[i] = l.ID
	}
	return ids
}
