package services

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/authz"
	"github.com/site-tracker/engine/internal/report"
	"github.com/site-tracker/engine/internal/repository"
	"github.com/site-tracker/engine/pkg/logger"
	"go.uber.org/zap"
)

type ReportService interface {
	ProjectReport(ctx context.Context, p authz.Principal, projectID uuid.UUID, q ReportQuery) ([]byte, error)
}

// ReportQuery filters the logs included in a report. All fields are optional.
type ReportQuery struct {
	From     *time.Time
	To       *time.Time
	FolderID *uuid.UUID
	LogIDs   []uuid.UUID
}

type reportService struct {
	access
	uploadDir string
	now       Clock
}

func NewReportService(projects repository.ProjectRepository, logs repository.LogRepository, attachments repository.AttachmentRepository, uploadDir string) ReportService {
	return &reportService{
		access:    access{projects: projects, logs: logs, attachments: attachments},
		uploadDir: uploadDir,
		now:       systemClock,
	}
}

var _ ReportService = (*reportService)(nil)

// ProjectReport renders the whole document in memory so a failure can still be reported as JSON.
func (s *reportService) ProjectReport(ctx context.Context, p authz.Principal, projectID uuid.UUID, q ReportQuery) ([]byte, error) {
	proj, err := s.project(ctx, p, projectID)
	if err != nil {
		return nil, internal(err, "Unable to generate report.")
	}
	logs, _, err := s.logs.List(ctx, repository.LogFilter{
		ProjectID: projectID,
		From:      q.From,
		To:        q.To,
		FolderID:  q.FolderID,
		IDs:       q.LogIDs,
	})
	if err != nil {
		return nil, internal(err, "Unable to generate report.")
	}
	atts, err := s.attachments.ListByLogs(ctx, idsOf(logs))
	if err != nil {
		return nil, internal(err, "Unable to generate report.")
	}

	var buf bytes.Buffer
	err = report.Render(&buf, report.Input{
		Project:     *proj,
		Logs:        logs,
		Attachments: atts,
		GeneratedAt: s.now(),
		UploadDir:   s.uploadDir,
	})
	if err != nil {
		return nil, internal(err, "Unable to generate report.")
	}
	logger.FromContext(ctx).Info("report generated", zap.String("project_id", projectID.String()), zap.Int("logs", len(logs)), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}
