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

type ProjectService interface {
	CreateProject(ctx context.Context, p authz.Principal, in ProjectInput) (*models.Project, error)
	ListProjects(ctx context.Context, p authz.Principal, f ProjectFilters) ([]models.Project, error)
	GetProject(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Project, error)
	ReplaceProject(ctx context.Context, p authz.Principal, id uuid.UUID, in ProjectInput) (*models.Project, error)
	PatchProject(ctx context.Context, p authz.Principal, id uuid.UUID, in ProjectPatch) (*models.Project, error)
	ArchiveProject(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Project, error)
	DeleteProject(ctx context.Context, p authz.Principal, id uuid.UUID) error
}

type ProjectInput struct {
	Name        string
	Client      string
	SiteAddress string
	StartDate   time.Time
	EndDate     *time.Time
	Status      string
}

// ProjectPatch carries only the fields to change.
type ProjectPatch struct {
	Name        *string
	Client      *string
	SiteAddress *string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *string
	Archived    *bool
}

type ProjectFilters struct {
	Status   string
	Archived *bool
}

type projectService struct {
	access
	purger Purger
	audit  audit.Recorder
}

func NewProjectService(projects repository.ProjectRepository, folders repository.FolderRepository, logs repository.LogRepository, attachments repository.AttachmentRepository, purger Purger, recorder audit.Recorder) ProjectService {
	return &projectService{
		access: access{projects: projects, folders: folders, logs: logs, attachments: attachments},
		purger: purger,
		audit:  recorder,
	}
}

var _ ProjectService = (*projectService)(nil)

func (in ProjectInput) validate() error {
	if blank(in.Name) || blank(in.Client) || blank(in.SiteAddress) || in.StartDate.IsZero() {
		return appErr.Invalid("Missing required project fields.")
	}
	if in.Status != "" && !validProjectStatus(in.Status) {
		return appErr.Invalid("Invalid project status.")
	}
	return nil
}

func (s *projectService) CreateProject(ctx context.Context, p authz.Principal, in ProjectInput) (*models.Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.ProjectActive
	}

	proj := &models.Project{
		Name:        in.Name,
		Client:      in.Client,
		SiteAddress: in.SiteAddress,
		StartDate:   in.StartDate.UTC(),
		EndDate:     utcPtr(in.EndDate),
		Status:      status,
		Archived:    status == models.ProjectArchived,
		CreatedBy:   p.UserID,
	}
	if err := s.projects.Create(ctx, proj); err != nil {
		return nil, internal(err, "Unable to create project.")
	}

	logger.FromContext(ctx).Info("project created", zap.String("project_id", proj.ID.String()), zap.String("user_id", p.UserID.String()))
	_ = s.audit.Record(ctx, audit.Event{Action: "project.create", Actor: p, Details: map[string]any{"projectId": proj.ID.String(), "name": proj.Name}})
	return proj, nil
}

func (s *projectService) ListProjects(ctx context.Context, p authz.Principal, f ProjectFilters) ([]models.Project, error) {
	filter := repository.ProjectFilter{Status: f.Status, Archived: f.Archived}
	if !p.IsAdmin() {
		owner := p.UserID
		filter.OwnerID = &owner
	}
	out, err := s.projects.List(ctx, filter)
	if err != nil {
		return nil, internal(err, "Unable to fetch projects.")
	}
	return out, nil
}

func (s *projectService) GetProject(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Project, error) {
	proj, err := s.project(ctx, p, id)
	if err != nil {
		return nil, internal(err, "Unable to fetch project.")
	}
	return proj, nil
}

func (s *projectService) ReplaceProject(ctx context.Context, p authz.Principal, id uuid.UUID, in ProjectInput) (*models.Project, error) {
	if err := authz.RequireAdmin(p); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	proj, err := s.project(ctx, p, id)
	if err != nil {
		return nil, internal(err, "Unable to update project.")
	}

	proj.Name = in.Name
	proj.Client = in.Client
	proj.SiteAddress = in.SiteAddress
	proj.StartDate = in.StartDate.UTC()
	proj.EndDate = utcPtr(in.EndDate)
	if in.Status != "" {
		proj.Status = in.Status
	}
	return s.save(ctx, p, proj)
}

func (s *projectService) PatchProject(ctx context.Context, p authz.Principal, id uuid.UUID, in ProjectPatch) (*models.Project, error) {
	if err := authz.RequireAdmin(p); err != nil {
		return nil, err
	}
	if in.Status != nil && !validProjectStatus(*in.Status) {
		return nil, appErr.Invalid("Invalid project status.")
	}
	for _, v := range []*string{in.Name, in.Client, in.SiteAddress} {
		if v != nil && blank(*v) {
			return nil, appErr.Invalid("Missing required project fields.")
		}
	}
	proj, err := s.project(ctx, p, id)
	if err != nil {
		return nil, internal(err, "Unable to update project.")
	}

	if in.Name != nil {
		proj.Name = *in.Name
	}
	if in.Client != nil {
		proj.Client = *in.Client
	}
	if in.SiteAddress != nil {
		proj.SiteAddress = *in.SiteAddress
	}
	if in.StartDate != nil {
		proj.StartDate = in.StartDate.UTC()
	}
	if in.EndDate != nil {
		proj.EndDate = utcPtr(in.EndDate)
	}
	if in.Status != nil {
		proj.Status = *in.Status
	}
	if in.Archived != nil {
		proj.Archived = *in.Archived
	}
	return s.save(ctx, p, proj)
}

func (s *projectService) save(ctx context.Context, p authz.Principal, proj *models.Project) (*models.Project, error) {
	if err := s.projects.Update(ctx, proj); err != nil {
		return nil, internal(err, "Unable to update project.")
	}
	logger.FromContext(ctx).Info("project updated", zap.String("project_id", proj.ID.String()), zap.String("user_id", p.UserID.String()))
	_ = s.audit.Record(ctx, audit.Event{Action: "project.update", Actor: p, Details: map[string]any{"projectId": proj.ID.String()}})
	return proj, nil
}

func (s *projectService) ArchiveProject(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Project, error) {
	if err := authz.RequireAdmin(p); err != nil {
		return nil, err
	}
	if err := s.projects.Archive(ctx, id); err != nil {
		return nil, internal(err, "Unable to archive project.")
	}
	var proj models.Project
	if err := s.projects.GetByID(ctx, id, &proj); err != nil {
		return nil, internal(err, "Unable to archive project.")
	}
	logger.FromContext(ctx).Info("project archived", zap.String("project_id", id.String()))
	_ = s.audit.Record(ctx, audit.Event{Action: "project.archive", Actor: p, Details: map[string]any{"projectId": id.String()}})
	return &proj, nil
}

// DeleteProject purges remote files first, then removes all metadata in one transaction.
func (s *projectService) DeleteProject(ctx context.Context, p authz.Principal, id uuid.UUID) error {
	if _, err := s.project(ctx, p, id); err != nil {
		return internal(err, "Unable to delete project.")
	}
	atts, err := s.attachments.ListByProject(ctx, id)
	if err != nil {
		return internal(err, "Unable to delete project.")
	}
	_ = s.purger.Purge(ctx, refsOf(atts)...)

	if err := s.projects.DeleteCascade(ctx, id); err != nil {
		return internal(err, "Unable to delete project.")
	}
	logger.FromContext(ctx).Info("project deleted", zap.String("project_id", id.String()), zap.Int("attachments", len(atts)))
	_ = s.audit.Record(ctx, audit.Event{Action: "project.delete", Actor: p, Details: map[string]any{"projectId": id.String()}})
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
