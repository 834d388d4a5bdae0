package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/audit"
	"github.com/site-tracker/engine/internal/authz"
	"github.com/site-tracker/engine/internal/models"
	"github.com/site-tracker/engine/internal/repository"
	appErr "github.com/site-tracker/engine/pkg/errors"
)

type FolderService interface {
	ListFolders(ctx context.Context, p authz.Principal, projectID uuid.UUID) ([]models.LogFolder, error)
	CreateFolder(ctx context.Context, p authz.Principal, projectID uuid.UUID, name string) (*models.LogFolder, error)
	RenameFolder(ctx context.Context, p authz.Principal, id uuid.UUID, name string) (*models.LogFolder, error)
	DeleteFolder(ctx context.Context, p authz.Principal, id uuid.UUID) error
}

type folderService struct {
	access
	audit audit.Recorder
}

func NewFolderService(projects repository.ProjectRepository, folders repository.FolderRepository, recorder audit.Recorder) FolderService {
	return &folderService{access: access{projects: projects, folders: folders}, audit: recorder}
}

var _ FolderService = (*folderService)(nil)

func (s *folderService) ListFolders(ctx context.Context, p authz.Principal, projectID uuid.UUID) ([]models.LogFolder, error) {
	if _, err := s.project(ctx, p, projectID); err != nil {
		return nil, internal(err, "Unable to fetch folders.")
	}
	out, err := s.folders.ListByProject(ctx, projectID)
	if err != nil {
		return nil, internal(err, "Unable to fetch folders.")
	}
	return out, nil
}

func (s *folderService) CreateFolder(ctx context.Context, p authz.Principal, projectID uuid.UUID, name string) (*models.LogFolder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErr.Invalid("Folder name is required.")
	}
	if _, err := s.project(ctx, p, projectID); err != nil {
		return nil, internal(err, "Unable to create folder.")
	}
	f := &models.LogFolder{ProjectID: projectID, Name: name, CreatedBy: p.UserID}
	if err := s.folders.Create(ctx, f); err != nil {
		return nil, internal(err, "Unable to create folder.")
	}
	_ = s.audit.Record(ctx, audit.Event{Action: "folder.create", Actor: p, Details: map[string]any{"folderId": f.ID.String(), "projectId": projectID.String()}})
	return f, nil
}

// RenameFolder keeps the current name when name is empty.
func (s *folderService) RenameFolder(ctx context.Context, p authz.Principal, id uuid.UUID, name string) (*models.LogFolder, error) {
	f, err := s.folder(ctx, p, id)
	if err != nil {
		return nil, internal(err, "Unable to update folder.")
	}
	if name = strings.TrimSpace(name); name != "" {
		f.Name = name
	}
	if err := s.folders.Update(ctx, f); err != nil {
		return nil, internal(err, "Unable to update folder.")
	}
	return f, nil
}

// DeleteFolder detaches the folder's logs and removes the folder.
func (s *folderService) DeleteFolder(ctx context.Context, p authz.Principal, id uuid.UUID) error {
	if _, err := s.folder(ctx, p, id); err != nil {
		return internal(err, "Unable to delete folder.")
	}
	if err := s.folders.DeleteAndDetach(ctx, id); err != nil {
		return internal(err, "Unable to delete folder.")
	}
	_ = s.audit.Record(ctx, audit.Event{Action: "folder.delete", Actor: p, Details: map[string]any{"folderId": id.String()}})
	return nil
}
