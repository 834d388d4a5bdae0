package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/authz"
	"github.com/site-tracker/engine/internal/models"
	"github.com/site-tracker/engine/internal/repository"
)

// access resolves folders, logs and attachments up to their project and applies the
// ownership guard there. A missing resource at any level is reported before permissions.
type access struct {
	projects    repository.ProjectRepository
	folders     repository.FolderRepository
	logs        repository.LogRepository
	attachments repository.AttachmentRepository
}

func (a access) project(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Project, error) {
	var proj models.Project
	if err := a.projects.GetByID(ctx, id, &proj); err != nil {
		return nil, err
	}
	if err := authz.Authorize(p, proj.CreatedBy); err != nil {
		return nil, err
	}
	return &proj, nil
}

func (a access) folder(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.LogFolder, error) {
	var f models.LogFolder
	if err := a.folders.GetByID(ctx, id, &f); err != nil {
		return nil, err
	}
	if _, err := a.project(ctx, p, f.ProjectID); err != nil {
		return nil, err
	}
	return &f, nil
}

func (a access) log(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.DailyLog, error) {
	var l models.DailyLog
	if err := a.logs.GetByID(ctx, id, &l); err != nil {
		return nil, err
	}
	if _, err := a.project(ctx, p, l.ProjectID); err != nil {
		return nil, err
	}
	return &l, nil
}

func (a access) attachment(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Attachment, error) {
	var att models.Attachment
	if err := a.attachments.GetByID(ctx, id, &att); err != nil {
		return nil, err
	}
	if _, err := a.log(ctx, p, att.DailyLogID); err != nil {
		return nil, err
	}
	return &att, nil
}
