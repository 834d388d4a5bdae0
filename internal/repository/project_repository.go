package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/models"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"gorm.io/gorm"
)

// ProjectFilter narrows a project listing. A nil OwnerID lists every project.
type ProjectFilter struct {
	OwnerID  *uuid.UUID
	Status   string
	Archived *bool
}

type ProjectRepository interface {
	BaseRepository[models.Project]
	List(ctx context.Context, f ProjectFilter) ([]models.Project, error)
	Archive(ctx context.Context, projectID uuid.UUID) error
	DeleteCascade(ctx context.Context, projectID uuid.UUID) error
}

type projectRepository struct {
	BaseRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{BaseRepository: NewBaseRepository[models.Project](db, "Project not found."), db: db}
}

func (r *projectRepository) List(ctx context.Context, f ProjectFilter) ([]models.Project, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{})
	if f.OwnerID != nil {
		q = q.Where("created_by = ?", *f.OwnerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Archived != nil {
		q = q.Where("archived = ?", *f.Archived)
	}
	out := []models.Project{}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects failed")
	}
	return out, nil
}

func (r *projectRepository) Archive(ctx context.Context, projectID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", projectID).
		Updates(map[string]any{"archived": true, "status": models.ProjectArchived})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "archive project failed")
	}
	if res.RowsAffected == 0 {
		return appErr.NotFound("Project not found.")
	}
	return nil
}

// DeleteCascade removes the project with its comments, attachments, logs and folders in one transaction.
func (r *projectRepository) DeleteCascade(ctx context.Context, projectID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		logIDs := tx.Model(&models.DailyLog{}).Select("id").Where("project_id = ?", projectID)
		attachmentIDs := tx.Model(&models.Attachment{}).Select("id").Where("daily_log_id IN (?)", logIDs)
		if err := tx.Where("attachment_id IN (?)", attachmentIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("daily_log_id IN (?)", logIDs).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.DailyLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.LogFolder{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", projectID).Delete(&models.Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return appErr.NotFound("Project not found.")
		}
		return nil
	})
	if err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return err
		}
		return appErr.Wrap(err, appErr.CodeInternal, "delete project failed")
	}
	return nil
}
