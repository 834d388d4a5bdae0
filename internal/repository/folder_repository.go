package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/models"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"gorm.io/gorm"
)

type FolderRepository interface {
	BaseRepository[models.LogFolder]
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.LogFolder, error)
	DeleteAndDetach(ctx context.Context, folderID uuid.UUID) error
}

type folderRepository struct {
	BaseRepository[models.LogFolder]
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &folderRepository{BaseRepository: NewBaseRepository[models.LogFolder](db, "Folder not found."), db: db}
}

func (r *folderRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.LogFolder, error) {
	out := []models.LogFolder{}
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list folders failed")
	}
	return out, nil
}

// DeleteAndDetach clears folder_id on the folder's logs and removes the folder.
func (r *folderRepository) DeleteAndDetach(ctx context.Context, folderID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.DailyLog{}).Where("folder_id = ?", folderID).
			UpdateColumn("folder_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", folderID).Delete(&models.LogFolder{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return appErr.NotFound("Folder not found.")
		}
		return nil
	})
	if err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return err
		}
		return appErr.Wrap(err, appErr.CodeInternal, "delete folder failed")
	}
	return nil
}
