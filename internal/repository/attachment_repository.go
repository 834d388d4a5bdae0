package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/models"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"gorm.io/gorm"
)

type AttachmentRepository interface {
	BaseRepository[models.Attachment]
	CreateBatch(ctx context.Context, items []models.Attachment) error
	ListByLogs(ctx context.Context, logIDs []uuid.UUID) ([]models.Attachment, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Attachment, error)
	ListComments(ctx context.Context, attachmentID uuid.UUID) ([]models.Comment, error)
	AddComment(ctx context.Context, c *models.Comment) error
	DeleteWithComments(ctx context.Context, attachmentID uuid.UUID) error
}

type attachmentRepository struct {
	BaseRepository[models.Attachment]
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{BaseRepository: NewBaseRepository[models.Attachment](db, "Attachment not found."), db: db}
}

func (r *attachmentRepository) CreateBatch(ctx context.Context, items []models.Attachment) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "create attachments failed")
	}
	return nil
}

// ListByLogs returns the attachments of the given logs, newest upload first, with comments.
func (r *attachmentRepository) ListByLogs(ctx context.Context, logIDs []uuid.UUID) ([]models.Attachment, error) {
	out := []models.Attachment{}
	if len(logIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("daily_log_id IN ?", logIDs).
		Order("uploaded_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list attachments failed")
	}
	return out, nil
}

func (r *attachmentRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Attachment, error) {
	out := []models.Attachment{}
	logIDs := r.db.Model(&models.DailyLog{}).Select("id").Where("project_id = ?", projectID)
	if err := r.db.WithContext(ctx).Where("daily_log_id IN (?)", logIDs).Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list project attachments failed")
	}
	return out, nil
}

func (r *attachmentRepository) ListComments(ctx context.Context, attachmentID uuid.UUID) ([]models.Comment, error) {
	out := []models.Comment{}
	if err := r.db.WithContext(ctx).Where("attachment_id = ?", attachmentID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list comments failed")
	}
	return out, nil
}

func (r *attachmentRepository) AddComment(ctx context.Context, c *models.Comment) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "add comment failed")
	}
	return nil
}

func (r *attachmentRepository) DeleteWithComments(ctx context.Context, attachmentID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attachment_id = ?", attachmentID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", attachmentID).Delete(&models.Attachment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return appErr.NotFound("Attachment not found.")
		}
		return nil
	})
	if err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return err
		}
		return appErr.Wrap(err, appErr.CodeInternal, "delete attachment failed")
	}
	return nil
}
