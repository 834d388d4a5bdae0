package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/models"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"gorm.io/gorm"
)

// LogFilter selects daily logs of one project. Zero values mean "no constraint";
// Limit 0 returns every match.
type LogFilter struct {
	ProjectID    uuid.UUID
	From         *time.Time
	To           *time.Time
	ActivityType string
	FolderID     *uuid.UUID
	IDs          []uuid.UUID
	Offset       int
	Limit        int
}

type LogRepository interface {
	BaseRepository[models.DailyLog]
	List(ctx context.Context, f LogFilter) ([]models.DailyLog, int64, error)
	DeleteCascade(ctx context.Context, logID uuid.UUID) error
}

type logRepository struct {
	BaseRepository[models.DailyLog]
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{BaseRepository: NewBaseRepository[models.DailyLog](db, "Daily log not found."), db: db}
}

func (r *logRepository) List(ctx context.Context, f LogFilter) ([]models.DailyLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.DailyLog{}).Where("project_id = ?", f.ProjectID)
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date <= ?", *f.To)
	}
	if f.ActivityType != "" {
		q = q.Where("activity_type = ?", f.ActivityType)
	}
	if f.FolderID != nil {
		q = q.Where("folder_id = ?", *f.FolderID)
	}
	if len(f.IDs) > 0 {
		q = q.Where("id IN ?", f.IDs)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, appErr.Wrap(err, appErr.CodeInternal, "count daily logs failed")
	}

	out := []models.DailyLog{}
	page := q.Order("date DESC").Order("created_at DESC")
	if f.Limit > 0 {
		page = page.Offset(f.Offset).Limit(f.Limit)
	}
	if err := page.Find(&out).Error; err != nil {
		return nil, 0, appErr.Wrap(err, appErr.CodeInternal, "list daily logs failed")
	}
	return out, total, nil
}

// DeleteCascade removes the log with its attachments and their comments.
func (r *logRepository) DeleteCascade(ctx context.Context, logID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attachmentIDs := tx.Model(&models.Attachment{}).Select("id").Where("daily_log_id = ?", logID)
		if err := tx.Where("attachment_id IN (?)", attachmentIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("daily_log_id = ?", logID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", logID).Delete(&models.DailyLog{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return appErr.NotFound("Daily log not found.")
		}
		return nil
	})
	if err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return err
		}
		return appErr.Wrap(err, appErr.CodeInternal, "delete daily log failed")
	}
	return nil
}
