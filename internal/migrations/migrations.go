package migrations

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/site-tracker/engine/internal/models"
)

// Run migrates every model and then applies the schema changes AutoMigrate can't express.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return runCustom(db)
}

func runCustom(db *gorm.DB) error {
	steps := []struct {
		name string
		fn   func(*gorm.DB) error
	}{
		{"daily log listing index", addDailyLogIndexes},
		{"attachment ordering index", addAttachmentIndexes},
		{"comment thread index", addCommentIndexes},
	}
	for _, s := range steps {
		if err := s.fn(db); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// Log listings filter by project and sort newest first.
func addDailyLogIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_daily_logs_project_date
		ON daily_logs(project_id, date DESC)
	`).Error; err != nil {
		return err
	}
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_daily_logs_project_folder
		ON daily_logs(project_id, folder_id)
		WHERE folder_id IS NOT NULL
	`).Error
}

func addAttachmentIndexes(db *gorm.DB) error {
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_attachments_log_uploaded
		ON attachments(daily_log_id, uploaded_at)
	`).Error
}

func addCommentIndexes(db *gorm.DB) error {
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_attachment_comments_thread
		ON attachment_comments(attachment_id, created_at)
	`).Error
}
