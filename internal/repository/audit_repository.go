package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/models"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"gorm.io/gorm"
)

// AuditRepository is insert only.
type AuditRepository interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "insert audit log failed")
	}
	return nil
}
