package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/models"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"gorm.io/gorm"
)

type UserRepository interface {
	BaseRepository[models.User]
	GetByEmail(ctx context.Context, email string, dest *models.User) error
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time, dest *models.User) error
	RegisterFailedLogin(ctx context.Context, userID uuid.UUID, maxAttempts int, lockUntil time.Time) (int, error)
	ResetLoginState(ctx context.Context, userID uuid.UUID) error
	SetResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expires time.Time) error
	CompleteReset(ctx context.Context, userID uuid.UUID, passwordHash string) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

type userRepository struct {
	BaseRepository[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository[models.User](db, "User not found."), db: db}
}

// NormalizeEmail is the canonical stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return appErr.New(appErr.CodeConflict, "Email already in use.")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "create user failed")
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string, dest *models.User) error {
	if err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErr.NotFound("User not found.")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get user by email failed")
	}
	return nil
}

func (r *userRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time, dest *models.User) error {
	err := r.db.WithContext(ctx).
		Where("reset_password_token_hash = ? AND reset_password_expires > ?", tokenHash, now).
		First(dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErr.NotFound("reset token not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get user by reset token failed")
	}
	return nil
}

// RegisterFailedLogin increments the failure counter in SQL and sets lock_until once the
// counter reaches maxAttempts. It returns the counter after the increment.
func (r *userRepository) RegisterFailedLogin(ctx context.Context, userID uuid.UUID, maxAttempts int, lockUntil time.Time) (int, error) {
	var attempts int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("failed_login_attempts", gorm.Expr("failed_login_attempts + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return appErr.NotFound("User not found.")
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Pluck("failed_login_attempts", &attempts).Error; err != nil {
			return err
		}
		if attempts >= maxAttempts {
			return tx.Model(&models.User{}).Where("id = ?", userID).
				UpdateColumn("lock_until", lockUntil).Error
		}
		return nil
	})
	if err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return 0, err
		}
		return 0, appErr.Wrap(err, appErr.CodeInternal, "register failed login")
	}
	return attempts, nil
}

func (r *userRepository) ResetLoginState(ctx context.Context, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]any{"failed_login_attempts": 0, "lock_until": nil}).Error
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "reset login state failed")
	}
	return nil
}

func (r *userRepository) SetResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expires time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]any{"reset_password_token_hash": tokenHash, "reset_password_expires": expires}).Error
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "store reset token failed")
	}
	return nil
}

// CompleteReset stores the new hash and clears both the reset token and the lockout state.
func (r *userRepository) CompleteReset(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]any{
			"password_hash":             passwordHash,
			"reset_password_token_hash": nil,
			"reset_password_expires":    nil,
			"failed_login_attempts":     0,
			"lock_until":                nil,
		}).Error
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "complete password reset failed")
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password_hash", passwordHash)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update password failed")
	}
	if res.RowsAffected == 0 {
		return appErr.NotFound("User not found.")
	}
	return nil
}
