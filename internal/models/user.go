package models

import (
	"time"
)

// Roles understood by the ownership guard.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User represents a platform user.
type User struct {
	Base
	Name                   string     `gorm:"size:120" json:"name"`
	Email                  string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash           string     `gorm:"not null" json:"-" swaggerignore:"true"`
	Role                   string     `gorm:"type:varchar(16);not null;default:member" json:"role"`
	FailedLoginAttempts    int        `gorm:"not null;default:0" json:"-"`
	LockUntil              *time.Time `json:"-"`
	ResetPasswordTokenHash *string    `gorm:"index" json:"-"`
	ResetPasswordExpires   *time.Time `json:"-"`
}

// IsLocked reports whether the lockout window is still open at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// DisplayName is the name snapshotted onto comments.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "User"
}

// Profile is the public view of a user.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID.String(), Name: u.Name, Email: u.Email, Role: u.Role}
}
