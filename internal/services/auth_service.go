package services

import (
	"context"
	"time"

	"github.com/site-tracker/engine/internal/audit"
	"github.com/site-tracker/engine/internal/auth"
	"github.com/site-tracker/engine/internal/authz"
	"github.com/site-tracker/engine/internal/models"
	"github.com/site-tracker/engine/internal/repository"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"github.com/site-tracker/engine/pkg/logger"
	"github.com/site-tracker/engine/pkg/utils"
	"go.uber.org/zap"
)

const (
	maxFailedLogins = 5
	lockoutWindow   = 15 * time.Minute
	resetTokenTTL   = time.Hour
)

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Me(ctx context.Context, p authz.Principal) (*models.User, error)
	ChangePassword(ctx context.Context, p authz.Principal, current, next string) error
	// ForgotPassword returns the raw reset token, or "" when no account matches.
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

type LoginResult struct {
	Token string
	User  *models.User
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenIssuer
	audit  audit.Recorder
	now    Clock
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenIssuer, recorder audit.Recorder) AuthService {
	return &authService{users: users, tokens: tokens, audit: recorder, now: systemClock}
}

var _ AuthService = (*authService)(nil)

func principalOf(u *models.User) authz.Principal {
	return authz.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := checkVar(in.Email, "required,email", "Valid email is required."); err != nil {
		return nil, err
	}
	if len(in.Password) < 6 {
		return nil, appErr.Invalid("Password must be at least 6 characters.")
	}
	if len(in.Name) > 120 {
		return nil, appErr.Invalid("Name is too long.")
	}
	role := in.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleMember && role != models.RoleAdmin {
		return nil, appErr.Invalid("Invalid role.")
	}

	var existing models.User
	err := s.users.GetByEmail(ctx, in.Email, &existing)
	if err == nil {
		return nil, appErr.New(appErr.CodeConflict, "Email already in use.")
	}
	if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, internal(err, "Unable to register user.")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, internal(err, "Unable to register user.")
	}
	u := &models.User{Name: in.Name, Email: in.Email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, internal(err, "Unable to register user.")
	}

	logger.FromContext(ctx).Info("user registered", zap.String("user_id", u.ID.String()), zap.String("role", u.Role))
	_ = s.audit.Record(ctx, audit.Event{Action: "user.register", Actor: principalOf(u)})
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := checkVar(email, "required,email", "Valid email is required."); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, appErr.Invalid("Password is required.")
	}

	var u models.User
	if err := s.users.GetByEmail(ctx, email, &u); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, appErr.New(appErr.CodeUnauthorized, "Invalid credentials.")
		}
		return nil, internal(err, "Unable to login.")
	}

	now := s.now()
	if u.IsLocked(now) {
		logger.FromContext(ctx).Info("login refused, account locked", zap.String("user_id", u.ID.String()))
		return nil, appErr.New(appErr.CodeLocked, "Account temporarily locked. Try again later.")
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		attempts, err := s.users.RegisterFailedLogin(ctx, u.ID, maxFailedLogins, now.Add(lockoutWindow))
		if err != nil {
			return nil, internal(err, "Unable to login.")
		}
		if attempts >= maxFailedLogins {
			logger.FromContext(ctx).Info("login locked", zap.String("user_id", u.ID.String()), zap.Int("attempts", attempts))
		}
		_ = s.audit.Record(ctx, audit.Event{Action: "user.login_failed", Actor: principalOf(&u)})
		return nil, appErr.New(appErr.CodeUnauthorized, "Invalid credentials.")
	}

	if err := s.users.ResetLoginState(ctx, u.ID); err != nil {
		return nil, internal(err, "Unable to login.")
	}
	u.FailedLoginAttempts = 0
	u.LockUntil = nil

	token, err := s.tokens.Issue(principalOf(&u))
	if err != nil {
		return nil, internal(err, "Unable to login.")
	}
	_ = s.audit.Record(ctx, audit.Event{Action: "user.login_success", Actor: principalOf(&u)})
	return &LoginResult{Token: token, User: &u}, nil
}

func (s *authService) Me(ctx context.Context, p authz.Principal) (*models.User, error) {
	var u models.User
	if err := s.users.GetByID(ctx, p.UserID, &u); err != nil {
		return nil, internal(err, "Unable to fetch user profile.")
	}
	return &u, nil
}

func (s *authService) ChangePassword(ctx context.Context, p authz.Principal, current, next string) error {
	if current == "" {
		return appErr.Invalid("Current password is required.")
	}
	if len(next) < 6 {
		return appErr.Invalid("New password must be at least 6 characters.")
	}

	var u models.User
	if err := s.users.GetByID(ctx, p.UserID, &u); err != nil {
		return internal(err, "Unable to change password.")
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		_ = s.audit.Record(ctx, audit.Event{Action: "user.password_change_failed", Actor: principalOf(&u)})
		return appErr.New(appErr.CodeUnauthorized, "Current password is incorrect.")
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return internal(err, "Unable to change password.")
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return internal(err, "Unable to change password.")
	}
	_ = s.audit.Record(ctx, audit.Event{Action: "user.password_changed", Actor: principalOf(&u)})
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	if err := checkVar(email, "required,email", "Valid email is required."); err != nil {
		return "", err
	}

	var u models.User
	if err := s.users.GetByEmail(ctx, email, &u); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return "", nil
		}
		return "", internal(err, "Unable to start password reset.")
	}

	token, err := utils.RandomHex(32)
	if err != nil {
		return "", internal(err, "Unable to start password reset.")
	}
	if err := s.users.SetResetToken(ctx, u.ID, utils.HashToken(token), s.now().Add(resetTokenTTL)); err != nil {
		return "", internal(err, "Unable to start password reset.")
	}
	_ = s.audit.Record(ctx, audit.Event{Action: "user.password_reset_requested", Actor: principalOf(&u)})
	return token, nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return appErr.Invalid("Reset token is required.")
	}
	if len(newPassword) < 6 {
		return appErr.Invalid("New password must be at least 6 characters.")
	}

	var u models.User
	if err := s.users.GetByResetToken(ctx, utils.HashToken(token), s.now(), &u); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return appErr.Invalid("Reset token is invalid or expired.")
		}
		return internal(err, "Unable to reset password.")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return internal(err, "Unable to reset password.")
	}
	if err := s.users.CompleteReset(ctx, u.ID, hash); err != nil {
		return internal(err, "Unable to reset password.")
	}
	_ = s.audit.Record(ctx, audit.Event{Action: "user.password_reset_completed", Actor: principalOf(&u)})
	return nil
}
