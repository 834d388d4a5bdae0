package handlers

import (
	"net/http"

	"github.com/site-tracker/engine/internal/api/types"
	"github.com/site-tracker/engine/internal/services"
)

const (
	resetRequestedMessage = "If an account exists, a reset token has been generated."
	passwordUpdated       = "Password updated successfully."
)

type AuthHandler struct {
	svc              services.AuthService
	exposeResetToken bool
}

// NewAuthHandler builds the auth routes. exposeResetToken echoes reset tokens in the
// forgot-password response and must stay off in production.
func NewAuthHandler(svc services.AuthService, exposeResetToken bool) *AuthHandler {
	return &AuthHandler{svc: svc, exposeResetToken: exposeResetToken}
}

// Register godoc
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body types.RegisterRequest true "credentials"
// @Success 201 {object} types.APIResponse
// @Failure 400 {object} types.APIResponse
// @Failure 409 {object} types.APIResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Register(r.Context(), services.RegisterInput{Email: req.Email, Password: req.Password, Name: req.Name, Role: req.Role})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u.Profile())
}

// Login godoc
// @Summary Exchange credentials for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body types.LoginRequest true "credentials"
// @Success 200 {object} types.APIResponse
// @Failure 401 {object} types.APIResponse
// @Failure 423 {object} types.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.LoginResponse{Token: res.Token, User: res.User.Profile()})
}

// Me godoc
// @Summary Current user profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} types.APIResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Me(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Profile())
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.ChangePassword(r.Context(), p, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: passwordUpdated})
}

// ForgotPassword always answers with the same message so callers cannot probe for accounts.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req types.ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	token, err := h.svc.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := types.MessageResponse{Message: resetRequestedMessage}
	if h.exposeResetToken {
		resp.ResetToken = token
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req types.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: passwordUpdated})
}
