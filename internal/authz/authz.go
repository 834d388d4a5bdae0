// Package authz holds the ownership guard shared by every project scoped route.
package authz

import (
	"context"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/models"
	appErr "github.com/site-tracker/engine/pkg/errors"
)

// Principal is the authenticated requester.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

const insufficientPermissions = "Insufficient permissions."

// Authorize allows admins and the owner of the resource.
func Authorize(p Principal, ownerID uuid.UUID) error {
	if p.IsAdmin() || (p.UserID != uuid.Nil && p.UserID == ownerID) {
		return nil
	}
	return appErr.Forbidden(insufficientPermissions)
}

// RequireAdmin allows admins only.
func RequireAdmin(p Principal) error {
	if p.IsAdmin() {
		return nil
	}
	return appErr.Forbidden(insufficientPermissions)
}

type principalKey struct{}

// WithPrincipal stores the principal on the request context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
