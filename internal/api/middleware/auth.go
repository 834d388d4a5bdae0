package middleware

import (
	"net/http"
	"strings"

	"github.com/site-tracker/engine/internal/api/types"
	"github.com/site-tracker/engine/internal/authz"
)

// TokenVerifier is satisfied by *auth.TokenIssuer.
type TokenVerifier interface {
	Verify(raw string) (authz.Principal, error)
}

// Auth validates a Bearer token and attaches the principal to the request context.
func Auth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := r.Header.Get("Authorization")
			if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "bearer ") {
				types.Fail(w, http.StatusUnauthorized, "unauthorized", "Missing authorization token.")
				return
			}
			p, err := tokens.Verify(strings.TrimSpace(ah[len("Bearer "):]))
			if err != nil {
				types.Fail(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token.")
				return
			}
			next.ServeHTTP(w, r.WithContext(authz.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole lets through only principals holding role. Admins pass every gate.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := authz.FromContext(r.Context())
			if !ok {
				types.Fail(w, http.StatusUnauthorized, "unauthorized", "Missing authorization token.")
				return
			}
			if p.Role != role && !p.IsAdmin() {
				types.Fail(w, http.StatusForbidden, "forbidden", "Insufficient permissions.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
