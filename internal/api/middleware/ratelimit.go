package middleware

import (
	"net/http"

	"github.com/site-tracker/engine/internal/api/types"
	"github.com/site-tracker/engine/internal/audit"
	"github.com/site-tracker/engine/internal/ratelimit"
	"github.com/site-tracker/engine/pkg/logger"
	"go.uber.org/zap"
)

// RateLimit rejects callers, keyed by client IP, once the limiter's budget is spent.
func RateLimit(l ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := audit.ClientIP(r.Context())
			if !l.Allow(ip) {
				logger.FromContext(r.Context()).Info("rate limited", zap.String("ip", ip), zap.String("path", r.URL.Path))
				w.Header().Set("Retry-After", "60")
				types.Fail(w, http.StatusTooManyRequests, "too_many_requests", "Too many attempts. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
