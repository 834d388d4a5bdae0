// Package audit records security relevant events without ever failing the request that caused them.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/authz"
	"github.com/site-tracker/engine/internal/models"
	"github.com/site-tracker/engine/internal/repository"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"github.com/site-tracker/engine/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Event is one audit entry. Actor may be the zero principal for anonymous events.
type Event struct {
	Action  string
	Actor   authz.Principal
	Details map[string]any
}

// Recorder accepts audit events. The result reports whether the write was accepted and is
// meant to be discarded by callers.
type Recorder interface {
	Record(ctx context.Context, e Event) appErr.BestEffort
}

// Auditor writes events on background goroutines detached from request cancellation.
type Auditor struct {
	repo    repository.AuditRepository
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAuditor(repo repository.AuditRepository) *Auditor {
	return &Auditor{repo: repo, timeout: 5 * time.Second}
}

var _ Recorder = (*Auditor)(nil)

func (a *Auditor) Record(ctx context.Context, e Event) appErr.BestEffort {
	entry := &models.AuditLog{
		Action:    e.Action,
		UserEmail: e.Actor.Email,
		IP:        ClientIP(ctx),
		CreatedAt: time.Now().UTC(),
	}
	if e.Actor.UserID != uuid.Nil {
		id := e.Actor.UserID
		entry.UserID = &id
	}
	if len(e.Details) > 0 {
		entry.Details = datatypes.JSONMap(e.Details)
	}

	detached := context.WithoutCancel(ctx)
	log := logger.FromContext(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		wctx, cancel := context.WithTimeout(detached, a.timeout)
		defer cancel()
		if err := a.repo.Insert(wctx, entry); err != nil {
			log.Warn("audit write failed", zap.String("action", entry.Action), zap.Error(err))
		}
	}()
	return appErr.Done("audit:" + e.Action)
}

// Wait blocks until every pending write has finished.
func (a *Auditor) Wait() {
	a.wg.Wait()
}

type clientIPKey struct{}

// WithClientIP stores the resolved client address for events recorded under ctx.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the address stored by WithClientIP.
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
