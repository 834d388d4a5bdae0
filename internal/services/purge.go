package services

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/site-tracker/engine/internal/models"
	"github.com/site-tracker/engine/internal/queue/tasks"
	"github.com/site-tracker/engine/internal/storage"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"github.com/site-tracker/engine/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Purger removes remote attachment objects. Failures are logged and reported in the result,
// never returned as errors.
type Purger interface {
	Purge(ctx context.Context, refs ...storage.FileRef) appErr.BestEffort
}

// InlinePurger deletes objects directly, in parallel.
type InlinePurger struct {
	store   storage.ObjectStore
	timeout time.Duration
}

func NewInlinePurger(store storage.ObjectStore) *InlinePurger {
	return &InlinePurger{store: store, timeout: 30 * time.Second}
}

func (p *InlinePurger) Purge(ctx context.Context, refs ...storage.FileRef) appErr.BestEffort {
	if len(refs) == 0 {
		return appErr.Done("purge")
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(8)
	errs := make([]error, len(refs))
	for i, ref := range refs {
		g.Go(func() error {
			if err := p.store.Delete(ctx, ref); err != nil {
				logger.FromContext(ctx).Warn("remote delete failed", zap.String("public_id", ref.PublicID), zap.Error(err))
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := errors.Join(errs...); err != nil {
		return appErr.Failed("purge", err)
	}
	return appErr.Done("purge")
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueuePurger hands deletions to the worker, falling back to inline deletion when a task
// cannot be enqueued.
type QueuePurger struct {
	client   Enqueuer
	fallback Purger
}

func NewQueuePurger(client Enqueuer, fallback Purger) *QueuePurger {
	return &QueuePurger{client: client, fallback: fallback}
}

func (p *QueuePurger) Purge(ctx context.Context, refs ...storage.FileRef) appErr.BestEffort {
	var inline []storage.FileRef
	for _, ref := range refs {
		task, err := tasks.NewPurgeTask(ref)
		if err == nil {
			_, err = p.client.EnqueueContext(ctx, task)
		}
		if err != nil {
			logger.FromContext(ctx).Warn("enqueue purge failed, deleting inline", zap.String("public_id", ref.PublicID), zap.Error(err))
			inline = append(inline, ref)
		}
	}
	if len(inline) > 0 && p.fallback != nil {
		return p.fallback.Purge(ctx, inline...)
	}
	return appErr.Done("purge")
}

func refsOf(items []models.Attachment) []storage.FileRef {
	refs := make([]storage.FileRef, 0, len(items))
	for _, a := range items {
		if a.PublicID == "" {
			continue
		}
		refs = append(refs, storage.FileRef{
			URL:          a.FileURL,
			PublicID:     a.PublicID,
			ResourceType: a.ResourceType,
			MimeType:     a.MimeType,
			Size:         a.FileSize,
			OriginalName: a.FileName,
		})
	}
	return refs
}
