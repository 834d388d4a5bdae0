package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/site-tracker/engine/internal/storage"
	"github.com/site-tracker/engine/pkg/logger"
	"go.uber.org/zap"
)

// TypeAttachmentPurge deletes one attachment object from the object store.
const TypeAttachmentPurge = "attachment:purge"

// PurgePayload is the task payload for attachment purges.
type PurgePayload struct {
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"`
	URL          string `json:"url,omitempty"`
}

// NewPurgeTask builds a purge task. Purges are best effort and never retried.
func NewPurgeTask(ref storage.FileRef) (*asynq.Task, error) {
	pb, err := json.Marshal(PurgePayload{PublicID: ref.PublicID, ResourceType: ref.ResourceType, URL: ref.URL})
	if err != nil {
		return nil, fmt.Errorf("marshal purge payload: %w", err)
	}
	return asynq.NewTask(TypeAttachmentPurge, pb, asynq.MaxRetry(0)), nil
}

// PurgeTaskHandler executes purge tasks against the object store.
type PurgeTaskHandler struct {
	store storage.ObjectStore
}

func NewPurgeTaskHandler(store storage.ObjectStore) *PurgeTaskHandler {
	return &PurgeTaskHandler{store: store}
}

func (h *PurgeTaskHandler) HandlePurge(ctx context.Context, t *asynq.Task) error {
	var p PurgePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid purge task payload", zap.Error(err))
		return fmt.Errorf("decode purge payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.PublicID == "" {
		return nil
	}

	ref := storage.FileRef{PublicID: p.PublicID, ResourceType: p.ResourceType, URL: p.URL}
	if err := h.store.Delete(ctx, ref); err != nil {
		logger.L().Warn("attachment purge failed", zap.String("public_id", p.PublicID), zap.Error(err))
		return fmt.Errorf("purge %s: %v: %w", p.PublicID, err, asynq.SkipRetry)
	}
	logger.L().Info("attachment purged", zap.String("public_id", p.PublicID))
	return nil
}
