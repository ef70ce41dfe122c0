package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/abasto/abasto/internal/shared"
)

// IdempotencyCleanupJob prunes idempotency keys past their retention
// window so the table stays small.
type IdempotencyCleanupJob struct {
	Store  *shared.IdempotencyStore
	Logger *slog.Logger
}

func NewIdempotencyCleanupJob(store *shared.IdempotencyStore, logger *slog.Logger) *IdempotencyCleanupJob {
	return &IdempotencyCleanupJob{Store: store, Logger: logger}
}

func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("idempotency cleanup: handler not configured")
	}
	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionHours <= 0 {
		payload.RetentionHours = 48
	}
	retention := time.Duration(payload.RetentionHours) * time.Hour

	if err := j.Store.Cleanup(ctx, retention); err != nil {
		return err
	}
	j.Logger.Info("idempotency keys pruned", "retention_hours", payload.RetentionHours)
	return nil
}
