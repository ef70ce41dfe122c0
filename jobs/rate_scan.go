package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/abasto/abasto/internal/rates"
)

// RateStaleScanJob warns when the newest exchange rate observation is
// older than the configured threshold, so operators refresh it before
// quoting prices in bolívares.
type RateStaleScanJob struct {
	Rates  *rates.Service
	Logger *slog.Logger
}

// NewRateStaleScanJob initialises the staleness scan handler.
func NewRateStaleScanJob(rateService *rates.Service, logger *slog.Logger) *RateStaleScanJob {
	return &RateStaleScanJob{Rates: rateService, Logger: logger}
}

// Handle executes the scan.
func (j *RateStaleScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Rates == nil {
		return errors.New("rate scan: handler not configured")
	}
	var payload RateStaleScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.MaxAgeHours <= 0 {
		payload.MaxAgeHours = 24
	}
	maxAge := time.Duration(payload.MaxAgeHours) * time.Hour

	stale, err := j.Rates.IsStale(ctx, maxAge)
	if err != nil {
		return err
	}
	if stale {
		j.Logger.Warn("exchange rate is stale", "max_age_hours", payload.MaxAgeHours)
	} else {
		j.Logger.Debug("exchange rate is fresh", "max_age_hours", payload.MaxAgeHours)
	}
	return nil
}
