package rates

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Service maintains the append-only exchange rate history.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a rate service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends a new observation. Past entries are never modified.
func (s *Service) Record(ctx context.Context, rate float64, source *string) (*ExchangeRate, error) {
	if rate <= 0 {
		return nil, ErrInvalidRate
	}
	entry := &ExchangeRate{Rate: rate, Source: source}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, err
	}
	s.logger.Info("exchange rate recorded", "rate", rate)
	return entry, nil
}

// Current returns the newest observation.
func (s *Service) Current(ctx context.Context) (*ExchangeRate, error) {
	return s.repo.Latest(ctx)
}

// CurrentRate returns the newest rate value, zero when none exists.
func (s *Service) CurrentRate(ctx context.Context) (float64, error) {
	rate, err := s.Current(ctx)
	if errors.Is(err, ErrNoRate) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rate.Rate, nil
}

// History returns recent observations, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]ExchangeRate, error) {
	return s.repo.List(ctx, limit)
}

// IsStale reports whether the newest observation is older than maxAge.
// A missing rate counts as stale.
func (s *Service) IsStale(ctx context.Context, maxAge time.Duration) (bool, error) {
	rate, err := s.Current(ctx)
	if errors.Is(err, ErrNoRate) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return time.Since(rate.CreatedAt) > maxAge, nil
}
