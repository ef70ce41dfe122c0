package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// PeriodSummary is the sales for one period with the movement against
// the preceding period.
type PeriodSummary struct {
	PeriodSales
	Change float64 `json:"change"`
}

// Summary is the dashboard aggregate.
type Summary struct {
	Today PeriodSummary `json:"today"`
	Week  PeriodSummary `json:"week"`
	Month PeriodSummary `json:"month"`
}

// Service computes sales summaries and series.
type Service struct {
	repo   Repository
	group  singleflight.Group
	now    func() time.Time
	logger *slog.Logger
}

// NewService builds a report service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, now: time.Now, logger: logger}
}

// SalesForPeriod aggregates the named period and its movement against
// the preceding one.
func (s *Service) SalesForPeriod(ctx context.Context, period Period) (PeriodSummary, error) {
	current, previous, err := RangeFor(period, s.now())
	if err != nil {
		return PeriodSummary{}, err
	}
	cur, err := s.repo.SalesBetween(ctx, current)
	if err != nil {
		return PeriodSummary{}, err
	}
	prev, err := s.repo.SalesBetween(ctx, previous)
	if err != nil {
		return PeriodSummary{}, err
	}
	return PeriodSummary{PeriodSales: cur, Change: PercentChange(prev.Amount, cur.Amount)}, nil
}

// Summary aggregates today, the current week and the current month.
// Concurrent callers share one computation per dashboard refresh.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	key := s.now().Truncate(time.Minute).Format(time.RFC3339)
	v, err, _ := s.group.Do("summary:"+key, func() (any, error) {
		var out Summary
		for _, entry := range []struct {
			period Period
			target *PeriodSummary
		}{
			{PeriodToday, &out.Today},
			{PeriodWeek, &out.Week},
			{PeriodMonth, &out.Month},
		} {
			summary, err := s.SalesForPeriod(ctx, entry.period)
			if err != nil {
				return nil, err
			}
			*entry.target = summary
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Summary), nil
}

// DailySeries returns completed-order sales for the last seven days.
func (s *Service) DailySeries(ctx context.Context) ([]SeriesPoint, error) {
	now := s.now()
	points := make([]SeriesPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		from := startOfDay(now.AddDate(0, 0, -i))
		sales, err := s.repo.CompletedOrdersBetween(ctx, DateRange{From: from, To: from.AddDate(0, 0, 1)})
		if err != nil {
			return nil, err
		}
		points = append(points, SeriesPoint{Label: from.Format("02/01"), Amount: sales.Amount, Count: sales.Count})
	}
	return points, nil
}

// WeeklySeries returns completed-order sales for the last eight weeks,
// each starting on Monday.
func (s *Service) WeeklySeries(ctx context.Context) ([]SeriesPoint, error) {
	now := s.now()
	points := make([]SeriesPoint, 0, 8)
	for i := 7; i >= 0; i-- {
		from := startOfWeek(now).AddDate(0, 0, -7*i)
		sales, err := s.repo.CompletedOrdersBetween(ctx, DateRange{From: from, To: from.AddDate(0, 0, 7)})
		if err != nil {
			return nil, err
		}
		points = append(points, SeriesPoint{Label: "Sem " + from.Format("02/01"), Amount: sales.Amount, Count: sales.Count})
	}
	return points, nil
}

// MonthlySeries returns completed-order sales for the last twelve months.
func (s *Service) MonthlySeries(ctx context.Context) ([]SeriesPoint, error) {
	now := s.now()
	points := make([]SeriesPoint, 0, 12)
	for i := 11; i >= 0; i-- {
		from := startOfMonth(now).AddDate(0, -i, 0)
		sales, err := s.repo.CompletedOrdersBetween(ctx, DateRange{From: from, To: from.AddDate(0, 1, 0)})
		if err != nil {
			return nil, err
		}
		points = append(points, SeriesPoint{Label: fmt.Sprintf("%s %d", from.Format("Jan"), from.Year()), Amount: sales.Amount, Count: sales.Count})
	}
	return points, nil
}
