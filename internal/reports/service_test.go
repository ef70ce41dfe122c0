package reports

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	// sales maps day (at midnight) to the day's figures.
	sales map[time.Time]PeriodSales
}

func (m *memoryRepository) aggregate(r DateRange) PeriodSales {
	var out PeriodSales
	for day, sales := range m.sales {
		if !day.Before(r.From) && day.Before(r.To) {
			out.Amount += sales.Amount
			out.Count += sales.Count
		}
	}
	return out
}

func (m *memoryRepository) SalesBetween(_ context.Context, r DateRange) (PeriodSales, error) {
	return m.aggregate(r), nil
}

func (m *memoryRepository) CompletedOrdersBetween(_ context.Context, r DateRange) (PeriodSales, error) {
	return m.aggregate(r), nil
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

func TestPercentChange(t *testing.T) {
	require.Zero(t, PercentChange(0, 0))
	require.Equal(t, 100.0, PercentChange(0, 250))
	require.Equal(t, 50.0, PercentChange(100, 150))
	require.Equal(t, -25.0, PercentChange(200, 150))
}

func TestRangeForWeekStartsMonday(t *testing.T) {
	// 2026-08-27 is a Thursday.
	now := day(t, "2026-08-27")
	current, previous, err := RangeFor(PeriodWeek, now)
	require.NoError(t, err)
	require.Equal(t, time.Monday, current.From.Weekday())
	require.Equal(t, day(t, "2026-08-24"), current.From)
	require.Equal(t, day(t, "2026-08-31"), current.To)
	require.Equal(t, day(t, "2026-08-17"), previous.From)
	require.Equal(t, current.From, previous.To)
}

func TestRangeForMonthBoundaries(t *testing.T) {
	now := day(t, "2026-08-15")
	current, previous, err := RangeFor(PeriodMonth, now)
	require.NoError(t, err)
	require.Equal(t, day(t, "2026-08-01"), current.From)
	require.Equal(t, day(t, "2026-09-01"), current.To)
	require.Equal(t, day(t, "2026-07-01"), previous.From)

	_, _, err = RangeFor(Period("quarter"), now)
	require.ErrorIs(t, err, ErrUnknownPeriod)
}

func TestSalesForPeriodComputesChange(t *testing.T) {
	repo := &memoryRepository{sales: map[time.Time]PeriodSales{
		day(t, "2026-08-27"): {Amount: 300, Count: 3},
		day(t, "2026-08-26"): {Amount: 200, Count: 2},
	}}
	svc := NewService(repo, slog.Default())
	svc.now = func() time.Time { return day(t, "2026-08-27").Add(10 * time.Hour) }

	today, err := svc.SalesForPeriod(context.Background(), PeriodToday)
	require.NoError(t, err)
	require.Equal(t, 300.0, today.Amount)
	require.Equal(t, 3, today.Count)
	require.Equal(t, 50.0, today.Change)
}

func TestDailySeriesCoversSevenDays(t *testing.T) {
	repo := &memoryRepository{sales: map[time.Time]PeriodSales{
		day(t, "2026-08-27"): {Amount: 120, Count: 1},
		day(t, "2026-08-21"): {Amount: 80, Count: 2},
		day(t, "2026-08-20"): {Amount: 999, Count: 9}, // outside the window
	}}
	svc := NewService(repo, slog.Default())
	svc.now = func() time.Time { return day(t, "2026-08-27").Add(15 * time.Hour) }

	points, err := svc.DailySeries(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 7)
	require.Equal(t, "21/08", points[0].Label)
	require.Equal(t, 80.0, points[0].Amount)
	require.Equal(t, "27/08", points[6].Label)
	require.Equal(t, 120.0, points[6].Amount)

	total := 0.0
	for _, p := range points {
		total += p.Amount
	}
	require.Equal(t, 200.0, total)
}

func TestWeeklyAndMonthlySeriesLengths(t *testing.T) {
	repo := &memoryRepository{sales: map[time.Time]PeriodSales{}}
	svc := NewService(repo, slog.Default())
	svc.now = func() time.Time { return day(t, "2026-08-27") }

	weekly, err := svc.WeeklySeries(context.Background())
	require.NoError(t, err)
	require.Len(t, weekly, 8)

	monthly, err := svc.MonthlySeries(context.Background())
	require.NoError(t, err)
	require.Len(t, monthly, 12)
}
