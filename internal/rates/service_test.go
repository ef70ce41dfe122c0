package rates

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	entries []ExchangeRate
	nextID  int64
}

func (m *memoryRepository) Insert(_ context.Context, r *ExchangeRate) error {
	m.nextID++
	r.ID = m.nextID
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	m.entries = append(m.entries, *r)
	return nil
}

func (m *memoryRepository) Latest(_ context.Context) (*ExchangeRate, error) {
	if len(m.entries) == 0 {
		return nil, ErrNoRate
	}
	latest := m.entries[0]
	for _, e := range m.entries[1:] {
		if e.CreatedAt.After(latest.CreatedAt) || (e.CreatedAt.Equal(latest.CreatedAt) && e.ID > latest.ID) {
			latest = e
		}
	}
	cp := latest
	return &cp, nil
}

func (m *memoryRepository) List(_ context.Context, limit int) ([]ExchangeRate, error) {
	out := append([]ExchangeRate(nil), m.entries...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestRecordRejectsNonPositiveRates(t *testing.T) {
	svc := NewService(&memoryRepository{}, slog.Default())
	_, err := svc.Record(context.Background(), 0, nil)
	require.ErrorIs(t, err, ErrInvalidRate)
	_, err = svc.Record(context.Background(), -3.5, nil)
	require.ErrorIs(t, err, ErrInvalidRate)
}

func TestCurrentIsNewestEntry(t *testing.T) {
	repo := &memoryRepository{}
	svc := NewService(repo, slog.Default())
	ctx := context.Background()

	_, err := svc.CurrentRate(ctx)
	require.NoError(t, err)

	_, err = svc.Record(ctx, 36.5, nil)
	require.NoError(t, err)
	_, err = svc.Record(ctx, 37.1, nil)
	require.NoError(t, err)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, 37.1, current.Rate)

	value, err := svc.CurrentRate(ctx)
	require.NoError(t, err)
	require.Equal(t, 37.1, value)
}

func TestIsStale(t *testing.T) {
	repo := &memoryRepository{}
	svc := NewService(repo, slog.Default())
	ctx := context.Background()

	stale, err := svc.IsStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.True(t, stale)

	old := &ExchangeRate{Rate: 36.0, CreatedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, repo.Insert(ctx, old))
	stale, err = svc.IsStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.True(t, stale)

	_, err = svc.Record(ctx, 37.0, nil)
	require.NoError(t, err)
	stale, err = svc.IsStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.False(t, stale)
}
