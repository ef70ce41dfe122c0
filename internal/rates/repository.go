package rates

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides append-only access to exchange rates.
type Repository interface {
	Insert(ctx context.Context, r *ExchangeRate) error
	Latest(ctx context.Context) (*ExchangeRate, error)
	List(ctx context.Context, limit int) ([]ExchangeRate, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed rate repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Insert(ctx context.Context, rate *ExchangeRate) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO exchange_rates (rate, source) VALUES ($1, $2)
		RETURNING id, created_at`,
		rate.Rate, rate.Source).Scan(&rate.ID, &rate.CreatedAt)
}

func (r *pgRepository) Latest(ctx context.Context) (*ExchangeRate, error) {
	var rate ExchangeRate
	err := r.pool.QueryRow(ctx, `
		SELECT id, rate, source, created_at
		FROM exchange_rates ORDER BY created_at DESC, id DESC LIMIT 1`).
		Scan(&rate.ID, &rate.Rate, &rate.Source, &rate.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRate
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *pgRepository) List(ctx context.Context, limit int) ([]ExchangeRate, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, rate, source, created_at
		FROM exchange_rates ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ExchangeRate
	for rows.Next() {
		var rate ExchangeRate
		if err := rows.Scan(&rate.ID, &rate.Rate, &rate.Source, &rate.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, rate)
	}
	return items, rows.Err()
}
