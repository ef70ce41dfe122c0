package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PeriodSales aggregates revenue and transaction count for a window.
type PeriodSales struct {
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// SeriesPoint is one bucket of a sales time series.
type SeriesPoint struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// Repository aggregates sales figures from orders and debts.
type Repository interface {
	// SalesBetween combines completed orders placed in the window with
	// debts settled in it.
	SalesBetween(ctx context.Context, r DateRange) (PeriodSales, error)
	// CompletedOrdersBetween returns totals for completed orders only,
	// used by the time series.
	CompletedOrdersBetween(ctx context.Context, r DateRange) (PeriodSales, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed report repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) SalesBetween(ctx context.Context, dr DateRange) (PeriodSales, error) {
	orders, err := r.CompletedOrdersBetween(ctx, dr)
	if err != nil {
		return PeriodSales{}, err
	}

	var settled PeriodSales
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(dl.unit_price * dl.quantity), 0), COUNT(DISTINCT d.id)
		FROM debts d
		JOIN debt_lines dl ON dl.debt_id = d.id
		WHERE d.status = 'paid' AND d.settled_at >= $1 AND d.settled_at < $2`,
		dr.From, dr.To).Scan(&settled.Amount, &settled.Count)
	if err != nil {
		return PeriodSales{}, err
	}

	return PeriodSales{
		Amount: orders.Amount + settled.Amount,
		Count:  orders.Count + settled.Count,
	}, nil
}

func (r *pgRepository) CompletedOrdersBetween(ctx context.Context, dr DateRange) (PeriodSales, error) {
	var sales PeriodSales
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(ol.unit_price * ol.quantity), 0), COUNT(DISTINCT o.id)
		FROM orders o
		JOIN order_lines ol ON ol.order_id = o.id
		WHERE o.status = 'completed' AND o.created_at >= $1 AND o.created_at < $2`,
		dr.From, dr.To).Scan(&sales.Amount, &sales.Count)
	return sales, err
}
