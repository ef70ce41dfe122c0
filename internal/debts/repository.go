package debts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abasto/abasto/internal/platform/db"
)

// ErrInsufficientStock indicates a debt line exceeds available stock.
var ErrInsufficientStock = errors.New("debts: insufficient stock")

// ListFilters narrows debt listings.
type ListFilters struct {
	Status     *Status
	CustomerID *int64
}

// ListItem is a debt summary row joined with the customer.
type ListItem struct {
	ID           int64     `json:"id"`
	CustomerID   int64     `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	CreatedAt    time.Time `json:"created_at"`
	Status       Status    `json:"status"`
	Total        float64   `json:"total"`
	Balance      float64   `json:"balance"`
}

// Repository provides transactional access to debts.
type Repository interface {
	// Create inserts a debt with its lines. Lines referencing a product
	// capture the current catalog name and price unless an explicit unit
	// price is given. When adjustStock is set, referenced products have
	// their stock decremented inside the same transaction.
	Create(ctx context.Context, customerID int64, lines []NewLine, adjustStock bool) (*Debt, error)
	Get(ctx context.Context, id int64) (*Debt, error)
	List(ctx context.Context, f ListFilters) ([]ListItem, error)
	// AddPayment loads the debt inside a transaction, lets fn derive the
	// payment to insert and whether the debt settles, then persists both.
	AddPayment(ctx context.Context, debtID int64, fn func(d *Debt) (Payment, bool, error)) (*Debt, error)
	UpdateStatus(ctx context.Context, id int64, status Status, settledAt *time.Time) error
	Delete(ctx context.Context, id int64) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed debt repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Create(ctx context.Context, customerID int64, lines []NewLine, adjustStock bool) (*Debt, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	var debtID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO debts (customer_id, status) VALUES ($1, $2) RETURNING id`,
			customerID, StatusPending)
		if err := row.Scan(&debtID); err != nil {
			return err
		}
		for _, line := range lines {
			name := ""
			price := 0.0
			if line.ProductID != nil {
				err := tx.QueryRow(ctx, `SELECT name, price FROM products WHERE id = $1`, *line.ProductID).
					Scan(&name, &price)
				if errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("product %d: %w", *line.ProductID, ErrNotFound)
				}
				if err != nil {
					return err
				}
			}
			if line.UnitPrice != nil {
				price = *line.UnitPrice
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO debt_lines (debt_id, product_id, product_name, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5)`,
				debtID, line.ProductID, name, line.Quantity, price); err != nil {
				return err
			}
			if adjustStock && line.ProductID != nil {
				tag, err := tx.Exec(ctx, `
					UPDATE products SET quantity = quantity - $1, updated_at = now()
					WHERE id = $2 AND quantity >= $1`, line.Quantity, *line.ProductID)
				if err != nil {
					return err
				}
				if tag.RowsAffected() == 0 {
					return fmt.Errorf("product %d: %w", *line.ProductID, ErrInsufficientStock)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, debtID)
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*Debt, error) {
	return loadDebt(ctx, r.pool, id)
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadDebt(ctx context.Context, q queryer, id int64) (*Debt, error) {
	var d Debt
	row := q.QueryRow(ctx, `
		SELECT id, customer_id, status, created_at, settled_at
		FROM debts WHERE id = $1`, id)
	err := row.Scan(&d.ID, &d.CustomerID, &d.Status, &d.CreatedAt, &d.SettledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	lineRows, err := q.Query(ctx, `
		SELECT id, debt_id, product_id, product_name, quantity, unit_price
		FROM debt_lines WHERE debt_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var l Line
		if err := lineRows.Scan(&l.ID, &l.DebtID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		d.Lines = append(d.Lines, l)
	}
	if err := lineRows.Err(); err != nil {
		return nil, err
	}

	payRows, err := q.Query(ctx, `
		SELECT id, debt_id, amount, memo, paid_at
		FROM debt_payments WHERE debt_id = $1 ORDER BY paid_at ASC, id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer payRows.Close()
	for payRows.Next() {
		var p Payment
		if err := payRows.Scan(&p.ID, &p.DebtID, &p.Amount, &p.Memo, &p.PaidAt); err != nil {
			return nil, err
		}
		d.Payments = append(d.Payments, p)
	}
	return &d, payRows.Err()
}

func (r *pgRepository) List(ctx context.Context, f ListFilters) ([]ListItem, error) {
	where := "1=1"
	args := []any{}
	argPos := 1
	if f.Status != nil {
		where += fmt.Sprintf(" AND d.status = $%d", argPos)
		args = append(args, *f.Status)
		argPos++
	}
	if f.CustomerID != nil {
		where += fmt.Sprintf(" AND d.customer_id = $%d", argPos)
		args = append(args, *f.CustomerID)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT d.id, d.customer_id, c.name, d.created_at, d.status,
		       COALESCE(SUM(dl.unit_price * dl.quantity), 0) AS total,
		       GREATEST(0, COALESCE(SUM(dl.unit_price * dl.quantity), 0) -
		           COALESCE((SELECT SUM(p.amount) FROM debt_payments p WHERE p.debt_id = d.id), 0)) AS balance
		FROM debts d
		JOIN customers c ON c.id = d.customer_id
		LEFT JOIN debt_lines dl ON dl.debt_id = d.id
		WHERE %s
		GROUP BY d.id, d.customer_id, c.name, d.created_at, d.status
		ORDER BY d.created_at DESC`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListItem
	for rows.Next() {
		var it ListItem
		if err := rows.Scan(&it.ID, &it.CustomerID, &it.CustomerName, &it.CreatedAt, &it.Status, &it.Total, &it.Balance); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *pgRepository) AddPayment(ctx context.Context, debtID int64, fn func(d *Debt) (Payment, bool, error)) (*Debt, error) {
	var result *Debt
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		d, err := loadDebt(ctx, tx, debtID)
		if err != nil {
			return err
		}
		payment, settle, err := fn(d)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO debt_payments (debt_id, amount, memo, paid_at)
			VALUES ($1, $2, $3, $4)`,
			debtID, payment.Amount, payment.Memo, payment.PaidAt); err != nil {
			return err
		}
		if settle {
			if _, err := tx.Exec(ctx, `
				UPDATE debts SET status = $1, settled_at = $2 WHERE id = $3`,
				StatusPaid, payment.PaidAt, debtID); err != nil {
				return err
			}
		}
		result, err = loadDebt(ctx, tx, debtID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *pgRepository) UpdateStatus(ctx context.Context, id int64, status Status, settledAt *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE debts SET status = $1, settled_at = $2 WHERE id = $3`,
		status, settledAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM debt_payments WHERE debt_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM debt_lines WHERE debt_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM debts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
