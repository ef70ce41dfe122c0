package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abasto/abasto/internal/platform/db"
)

// Repository provides transactional access to orders.
type Repository interface {
	// Create inserts the order with its lines and decrements stock for
	// stock-backed lines inside the same transaction.
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, f ListFilters) ([]ListItem, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	SetLinePrice(ctx context.Context, orderID, lineID int64, price float64) error
	// UpdateLineQuantity changes a line quantity, applying the stock
	// delta for stock-backed lines.
	UpdateLineQuantity(ctx context.Context, orderID, lineID int64, quantity int) error
	// DeleteLine removes a line, restoring stock for stock-backed lines.
	DeleteLine(ctx context.Context, orderID, lineID int64) error
	// CancelAndDelete restores stock for stock-backed lines and removes
	// the order with its lines.
	CancelAndDelete(ctx context.Context, id int64) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed order repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Create(ctx context.Context, o *Order) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO orders (doc_number, customer_id, customer_name, customer_identification,
			                    customer_phone, customer_email, customer_address, notes, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at`,
			o.DocNumber, o.CustomerID, o.CustomerName, o.CustomerIdentification,
			o.CustomerPhone, o.CustomerEmail, o.CustomerAddress, o.Notes, o.Status)
		if err := row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return err
		}
		for i := range o.Lines {
			line := &o.Lines[i]
			line.OrderID = o.ID
			if err := tx.QueryRow(ctx, `
				INSERT INTO order_lines (order_id, product_id, product_name, is_custom,
				                         measurements, colors, material, spec, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				RETURNING id`,
				line.OrderID, line.ProductID, line.ProductName, line.IsCustom,
				line.Measurements, line.Colors, line.Material, line.Spec,
				line.Quantity, line.UnitPrice).Scan(&line.ID); err != nil {
				return err
			}
			if !line.IsCustom && line.ProductID != nil {
				if err := adjustStockTx(ctx, tx, *line.ProductID, -line.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func adjustStockTx(ctx context.Context, tx pgx.Tx, productID int64, delta int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE products SET quantity = quantity + $1, updated_at = now()
		WHERE id = $2 AND quantity + $1 >= 0`, delta, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", productID, ErrInsufficientStock)
	}
	return nil
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*Order, error) {
	var o Order
	row := r.pool.QueryRow(ctx, `
		SELECT id, doc_number, customer_id, customer_name, customer_identification,
		       customer_phone, customer_email, customer_address, notes, status, created_at, updated_at
		FROM orders WHERE id = $1`, id)
	err := row.Scan(&o.ID, &o.DocNumber, &o.CustomerID, &o.CustomerName, &o.CustomerIdentification,
		&o.CustomerPhone, &o.CustomerEmail, &o.CustomerAddress, &o.Notes, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, product_name, is_custom,
		       measurements, colors, material, spec, quantity, unit_price
		FROM order_lines WHERE order_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.IsCustom,
			&l.Measurements, &l.Colors, &l.Material, &l.Spec, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, l)
	}
	return &o, rows.Err()
}

func (r *pgRepository) List(ctx context.Context, f ListFilters) ([]ListItem, error) {
	where := "1=1"
	args := []any{}
	if f.Status != nil {
		where = "o.status = $1"
		args = append(args, *f.Status)
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT o.id, o.doc_number, o.customer_name, o.created_at, o.status,
		       COALESCE(SUM(ol.unit_price * ol.quantity), 0) AS total
		FROM orders o
		LEFT JOIN order_lines ol ON ol.order_id = o.id
		WHERE %s
		GROUP BY o.id, o.doc_number, o.customer_name, o.created_at, o.status
		ORDER BY o.created_at DESC`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListItem
	for rows.Next() {
		var it ListItem
		if err := rows.Scan(&it.ID, &it.DocNumber, &it.CustomerName, &it.CreatedAt, &it.Status, &it.Total); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *pgRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) SetLinePrice(ctx context.Context, orderID, lineID int64, price float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE order_lines SET unit_price = $1 WHERE id = $2 AND order_id = $3`,
		price, lineID, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) UpdateLineQuantity(ctx context.Context, orderID, lineID int64, quantity int) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var (
			productID *int64
			isCustom  bool
			current   int
		)
		err := tx.QueryRow(ctx, `
			SELECT product_id, is_custom, quantity FROM order_lines
			WHERE id = $1 AND order_id = $2`, lineID, orderID).
			Scan(&productID, &isCustom, &current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !isCustom && productID != nil && quantity != current {
			// Stock moves opposite to the line quantity.
			if err := adjustStockTx(ctx, tx, *productID, current-quantity); err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `UPDATE order_lines SET quantity = $1 WHERE id = $2`, quantity, lineID)
		return err
	})
}

func (r *pgRepository) DeleteLine(ctx context.Context, orderID, lineID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var (
			productID *int64
			isCustom  bool
			quantity  int
		)
		err := tx.QueryRow(ctx, `
			SELECT product_id, is_custom, quantity FROM order_lines
			WHERE id = $1 AND order_id = $2`, lineID, orderID).
			Scan(&productID, &isCustom, &quantity)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !isCustom && productID != nil {
			if err := adjustStockTx(ctx, tx, *productID, quantity); err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `DELETE FROM order_lines WHERE id = $1`, lineID)
		return err
	})
}

func (r *pgRepository) CancelAndDelete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT product_id, is_custom, quantity FROM order_lines WHERE order_id = $1`, id)
		if err != nil {
			return err
		}
		type restore struct {
			productID int64
			quantity  int
		}
		var restores []restore
		for rows.Next() {
			var (
				productID *int64
				isCustom  bool
				quantity  int
			)
			if err := rows.Scan(&productID, &isCustom, &quantity); err != nil {
				rows.Close()
				return err
			}
			if !isCustom && productID != nil {
				restores = append(restores, restore{productID: *productID, quantity: quantity})
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		for _, rs := range restores {
			if err := adjustStockTx(ctx, tx, rs.productID, rs.quantity); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
