package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides access to customer records.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	Get(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context, search string, page, limit int) ([]Customer, int, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id int64) error
	FindByIdentification(ctx context.Context, identification string) (*Customer, error)
	FindByName(ctx context.Context, name string) (*Customer, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed customer repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const customerColumns = "id, name, identification, phone, email, address, created_at"

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Identification, &c.Phone, &c.Email, &c.Address, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgRepository) Create(ctx context.Context, c *Customer) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO customers (name, identification, phone, email, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		c.Name, c.Identification, c.Phone, c.Email, c.Address)
	return row.Scan(&c.ID, &c.CreatedAt)
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = $1", id))
}

func (r *pgRepository) List(ctx context.Context, search string, page, limit int) ([]Customer, int, error) {
	where := "1=1"
	args := []any{}
	if search != "" {
		where = "(name ILIKE $1 OR identification ILIKE $1)"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM customers WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	query := fmt.Sprintf("SELECT %s FROM customers WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		customerColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Identification, &c.Phone, &c.Email, &c.Address, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *pgRepository) Update(ctx context.Context, c *Customer) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers SET name = $1, identification = $2, phone = $3, email = $4, address = $5
		WHERE id = $6`,
		c.Name, c.Identification, c.Phone, c.Email, c.Address, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) FindByIdentification(ctx context.Context, identification string) (*Customer, error) {
	normalized := strings.ToUpper(strings.TrimSpace(identification))
	return scanCustomer(r.pool.QueryRow(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE upper(identification) = $1", normalized))
}

func (r *pgRepository) FindByName(ctx context.Context, name string) (*Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE lower(name) = lower($1) ORDER BY id ASC LIMIT 1", name))
}
