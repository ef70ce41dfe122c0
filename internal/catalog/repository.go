package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides access to products and categories.
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, f ListFilters) ([]Product, int, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, delta int) error

	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id int64) (*Category, error)
	GetCategoryByName(ctx context.Context, name string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int64) error
	CountProductsByCategory(ctx context.Context, categoryID int64) (int, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed catalog repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) CreateProduct(ctx context.Context, p *Product) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, price, quantity, category_id, image_url, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Price, p.Quantity, p.CategoryID, p.ImageURL, p.Description)
	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *pgRepository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, price, quantity, category_id, image_url, description, created_at, updated_at
		FROM products WHERE id = $1`, id)
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.CategoryID, &p.ImageURL, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgRepository) ListProducts(ctx context.Context, f ListFilters) ([]Product, int, error) {
	where := []string{"1=1"}
	args := []any{}
	argPos := 1

	if f.Search != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", argPos))
		args = append(args, "%"+f.Search+"%")
		argPos++
	}
	if f.CategoryID != nil {
		where = append(where, fmt.Sprintf("category_id = $%d", argPos))
		args = append(args, *f.CategoryID)
		argPos++
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := "name ASC"
	switch f.SortBy {
	case "price":
		orderBy = "price"
	case "quantity":
		orderBy = "quantity"
	case "created_at":
		orderBy = "created_at"
	case "name", "":
		orderBy = "name"
	}
	if f.SortDir == "desc" {
		orderBy += " DESC"
	} else {
		orderBy += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(`
		SELECT id, name, price, quantity, category_id, image_url, description, created_at, updated_at
		FROM products WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		whereClause, orderBy, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.CategoryID, &p.ImageURL, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *pgRepository) UpdateProduct(ctx context.Context, p *Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $1, price = $2, quantity = $3, category_id = $4, image_url = $5, description = $6, updated_at = now()
		WHERE id = $7`,
		p.Name, p.Price, p.Quantity, p.CategoryID, p.ImageURL, p.Description, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) AdjustStock(ctx context.Context, id int64, delta int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET quantity = quantity + $1, updated_at = now()
		WHERE id = $2 AND quantity + $1 >= 0`, delta, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetProduct(ctx, id); getErr != nil {
			return getErr
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *pgRepository) CreateCategory(ctx context.Context, c *Category) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name, description, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		c.Name, c.Description, c.IsActive)
	err := row.Scan(&c.ID, &c.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateCategory
	}
	return err
}

func (r *pgRepository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var c Category
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, description, is_active, created_at
		FROM categories WHERE id = $1`, id)
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgRepository) GetCategoryByName(ctx context.Context, name string) (*Category, error) {
	var c Category
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, description, is_active, created_at
		FROM categories WHERE lower(name) = lower($1)`, name)
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, is_active, created_at
		FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *pgRepository) UpdateCategory(ctx context.Context, c *Category) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE categories SET name = $1, description = $2, is_active = $3
		WHERE id = $4`,
		c.Name, c.Description, c.IsActive, c.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCategory
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) CountProductsByCategory(ctx context.Context, categoryID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID).Scan(&n)
	return n, err
}
