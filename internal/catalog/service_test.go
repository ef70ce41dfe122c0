package catalog

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	products   map[int64]*Product
	categories map[int64]*Category
	nextID     int64
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		products:   make(map[int64]*Product),
		categories: make(map[int64]*Category),
		nextID:     1,
	}
}

func (m *memoryRepository) CreateProduct(_ context.Context, p *Product) error {
	p.ID = m.nextID
	m.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memoryRepository) GetProduct(_ context.Context, id int64) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryRepository) ListProducts(_ context.Context, f ListFilters) ([]Product, int, error) {
	var items []Product
	for _, p := range m.products {
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		items = append(items, *p)
	}
	return items, len(items), nil
}

func (m *memoryRepository) UpdateProduct(_ context.Context, p *Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memoryRepository) DeleteProduct(_ context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memoryRepository) AdjustStock(_ context.Context, id int64, delta int) error {
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	if p.Quantity+delta < 0 {
		return ErrInsufficientStock
	}
	p.Quantity += delta
	return nil
}

func (m *memoryRepository) CreateCategory(_ context.Context, c *Category) error {
	for _, existing := range m.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return ErrDuplicateCategory
		}
	}
	c.ID = m.nextID
	m.nextID++
	c.CreatedAt = time.Now()
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memoryRepository) GetCategory(_ context.Context, id int64) (*Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memoryRepository) GetCategoryByName(_ context.Context, name string) (*Category, error) {
	for _, c := range m.categories {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepository) ListCategories(_ context.Context) ([]Category, error) {
	var items []Category
	for _, c := range m.categories {
		items = append(items, *c)
	}
	return items, nil
}

func (m *memoryRepository) UpdateCategory(_ context.Context, c *Category) error {
	if _, ok := m.categories[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memoryRepository) DeleteCategory(_ context.Context, id int64) error {
	if _, ok := m.categories[id]; !ok {
		return ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *memoryRepository) CountProductsByCategory(_ context.Context, categoryID int64) (int, error) {
	n := 0
	for _, p := range m.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func newTestService(t *testing.T) (*Service, *memoryRepository) {
	t.Helper()
	repo := newMemoryRepository()
	svc := NewService(repo, "Personalizado", slog.Default())
	return svc, repo
}

func TestCreateProductRequiresPositivePrice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Mesa", Price: 0, Quantity: 3})
	require.Error(t, err)
	require.Contains(t, err.Error(), "price")
}

func TestCreateProductAllowsZeroPriceInCustomCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "Personalizado", nil)
	require.NoError(t, err)

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Cortina a medida", Price: 0, Quantity: 0, CategoryID: &cat.ID})
	require.NoError(t, err)
	require.Zero(t, p.Price)
}

func TestDeleteCategoryBlockedWhileProductsReferenceIt(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "Telas", nil)
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, CreateProductRequest{Name: "Lino", Price: 12.5, Quantity: 10, CategoryID: &cat.ID})
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, cat.ID)
	require.ErrorIs(t, err, ErrCategoryInUse)
	require.Contains(t, err.Error(), "1 product")

	// After the product moves out, deletion succeeds.
	products, _, err := svc.ListProducts(ctx, ListFilters{})
	require.NoError(t, err)
	_, err = svc.UpdateProduct(ctx, products[0].ID, UpdateProductRequest{Name: "Lino", Price: 12.5, Quantity: 10})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
}

func TestAdjustStockRefusesNegative(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Silla", Price: 20, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.AdjustStock(ctx, p.ID, -2))
	err = svc.AdjustStock(ctx, p.ID, -1)
	require.ErrorIs(t, err, ErrInsufficientStock)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Quantity)
}

func TestUpdateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Lampara", Price: 45, Quantity: 5})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Name: "", Price: 45, Quantity: 5})
	require.Error(t, err)

	updated, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Name: "Lampara LED", Price: 50, Quantity: 4})
	require.NoError(t, err)
	require.Equal(t, "Lampara LED", updated.Name)
	require.Equal(t, 50.0, updated.Price)
}
