package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Service implements catalog rules on top of the repository.
type Service struct {
	repo           Repository
	validate       *validator.Validate
	customCategory string
	logger         *slog.Logger
}

// NewService builds a catalog service. customCategory is the name of the
// category whose products are made to order and may carry a zero price.
func NewService(repo Repository, customCategory string, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		validate:       validator.New(),
		customCategory: customCategory,
		logger:         logger,
	}
}

// IsCustomCategory reports whether the category holds made-to-order products.
func (s *Service) IsCustomCategory(ctx context.Context, categoryID *int64) (bool, error) {
	if categoryID == nil {
		return false, nil
	}
	cat, err := s.repo.GetCategory(ctx, *categoryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return strings.EqualFold(cat.Name, s.customCategory), nil
}

// CreateProduct validates and stores a new product. A positive price is
// required unless the product belongs to the custom category.
func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if err := s.checkPriceRule(ctx, req.Price, req.CategoryID); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *req.CategoryID); err != nil {
			return nil, fmt.Errorf("category %d: %w", *req.CategoryID, err)
		}
	}
	p := &Product{
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		Quantity:    req.Quantity,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("product created", "product_id", p.ID, "name", p.Name)
	return p, nil
}

// GetProduct fetches a product by ID.
func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// ListProducts returns a filtered product page and a total count.
func (s *Service) ListProducts(ctx context.Context, f ListFilters) ([]Product, int, error) {
	return s.repo.ListProducts(ctx, f)
}

// UpdateProduct validates and persists product changes.
func (s *Service) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if err := s.checkPriceRule(ctx, req.Price, req.CategoryID); err != nil {
		return nil, err
	}
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(req.Name)
	p.Price = req.Price
	p.Quantity = req.Quantity
	p.CategoryID = req.CategoryID
	p.ImageURL = req.ImageURL
	p.Description = req.Description
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", "product_id", id)
	return nil
}

// AdjustStock applies a signed quantity delta, refusing to go below zero.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) error {
	return s.repo.AdjustStock(ctx, id, delta)
}

// CreateCategory stores a new category.
func (s *Service) CreateCategory(ctx context.Context, name string, description *string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}
	c := &Category{Name: name, Description: description, IsActive: true}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCategory fetches a category by ID.
func (s *Service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

// ListCategories returns all categories ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// UpdateCategory renames or toggles a category.
func (s *Service) UpdateCategory(ctx context.Context, id int64, name string, description *string, isActive bool) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	c.Description = description
	c.IsActive = isActive
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes a category unless products still reference it.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	n, err := s.repo.CountProductsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d product(s) reference it", ErrCategoryInUse, n)
	}
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) checkPriceRule(ctx context.Context, price float64, categoryID *int64) error {
	if price > 0 {
		return nil
	}
	custom, err := s.IsCustomCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if !custom {
		return fmt.Errorf("price must be greater than zero")
	}
	return nil
}
