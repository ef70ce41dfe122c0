package catalog

import (
	"errors"
	"time"
)

// Product represents a catalog product with a mutable stock counter.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category groups products. One configured category name marks
// made-to-order products whose catalog price may be zero.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateProductRequest carries product creation fields.
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	CategoryID  *int64  `json:"category_id,omitempty"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty"`
}

// UpdateProductRequest carries product update fields.
type UpdateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	CategoryID  *int64  `json:"category_id,omitempty"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty"`
}

// ListFilters narrows product listings.
type ListFilters struct {
	Search     string
	CategoryID *int64
	Page       int
	Limit      int
	SortBy     string
	SortDir    string
}

var (
	// ErrNotFound indicates the product or category does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrCategoryInUse blocks deleting a category that products reference.
	ErrCategoryInUse = errors.New("catalog: category has associated products")
	// ErrDuplicateCategory indicates a category name collision.
	ErrDuplicateCategory = errors.New("catalog: category name already exists")
	// ErrInsufficientStock is returned when a stock mutation would go negative.
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
)
