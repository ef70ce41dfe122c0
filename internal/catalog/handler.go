package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/abasto/abasto/internal/platform/httpx"
	"github.com/abasto/abasto/internal/shared"
	"github.com/abasto/abasto/internal/view"
)

// Handler exposes catalog pages and the JSON management API.
type Handler struct {
	service   *Service
	templates *view.Engine
	logger    *slog.Logger
}

// NewHandler builds a catalog handler.
func NewHandler(service *Service, templates *view.Engine, logger *slog.Logger) *Handler {
	return &Handler{service: service, templates: templates, logger: logger}
}

// MountRoutes registers catalog routes on the router group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.ProductsPage)
	r.Get("/products/{id}/custom", h.CustomProductPage)

	r.Route("/api", func(api chi.Router) {
		api.Get("/products", h.ListProducts)
		api.Post("/products", h.CreateProduct)
		api.Get("/products/{id}", h.GetProduct)
		api.Put("/products/{id}", h.UpdateProduct)
		api.Delete("/products/{id}", h.DeleteProduct)
		api.Post("/products/{id}/stock", h.AdjustStock)

		api.Get("/categories", h.ListCategories)
		api.Post("/categories", h.CreateCategory)
		api.Put("/categories/{id}", h.UpdateCategory)
		api.Delete("/categories/{id}", h.DeleteCategory)
	})
}

// ProductsPage renders the storefront product listing.
func (h *Handler) ProductsPage(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if raw := r.URL.Query().Get("category"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			categoryID = &id
		}
	}
	products, _, err := h.service.ListProducts(r.Context(), ListFilters{
		Search:     r.URL.Query().Get("q"),
		CategoryID: categoryID,
		Limit:      100,
	})
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		http.Error(w, "error interno", http.StatusInternalServerError)
		return
	}
	h.templates.Render(w, r, "pages/products.html", view.TemplateData{
		Title: "Productos",
		Data:  map[string]any{"Products": products},
	})
}

// CustomProductPage renders the made-to-order specification form.
func (h *Handler) CustomProductPage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	custom, err := h.service.IsCustomCategory(r.Context(), product.CategoryID)
	if err != nil {
		h.logger.Error("check custom category", slog.Any("error", err))
		http.Error(w, "error interno", http.StatusInternalServerError)
		return
	}
	if !custom {
		http.Redirect(w, r, "/catalog/products", http.StatusSeeOther)
		return
	}
	h.templates.Render(w, r, "pages/custom_product.html", view.TemplateData{
		Title: product.Name,
		Data:  map[string]any{"Product": product},
	})
}

// ListProducts returns a filtered product page as JSON.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var categoryID *int64
	if raw := q.Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, r, http.StatusBadRequest, "Invalid filter", "category_id must be an integer")
			return
		}
		categoryID = &id
	}
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	products, total, err := h.service.ListProducts(r.Context(), ListFilters{
		Search:     q.Get("q"),
		CategoryID: categoryID,
		Page:       page,
		Limit:      limit,
		SortBy:     q.Get("sort_by"),
		SortDir:    q.Get("sort_dir"),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      products,
		"total":      total,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

// CreateProduct stores a new product from a JSON body.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	product, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

// GetProduct returns a product by ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid ID", "product id must be an integer")
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// UpdateProduct applies a full product update.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid ID", "product id must be an integer")
		return
	}
	var req UpdateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	product, err := h.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid ID", "product id must be an integer")
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustStock applies a signed stock delta.
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid ID", "product id must be an integer")
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.service.AdjustStock(r.Context(), id, req.Delta); err != nil {
		h.respondError(w, r, err)
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// ListCategories returns all categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": categories})
}

// CreateCategory stores a new category.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	category, err := h.service.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, category)
}

// UpdateCategory renames or toggles a category.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid ID", "category id must be an integer")
		return
	}
	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		IsActive    bool    `json:"is_active"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	category, err := h.service.UpdateCategory(r.Context(), id, req.Name, req.Description, req.IsActive)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, category)
}

// DeleteCategory removes an unused category.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid ID", "category id must be an integer")
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var vErrs validator.ValidationErrors
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, r, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, ErrCategoryInUse), errors.Is(err, ErrDuplicateCategory), errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, r, http.StatusConflict, "Conflict", err.Error())
	case errors.As(err, &vErrs):
		httpx.RespondError(w, r, err)
	default:
		h.logger.Error("catalog request failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
