package cart

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abasto/abasto/internal/platform/httpx"
	"github.com/abasto/abasto/internal/shared"
	"github.com/abasto/abasto/internal/view"
)

// Handler exposes the cart pages and mutations.
type Handler struct {
	service   *Service
	templates *view.Engine
	logger    *slog.Logger
}

// NewHandler builds a cart handler.
func NewHandler(service *Service, templates *view.Engine, logger *slog.Logger) *Handler {
	return &Handler{service: service, templates: templates, logger: logger}
}

// MountRoutes registers cart routes on the router group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Page)
	r.Get("/count", h.Count)
	r.Post("/items/{productID}", h.Add)
	r.Post("/items/{key}/remove", h.Remove)
	r.Post("/items/{key}/quantity", h.UpdateQuantity)
	r.Post("/custom/{productID}", h.AddCustom)
	r.Post("/clear", h.Clear)
}

// Count returns the number of cart lines for the navbar badge.
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]int{"count": h.service.Count(sess)})
}

// Page renders the cart contents.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	items, total, err := h.service.Items(r.Context(), sess)
	if err != nil {
		h.logger.Error("load cart", slog.Any("error", err))
		http.Error(w, "error interno", http.StatusInternalServerError)
		return
	}
	h.templates.Render(w, r, "pages/cart.html", view.TemplateData{
		Title: "Carrito",
		Data:  map[string]any{"Items": items, "Total": total},
	})
}

// Add puts a stock product in the cart.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	quantity, _ := strconv.Atoi(r.PostFormValue("quantity"))
	if err := h.service.Add(r.Context(), sess, productID, quantity); err != nil {
		h.flashError(sess, err)
		http.Redirect(w, r, "/catalog/products", http.StatusSeeOther)
		return
	}
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Producto agregado al carrito"})
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// AddCustom puts a made-to-order line in the cart.
func (h *Handler) AddCustom(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	spec := CustomSpec{
		Measurements: r.PostFormValue("measurements"),
		Colors:       r.PostFormValue("colors"),
		Material:     r.PostFormValue("material"),
		Spec:         r.PostFormValue("spec"),
	}
	if err := h.service.AddCustom(r.Context(), sess, productID, spec); err != nil {
		h.flashError(sess, err)
		http.Redirect(w, r, "/catalog/products", http.StatusSeeOther)
		return
	}
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Producto personalizado agregado"})
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// UpdateQuantity changes a line quantity.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	if err := h.service.UpdateQuantity(r.Context(), sess, chi.URLParam(r, "key"), quantity); err != nil {
		h.flashError(sess, err)
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// Remove drops a line from the cart.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if err := h.service.Remove(sess, chi.URLParam(r, "key")); err != nil && !errors.Is(err, ErrItemNotFound) {
		h.flashError(sess, err)
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// Clear empties the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	h.service.Clear(sess)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) flashError(sess *shared.Session, err error) {
	if sess == nil {
		return
	}
	text := "No se pudo actualizar el carrito"
	if errors.Is(err, ErrInsufficientStock) {
		text = "No hay suficiente inventario disponible"
	}
	sess.AddFlash(shared.FlashMessage{Kind: "error", Message: text})
	h.logger.Warn("cart mutation rejected", slog.Any("error", err))
}
