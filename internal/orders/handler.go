package orders

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/abasto/abasto/internal/platform/httpx"
	"github.com/abasto/abasto/internal/shared"
	"github.com/abasto/abasto/internal/view"
)

// Handler exposes order pages and the JSON management API.
type Handler struct {
	service   *Service
	carts     CartReader
	templates *view.Engine
	logger    *slog.Logger
}

// NewHandler builds an order handler.
func NewHandler(service *Service, carts CartReader, templates *view.Engine, logger *slog.Logger) *Handler {
	return &Handler{service: service, carts: carts, templates: templates, logger: logger}
}

// MountRoutes registers order routes on the router group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ListPage)
	r.Get("/checkout", h.CheckoutPage)
	r.Post("/checkout", h.Checkout)
	r.Get("/{id}", h.DetailPage)
	r.Post("/{id}/status", h.ChangeStatusForm)

	r.Route("/api", func(api chi.Router) {
		api.Get("/", h.List)
		api.Get("/{id}", h.Get)
		api.Post("/{id}/status", h.ChangeStatus)
		api.Put("/{id}/lines/{lineID}/price", h.SetLinePrice)
		api.Put("/{id}/lines/{lineID}/quantity", h.UpdateLineQuantity)
		api.Delete("/{id}/lines/{lineID}", h.DeleteLine)
	})
}

// ListPage renders the order listing.
func (h *Handler) ListPage(w http.ResponseWriter, r *http.Request) {
	var f ListFilters
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		f.Status = &status
	}
	items, err := h.service.List(r.Context(), f)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		http.Error(w, "error interno", http.StatusInternalServerError)
		return
	}
	h.templates.Render(w, r, "pages/orders.html", view.TemplateData{
		Title: "Pedidos",
		Data:  map[string]any{"Orders": items},
	})
}

// DetailPage renders one order with its lines and status form.
func (h *Handler) DetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.templates.Render(w, r, "pages/order_detail.html", view.TemplateData{
		Title: "Pedido " + order.DocNumber,
		Data:  map[string]any{"Order": order},
	})
}

// CheckoutPage renders the checkout form with the cart total.
func (h *Handler) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	h.renderCheckout(w, r, CheckoutForm{}, nil)
}

// Checkout places an order from the posted contact form.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	form := CheckoutForm{
		Identification: r.PostFormValue("identification"),
		Name:           r.PostFormValue("name"),
		Address:        r.PostFormValue("address"),
		Phone:          r.PostFormValue("phone"),
		Email:          r.PostFormValue("email"),
		Notes:          r.PostFormValue("notes"),
	}
	order, err := h.service.Checkout(r.Context(), sess, form, r.Header.Get("Idempotency-Key"))
	if err != nil {
		var vErrs validator.ValidationErrors
		switch {
		case errors.Is(err, ErrEmptyCart):
			if sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Tu carrito está vacío"})
			}
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
		case errors.As(err, &vErrs):
			h.renderCheckout(w, r, form, formErrors(vErrs))
		case errors.Is(err, ErrInsufficientStock):
			if sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "No hay suficiente inventario para completar el pedido"})
			}
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
		default:
			h.logger.Error("checkout failed", slog.Any("error", err))
			h.renderCheckout(w, r, form, map[string]string{"general": "No se pudo procesar el pedido"})
		}
		return
	}
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Pedido " + order.DocNumber + " registrado"})
	}
	http.Redirect(w, r, fmt.Sprintf("/orders/%d", order.ID), http.StatusSeeOther)
}

func (h *Handler) renderCheckout(w http.ResponseWriter, r *http.Request, form CheckoutForm, errs map[string]string) {
	sess := shared.SessionFromContext(r.Context())
	_, total, err := h.carts.Items(r.Context(), sess)
	if err != nil {
		h.logger.Error("load cart for checkout", slog.Any("error", err))
		http.Error(w, "error interno", http.StatusInternalServerError)
		return
	}
	h.templates.Render(w, r, "pages/checkout.html", view.TemplateData{
		Title: "Finalizar compra",
		Data: map[string]any{
			"Total":  total,
			"Errors": errs,
			"Form":   form,
		},
	})
}

// ChangeStatusForm handles the status dropdown on the detail page.
func (h *Handler) ChangeStatusForm(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	id, err := parseID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	status := Status(r.PostFormValue("status"))
	err = h.service.ChangeStatus(r.Context(), id, status)
	var unpriced *UnpricedCustomLinesError
	switch {
	case err == nil:
		if status == StatusCancelled {
			if sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Pedido cancelado, inventario restaurado"})
			}
			http.Redirect(w, r, "/orders", http.StatusSeeOther)
			return
		}
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Estado actualizado"})
		}
	case errors.As(err, &unpriced):
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Asigna precio a los productos personalizados antes de completar"})
		}
	case errors.Is(err, ErrFinalStatus):
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "El pedido ya fue finalizado"})
		}
	case errors.Is(err, ErrInvalidStatus):
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Estado desconocido"})
		}
	default:
		h.logger.Error("change order status", slog.Any("error", err))
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "No se pudo actualizar el pedido"})
		}
	}
	http.Redirect(w, r, fmt.Sprintf("/orders/%d", id), http.StatusSeeOther)
}

// List returns order summaries as JSON.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var f ListFilters
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		f.Status = &status
	}
	items, err := h.service.List(r.Context(), f)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

// Get returns one order with its lines.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid ID", "order id must be an integer")
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"order": order, "total": order.Total()})
}

// ChangeStatus moves an order through its lifecycle via JSON.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid ID", "order id must be an integer")
		return
	}
	var req struct {
		Status Status `json:"status"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.service.ChangeStatus(r.Context(), id, req.Status); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetLinePrice fixes a custom line price.
func (h *Handler) SetLinePrice(w http.ResponseWriter, r *http.Request) {
	orderID, lineID, ok := h.parseLineIDs(w, r)
	if !ok {
		return
	}
	var req struct {
		Price float64 `json:"price"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.service.SetLinePrice(r.Context(), orderID, lineID, req.Price); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateLineQuantity changes a line quantity.
func (h *Handler) UpdateLineQuantity(w http.ResponseWriter, r *http.Request) {
	orderID, lineID, ok := h.parseLineIDs(w, r)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.service.UpdateLineQuantity(r.Context(), orderID, lineID, req.Quantity); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteLine removes a line from an open order.
func (h *Handler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	orderID, lineID, ok := h.parseLineIDs(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteLine(r.Context(), orderID, lineID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseLineIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	orderID, err := parseID(r, "id")
	if err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid ID", "order id must be an integer")
		return 0, 0, false
	}
	lineID, err := parseID(r, "lineID")
	if err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid ID", "line id must be an integer")
		return 0, 0, false
	}
	return orderID, lineID, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErrs    validator.ValidationErrors
		unpriced *UnpricedCustomLinesError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, r, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrInvalidQuantity):
		httpx.Problem(w, r, http.StatusBadRequest, "Validation failed", err.Error())
	case errors.As(err, &vErrs):
		httpx.RespondError(w, r, err)
	case errors.As(err, &unpriced), errors.Is(err, ErrFinalStatus),
		errors.Is(err, ErrInsufficientStock), errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, r, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("orders request failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
	}
}

func formErrors(vErrs validator.ValidationErrors) map[string]string {
	errs := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		switch fe.Field() {
		case "Identification":
			errs["identification"] = "Indica tu cédula o RIF"
		case "Name":
			errs["name"] = "Indica tu nombre"
		case "Email":
			errs["email"] = "Correo inválido"
		default:
			errs[fe.Field()] = "Valor inválido"
		}
	}
	return errs
}

func parseID(r *http.Request, param string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, param), 10, 64)
}
