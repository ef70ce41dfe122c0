package debts

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abasto/abasto/internal/platform/httpx"
	"github.com/abasto/abasto/internal/shared"
	"github.com/abasto/abasto/internal/view"
)

// Handler exposes the debt ledger pages and JSON API.
type Handler struct {
	service   *Service
	templates *view.Engine
	logger    *slog.Logger
}

// NewHandler builds a debt handler.
func NewHandler(service *Service, templates *view.Engine, logger *slog.Logger) *Handler {
	return &Handler{service: service, templates: templates, logger: logger}
}

// MountRoutes registers debt routes on the router group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ListPage)
	r.Get("/{id}", h.DetailPage)
	r.Post("/{id}/payments", h.RegisterPaymentForm)

	r.Route("/api", func(api chi.Router) {
		api.Get("/", h.List)
		api.Post("/", h.Create)
		api.Get("/{id}", h.Get)
		api.Post("/{id}/payments", h.RegisterPayment)
		api.Post("/{id}/mark-paid", h.MarkPaid)
		api.Delete("/{id}", h.Delete)
	})
}

// ListPage renders the debt ledger.
func (h *Handler) ListPage(w http.ResponseWriter, r *http.Request) {
	var f ListFilters
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		f.Status = &status
	}
	items, err := h.service.List(r.Context(), f)
	if err != nil {
		h.logger.Error("list debts", slog.Any("error", err))
		http.Error(w, "error interno", http.StatusInternalServerError)
		return
	}
	h.templates.Render(w, r, "pages/debts.html", view.TemplateData{
		Title: "Deudas",
		Data:  map[string]any{"Debts": items},
	})
}

// DetailPage renders one debt with its VAT breakdown and payment form.
func (h *Handler) DetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.templates.Render(w, r, "pages/debt_detail.html", view.TemplateData{
		Title: fmt.Sprintf("Deuda #%d", d.ID),
		Data: map[string]any{
			"Debt":    d,
			"VAT":     BreakdownFromTotal(d.Total()),
			"Balance": d.Balance(),
		},
	})
}

// RegisterPaymentForm handles the payment form on the detail page.
func (h *Handler) RegisterPaymentForm(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	id, err := parseID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	amount, err := strconv.ParseFloat(r.PostFormValue("amount"), 64)
	if err != nil {
		h.flash(sess, "error", "Monto inválido")
		http.Redirect(w, r, fmt.Sprintf("/debts/%d", id), http.StatusSeeOther)
		return
	}
	var memo *string
	if m := r.PostFormValue("memo"); m != "" {
		memo = &m
	}
	d, err := h.service.RegisterPayment(r.Context(), id, amount, memo, r.Header.Get("Idempotency-Key"))
	switch {
	case errors.Is(err, ErrInvalidAmount):
		h.flash(sess, "error", "El monto debe ser mayor que cero")
	case errors.Is(err, ErrAlreadySettled):
		h.flash(sess, "error", "La deuda ya está saldada")
	case err != nil:
		h.logger.Error("register payment", slog.Any("error", err))
		h.flash(sess, "error", "No se pudo registrar el pago")
	case d.Status == StatusPaid:
		h.flash(sess, "success", "Pago registrado, deuda saldada")
	default:
		h.flash(sess, "success", "Pago registrado")
	}
	http.Redirect(w, r, fmt.Sprintf("/debts/%d", id), http.StatusSeeOther)
}

// List returns debt summaries as JSON.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var f ListFilters
	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		status := Status(raw)
		f.Status = &status
	}
	if raw := q.Get("customer_id"); raw != "" {
		customerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, r, http.StatusBadRequest, "Invalid filter", "customer_id must be an integer")
			return
		}
		f.CustomerID = &customerID
	}
	items, err := h.service.List(r.Context(), f)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

// Create opens a debt from a JSON body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID int64 `json:"customer_id"`
		Lines      []struct {
			ProductID *int64   `json:"product_id"`
			Quantity  int      `json:"quantity"`
			UnitPrice *float64 `json:"unit_price"`
		} `json:"lines"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	lines := make([]NewLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, NewLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	d, err := h.service.Create(r.Context(), req.CustomerID, lines)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, d)
}

// Get returns one debt with lines and payments.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid ID", "debt id must be an integer")
		return
	}
	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"debt":    d,
		"vat":     BreakdownFromTotal(d.Total()),
		"balance": d.Balance(),
	})
}

// RegisterPayment records an abono via JSON.
func (h *Handler) RegisterPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid ID", "debt id must be an integer")
		return
	}
	var req struct {
		Amount float64 `json:"amount"`
		Memo   *string `json:"memo"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	d, err := h.service.RegisterPayment(r.Context(), id, req.Amount, req.Memo, r.Header.Get("Idempotency-Key"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"debt": d, "balance": d.Balance()})
}

// MarkPaid settles a debt without a payment.
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid ID", "debt id must be an integer")
		return
	}
	if err := h.service.MarkPaid(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a debt with its lines and payments.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid ID", "debt id must be an integer")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, r, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrNoLines):
		httpx.Problem(w, r, http.StatusBadRequest, "Validation failed", err.Error())
	case errors.Is(err, ErrAlreadySettled), errors.Is(err, ErrInsufficientStock), errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, r, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("debts request failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
	}
}

func (h *Handler) flash(sess *shared.Session, kind, message string) {
	if sess == nil {
		return
	}
	sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
