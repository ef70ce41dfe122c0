package reports

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abasto/abasto/internal/platform/httpx"
	"github.com/abasto/abasto/internal/view"
)

// RateSource exposes the current exchange rate for the dashboard.
type RateSource interface {
	CurrentRate(ctx context.Context) (float64, error)
}

// Handler exposes the sales dashboard and reporting API.
type Handler struct {
	service   *Service
	rates     RateSource
	templates *view.Engine
	logger    *slog.Logger
}

// NewHandler builds a report handler. rates may be nil when no exchange
// rate has been configured yet.
func NewHandler(service *Service, rates RateSource, templates *view.Engine, logger *slog.Logger) *Handler {
	return &Handler{service: service, rates: rates, templates: templates, logger: logger}
}

// MountRoutes registers report routes on the router group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)

	r.Route("/api", func(api chi.Router) {
		api.Get("/summary", h.Summary)
		api.Get("/sales", h.Sales)
		api.Get("/series/daily", h.DailySeries)
		api.Get("/series/weekly", h.WeeklySeries)
		api.Get("/series/monthly", h.MonthlySeries)
	})
}

// Dashboard renders the sales panel.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("dashboard summary", slog.Any("error", err))
		http.Error(w, "error interno", http.StatusInternalServerError)
		return
	}
	rate := 0.0
	if h.rates != nil {
		if current, err := h.rates.CurrentRate(r.Context()); err == nil {
			rate = current
		}
	}
	h.templates.Render(w, r, "pages/dashboard.html", view.TemplateData{
		Title: "Panel de ventas",
		Data: map[string]any{
			"Today":       summary.Today,
			"Week":        summary.Week,
			"Month":       summary.Month,
			"CurrentRate": rate,
		},
	})
}

// Summary returns the dashboard aggregate as JSON.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("summary failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// Sales returns one period's figures.
func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	period := Period(r.URL.Query().Get("period"))
	if period == "" {
		period = PeriodToday
	}
	summary, err := h.service.SalesForPeriod(r.Context(), period)
	if errors.Is(err, ErrUnknownPeriod) {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid period", err.Error())
		return
	}
	if err != nil {
		h.logger.Error("period sales failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"period": period, "sales": summary})
}

// DailySeries returns the last seven days of completed-order sales.
func (h *Handler) DailySeries(w http.ResponseWriter, r *http.Request) {
	h.series(w, r, h.service.DailySeries)
}

// WeeklySeries returns the last eight weeks of completed-order sales.
func (h *Handler) WeeklySeries(w http.ResponseWriter, r *http.Request) {
	h.series(w, r, h.service.WeeklySeries)
}

// MonthlySeries returns the last twelve months of completed-order sales.
func (h *Handler) MonthlySeries(w http.ResponseWriter, r *http.Request) {
	h.series(w, r, h.service.MonthlySeries)
}

func (h *Handler) series(w http.ResponseWriter, r *http.Request, fn func(context.Context) ([]SeriesPoint, error)) {
	points, err := fn(r.Context())
	if err != nil {
		h.logger.Error("series failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"points": points})
}
