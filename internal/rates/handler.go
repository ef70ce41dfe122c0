package rates

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abasto/abasto/internal/platform/httpx"
)

// Handler exposes the exchange rate JSON API.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler builds a rate handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// MountRoutes registers rate routes on the router group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.History)
	r.Post("/", h.Record)
	r.Get("/current", h.Current)
}

// History returns recent observations, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.logger.Error("list rates", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

// Record appends a new observation.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rate   float64 `json:"rate"`
		Source *string `json:"source"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	entry, err := h.service.Record(r.Context(), req.Rate, req.Source)
	if err != nil {
		if errors.Is(err, ErrInvalidRate) {
			httpx.Problem(w, r, http.StatusBadRequest, "Validation failed", err.Error())
			return
		}
		h.logger.Error("record rate", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

// Current returns the newest observation.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.Current(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoRate) {
			httpx.Problem(w, r, http.StatusNotFound, "Not found", err.Error())
			return
		}
		h.logger.Error("current rate", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}
