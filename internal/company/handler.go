package company

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abasto/abasto/internal/platform/httpx"
	"github.com/abasto/abasto/internal/shared"
	"github.com/abasto/abasto/internal/view"
)

// Handler exposes the landing page and company settings.
type Handler struct {
	service   *Service
	templates *view.Engine
	logger    *slog.Logger
}

// NewHandler builds a company handler.
func NewHandler(service *Service, templates *view.Engine, logger *slog.Logger) *Handler {
	return &Handler{service: service, templates: templates, logger: logger}
}

// MountRoutes registers company routes on the router group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/account", h.AccountPage)
	r.Post("/profile", h.UpdateProfile)
	r.Post("/site-config", h.UpdateSiteConfig)

	r.Route("/api", func(api chi.Router) {
		api.Get("/profile", h.GetProfile)
		api.Get("/site-config", h.GetSiteConfig)
	})
}

// Home renders the storefront landing page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	config, err := h.service.SiteConfig(r.Context())
	if err != nil {
		h.logger.Error("load site config", slog.Any("error", err))
		http.Error(w, "error interno", http.StatusInternalServerError)
		return
	}
	h.templates.Render(w, r, "pages/home.html", view.TemplateData{
		Title: config.HeroTitle,
		Data: map[string]any{
			"HeroTitle":   config.HeroTitle,
			"HeroMessage": config.HeroMessage,
		},
	})
}

// AccountPage renders the profile and site configuration forms.
func (h *Handler) AccountPage(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context())
	if err != nil {
		h.logger.Error("load company profile", slog.Any("error", err))
		http.Error(w, "error interno", http.StatusInternalServerError)
		return
	}
	config, err := h.service.SiteConfig(r.Context())
	if err != nil {
		h.logger.Error("load site config", slog.Any("error", err))
		http.Error(w, "error interno", http.StatusInternalServerError)
		return
	}
	h.templates.Render(w, r, "pages/account.html", view.TemplateData{
		Title: "Mi cuenta",
		Data:  map[string]any{"Profile": profile, "Config": config},
	})
}

// UpdateProfile handles the identity form.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	_, err := h.service.UpdateProfile(r.Context(),
		r.PostFormValue("name"), r.PostFormValue("rif"),
		r.PostFormValue("address"), r.PostFormValue("phone"))
	if err != nil {
		h.logger.Error("update company profile", slog.Any("error", err))
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "No se pudo guardar el perfil"})
		}
	} else if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Perfil actualizado"})
	}
	http.Redirect(w, r, "/company/account", http.StatusSeeOther)
}

// UpdateSiteConfig handles the landing copy form.
func (h *Handler) UpdateSiteConfig(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	_, err := h.service.UpdateSiteConfig(r.Context(),
		r.PostFormValue("hero_title"), r.PostFormValue("hero_message"))
	if err != nil {
		h.logger.Error("update site config", slog.Any("error", err))
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "No se pudo guardar la configuración"})
		}
	} else if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Configuración actualizada"})
	}
	http.Redirect(w, r, "/company/account", http.StatusSeeOther)
}

// GetProfile returns the company profile as JSON.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context())
	if err != nil {
		h.logger.Error("load company profile", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

// GetSiteConfig returns the landing copy as JSON.
func (h *Handler) GetSiteConfig(w http.ResponseWriter, r *http.Request) {
	config, err := h.service.SiteConfig(r.Context())
	if err != nil {
		h.logger.Error("load site config", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, config)
}
