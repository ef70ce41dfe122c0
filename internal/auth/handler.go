package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abasto/abasto/internal/shared"
	"github.com/abasto/abasto/internal/view"
)

// Handler exposes login, logout and password management.
type Handler struct {
	service   *Service
	sessions  *shared.SessionManager
	templates *view.Engine
	logger    *slog.Logger
}

// NewHandler builds an auth handler.
func NewHandler(service *Service, sessions *shared.SessionManager, templates *view.Engine, logger *slog.Logger) *Handler {
	return &Handler{service: service, sessions: sessions, templates: templates, logger: logger}
}

// MountRoutes registers auth routes on the router group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/change-password", h.ChangePassword)
}

// LoginPage renders the login form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.templates.Render(w, r, "pages/login.html", view.TemplateData{
		Title: "Iniciar sesión",
		Data:  map[string]any{"Errors": map[string]string{}},
	})
}

// Login authenticates the operator and binds the session to the account.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.service.Authenticate(r.Context(), email, password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("login failed", slog.Any("error", err))
		}
		h.templates.Render(w, r, "pages/login.html", view.TemplateData{
			Title: "Iniciar sesión",
			Data:  map[string]any{"Errors": map[string]string{"credentials": "Correo o contraseña incorrectos"}},
		})
		return
	}
	if sess != nil {
		sess.SetUser(user.ID)
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Bienvenido, " + user.Name})
	}
	h.service.RecordLogin(r.Context(), user.ID, r.RemoteAddr)
	http.Redirect(w, r, "/reports/dashboard", http.StatusSeeOther)
}

// Logout destroys the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessions.Destroy(sess)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ChangePassword rotates the operator password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	err := h.service.ChangePassword(r.Context(), sess.User(),
		r.PostFormValue("current_password"), r.PostFormValue("new_password"))
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Contraseña actual incorrecta"})
	case errors.Is(err, ErrWeakPassword):
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "La nueva contraseña debe tener al menos 8 caracteres"})
	case err != nil:
		h.logger.Error("change password", slog.Any("error", err))
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "No se pudo cambiar la contraseña"})
	default:
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Contraseña actualizada"})
	}
	http.Redirect(w, r, "/company/account", http.StatusSeeOther)
}
