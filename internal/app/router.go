package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/abasto/abasto/internal/auth"
	"github.com/abasto/abasto/internal/cart"
	"github.com/abasto/abasto/internal/catalog"
	"github.com/abasto/abasto/internal/company"
	"github.com/abasto/abasto/internal/customers"
	"github.com/abasto/abasto/internal/debts"
	"github.com/abasto/abasto/internal/observability"
	"github.com/abasto/abasto/internal/orders"
	"github.com/abasto/abasto/internal/rates"
	"github.com/abasto/abasto/internal/reports"
	"github.com/abasto/abasto/internal/shared"
	"github.com/abasto/abasto/internal/view"
	"github.com/abasto/abasto/jobs"
	"github.com/abasto/abasto/report"
	"github.com/abasto/abasto/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthHandler      *auth.Handler
	CatalogHandler   *catalog.Handler
	CustomersHandler *customers.Handler
	CartHandler      *cart.Handler
	OrdersHandler    *orders.Handler
	DebtsHandler     *debts.Handler
	ReportsHandler   *reports.Handler
	CompanyHandler   *company.Handler
	RatesHandler     *rates.Handler
	InvoiceHandler   *report.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Abasto defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Public storefront landing page, backed by the site configuration.
	r.Get("/", params.CompanyHandler.Home)

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/catalog", params.CatalogHandler.MountRoutes)
	r.Route("/customers", params.CustomersHandler.MountRoutes)
	r.Route("/cart", params.CartHandler.MountRoutes)
	r.Route("/orders", params.OrdersHandler.MountRoutes)
	r.Route("/debts", params.DebtsHandler.MountRoutes)
	r.Route("/reports", params.ReportsHandler.MountRoutes)
	r.Route("/company", params.CompanyHandler.MountRoutes)
	r.Route("/rates", params.RatesHandler.MountRoutes)
	if params.InvoiceHandler != nil {
		r.Route("/invoices", params.InvoiceHandler.MountRoutes)
	}
	r.Route("/jobs", params.JobHandler.MountRoutes)
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		// Static files are served without session/CSRF requirements.
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
