package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/abasto/abasto/internal/app"
	"github.com/abasto/abasto/internal/auth"
	"github.com/abasto/abasto/internal/cart"
	"github.com/abasto/abasto/internal/catalog"
	"github.com/abasto/abasto/internal/company"
	"github.com/abasto/abasto/internal/customers"
	"github.com/abasto/abasto/internal/debts"
	"github.com/abasto/abasto/internal/observability"
	"github.com/abasto/abasto/internal/orders"
	"github.com/abasto/abasto/internal/platform/cache"
	"github.com/abasto/abasto/internal/platform/db"
	"github.com/abasto/abasto/internal/rates"
	"github.com/abasto/abasto/internal/reports"
	"github.com/abasto/abasto/internal/shared"
	"github.com/abasto/abasto/internal/view"
	"github.com/abasto/abasto/jobs"
	"github.com/abasto/abasto/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "abasto_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine(csrfManager)
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, logger)
	authHandler := auth.NewHandler(authService, sessionManager, templates, logger)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo, cfg.CustomCategory, logger)
	catalogHandler := catalog.NewHandler(catalogService, templates, logger)

	customersRepo := customers.NewRepository(dbpool)
	customersService := customers.NewService(customersRepo, logger)
	customersHandler := customers.NewHandler(customersService, logger)

	cartService := cart.NewService(catalogService, logger)
	cartHandler := cart.NewHandler(cartService, templates, logger)

	debtsRepo := debts.NewRepository(dbpool)
	debtsService := debts.NewService(debtsRepo, idempotencyStore, logger)
	debtsHandler := debts.NewHandler(debtsService, templates, logger)

	ordersRepo := orders.NewRepository(dbpool)
	ordersService := orders.NewService(ordersRepo, cartService, customersService, debtsService, idempotencyStore, logger)
	ordersHandler := orders.NewHandler(ordersService, cartService, templates, logger)

	ratesRepo := rates.NewRepository(dbpool)
	ratesService := rates.NewService(ratesRepo, logger)
	ratesHandler := rates.NewHandler(ratesService, logger)

	reportsRepo := reports.NewRepository(dbpool)
	reportsService := reports.NewService(reportsRepo, logger)
	reportsHandler := reports.NewHandler(reportsService, ratesService, templates, logger)

	companyRepo := company.NewRepository(dbpool)
	companyService := company.NewService(companyRepo, logger)
	companyHandler := company.NewHandler(companyService, templates, logger)

	var invoiceHandler *report.Handler
	if cfg.GotenbergURL != "" {
		reportClient := report.NewClient(cfg.GotenbergURL)
		invoiceHandler = report.NewHandler(reportClient, debtsService, customersService, companyService, logger)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		CatalogHandler:   catalogHandler,
		CustomersHandler: customersHandler,
		CartHandler:      cartHandler,
		OrdersHandler:    ordersHandler,
		DebtsHandler:     debtsHandler,
		ReportsHandler:   reportsHandler,
		CompanyHandler:   companyHandler,
		RatesHandler:     ratesHandler,
		InvoiceHandler:   invoiceHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
