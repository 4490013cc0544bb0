package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vbndigital/culturapi/internal/api/router"
	"github.com/vbndigital/culturapi/internal/attribution"
	appconfig "github.com/vbndigital/culturapi/internal/config"
	"github.com/vbndigital/culturapi/internal/http/handlers"
	httpmiddleware "github.com/vbndigital/culturapi/internal/http/middleware"
	"github.com/vbndigital/culturapi/internal/leads"
	"github.com/vbndigital/culturapi/internal/notify"
	"github.com/vbndigital/culturapi/internal/observability/metrics"
	"github.com/vbndigital/culturapi/pkg/logging"
)

func main() {
	// Load .env in local development; no-op when the file is absent.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting culturapi server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	leadMetrics := metrics.NewLeadMetrics(registry)

	// Lead storage: Postgres when DATABASE_URL is set, in-memory otherwise.
	var (
		leadsRepo leads.Repository
		adminDB   *sql.DB
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		leadsRepo = leads.NewPostgresRepository(pool)

		adminDB, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open admin database handle", "error", err)
			os.Exit(1)
		}
		defer func() { _ = adminDB.Close() }()
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory lead storage")
		leadsRepo = leads.NewInMemoryRepository()
	}

	// Session attribution store
	attribStore := attribution.NewMemoryStore(cfg.SessionTTL)

	// Webhook notification relay
	relay := notify.NewWebhookRelay(cfg.LeadWebhookURL, cfg.WebhookTimeout)
	if !relay.Enabled() {
		logger.Warn("lead webhook disabled, stored leads will not be forwarded")
	}
	notifier := notify.NewService(relay, leadMetrics, logger, cfg.WebhookTimeout)

	// Submission pipeline and handlers
	leadsService := leads.NewService(leadsRepo, attribStore, notifier, leadMetrics, logger, cfg.EmailConsentPolicy, cfg.WhatsAppNumber, cfg.StoreTimeout)
	leadsHandler := leads.NewHandler(leadsService, logger)

	var adminHandler *handlers.AdminLeadsHandler
	if adminDB != nil {
		adminHandler = handlers.NewAdminLeadsHandler(adminDB, logger)
	}
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set, admin endpoints disabled")
	}

	var limiter *httpmiddleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		LeadsHandler:       leadsHandler,
		AdminLeadsHandler:  adminHandler,
		AttributionStore:   attribStore,
		SessionCookieName:  cfg.SessionCookieName,
		SessionTTL:         cfg.SessionTTL,
		SecureCookies:      cfg.Env == "production",
		AdminJWTSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
