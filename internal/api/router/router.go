package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vbndigital/culturapi/internal/attribution"
	"github.com/vbndigital/culturapi/internal/http/handlers"
	httpmiddleware "github.com/vbndigital/culturapi/internal/http/middleware"
	"github.com/vbndigital/culturapi/internal/leads"
	"github.com/vbndigital/culturapi/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	AdminLeadsHandler  *handlers.AdminLeadsHandler
	AttributionStore   attribution.Store
	SessionCookieName  string
	SessionTTL         time.Duration
	SecureCookies      bool
	AdminJWTSecret     string
	CORSAllowedOrigins []string
	RateLimiter        *httpmiddleware.RateLimiter
	MetricsHandler     http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(httpmiddleware.SessionAttribution(cfg.AttributionStore, cfg.SessionCookieName, cfg.SessionTTL, cfg.SecureCookies))

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Route("/api/leads", func(api chi.Router) {
			api.Get("/", cfg.LeadsHandler.Ack)
			if cfg.RateLimiter != nil {
				api.With(cfg.RateLimiter.Middleware).Post("/", cfg.LeadsHandler.Submit)
			} else {
				api.Post("/", cfg.LeadsHandler.Submit)
			}
		})
	})

	// Admin routes (protected by HMAC JWT)
	if cfg.AdminJWTSecret != "" && cfg.AdminLeadsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
			admin.Get("/leads", cfg.AdminLeadsHandler.ListLeads)
			admin.Get("/leads/export", cfg.AdminLeadsHandler.ExportCSV)
			admin.Get("/leads/stats", cfg.AdminLeadsHandler.Stats)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
