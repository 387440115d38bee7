// Package api provides the HTTP surface of the homelab dashboard.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/homelabdash/homelabdash/internal/api/handler"
	"github.com/homelabdash/homelabdash/internal/api/middleware"
	"github.com/homelabdash/homelabdash/internal/api/response"
	"github.com/homelabdash/homelabdash/internal/source/resilience"
	"github.com/homelabdash/homelabdash/internal/web"
)

// DefaultServiceName names the server in traces.
const DefaultServiceName = "homelab-dashboard"

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// State reports the load state on every request.
	State handler.StateFunc

	// ConfigDir holds services.json, served under /config/.
	ConfigDir string

	// Registry and Checks feed /v1/ops/status. Both are optional.
	Registry *resilience.Registry
	Checks   []handler.Check

	RequireTLS bool

	// RateLimit applies to /v1/services. Zero means StandardRateLimit.
	RateLimit middleware.RateLimitConfig
}

// NewRouter creates a new chi router with all routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	rateLimit := cfg.RateLimit
	if rateLimit.RequestLimit == 0 {
		rateLimit = middleware.StandardRateLimit
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(response.MethodNotAllowed)

	dashboardHandler := handler.NewDashboardHandler(cfg.State)
	servicesHandler := handler.NewServicesHandler(cfg.State)
	resourceHandler := handler.NewResourceHandler(cfg.ConfigDir, cfg.Logger)
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		State:     cfg.State,
		Registry:  cfg.Registry,
		Checks:    cfg.Checks,
	})

	// HTML dashboard
	r.With(middleware.NoStore).Get("/", dashboardHandler.Index)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))

	// Resource file read by the fetched source
	r.With(middleware.NoStore).Get("/config/services.json", resourceHandler.ServicesDocument)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.NoStore)

		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.With(middleware.RateLimitByIP(rateLimit)).Get("/services", servicesHandler.ListServices)
	})

	return r
}
