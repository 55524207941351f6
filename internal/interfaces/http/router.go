package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/logging"
	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/prometheus"
	"github.com/scamshield/riskengine/internal/interfaces/http/handlers"
	"github.com/scamshield/riskengine/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	AssessHandler *handlers.AssessHandler
	HealthHandler *handlers.HealthHandler

	// Middleware
	Logging middleware.LoggingConfig

	// Infrastructure
	Logger  logging.Logger
	Metrics *prometheus.Metrics
}

// NewRouter wires global middleware, public probe endpoints, and the v1 API
// group into a single http.Handler suitable for use with http.Server.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	}

	// Public probe endpoints, no middleware beyond the globals.
	r.Group(func(pub chi.Router) {
		if cfg.HealthHandler != nil {
			pub.Get("/healthz", cfg.HealthHandler.Liveness)
			pub.Get("/readyz", cfg.HealthHandler.Readiness)
		}
	})

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.AssessHandler != nil {
			api.Post("/assess", cfg.AssessHandler.Assess)
		}
	})

	return r
}
