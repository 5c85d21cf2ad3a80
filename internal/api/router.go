package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"qrguard-lab/internal/api/handlers"
	apimiddleware "qrguard-lab/internal/api/middleware"
	"qrguard-lab/internal/config"
	"qrguard-lab/internal/metrics"
	"qrguard-lab/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config      config.Config
	handlers    *handlers.Handlers
	rateLimiter apimiddleware.RateLimitChecker
	metrics     *metrics.PrometheusMetrics
	logger      *logger.Logger
}

// NewRouter creates a new Router instance. rateLimiter and m may be nil.
func NewRouter(cfg config.Config, h *handlers.Handlers, rateLimiter apimiddleware.RateLimitChecker, m *metrics.PrometheusMetrics, log *logger.Logger) *Router {
	return &Router{
		config:      cfg,
		handlers:    h,
		rateLimiter: rateLimiter,
		metrics:     m,
		logger:      log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))
	if r.metrics != nil {
		router.Use(r.metrics.HTTPMiddleware)
	}

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Public routes
	router.Group(func(pub chi.Router) {
		pub.Get("/health", r.handlers.Health.Check)
		pub.Get("/ready", r.handlers.Health.Ready)

		if r.metrics != nil {
			pub.Method(http.MethodGet, "/metrics", r.metrics.Handler())
		}
	})

	// API v1 routes
	router.Route("/api/v1", func(api chi.Router) {
		api.Use(apimiddleware.APIKeyAuth(r.config.Auth.APIKeys))

		if r.config.RateLimit.Enabled && r.rateLimiter != nil {
			api.Use(apimiddleware.RateLimiter(r.rateLimiter, r.config.RateLimit, r.logger))
		}

		// QR scanning
		api.Route("/qr", func(qr chi.Router) {
			qr.Post("/scan", r.handlers.QR.Scan)
			qr.Post("/scan/batch", r.handlers.QR.ScanBatch)
			qr.Get("/stats", r.handlers.QR.GetStats)
			qr.Get("/indicators", r.handlers.QR.GetIndicators)
			qr.Get("/content-types", r.handlers.QR.GetContentTypes)
		})

		// URL risk model
		api.Post("/url/assess", r.handlers.URL.Assess)
		api.Get("/model", r.handlers.URL.GetModel)

		// Payment deep links
		api.Post("/payment/parse", r.handlers.Payment.Parse)
	})

	return router
}
