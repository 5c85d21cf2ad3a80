package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"qrguard-lab/internal/infrastructure/cache"
	"qrguard-lab/pkg/logger"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	cache        *cache.RedisCache
	version      string
	modelVersion string
	logger       *logger.Logger
	startTime    time.Time
}

// NewHealthHandler creates a new HealthHandler. c may be nil when Redis is disabled.
func NewHealthHandler(c *cache.RedisCache, version, modelVersion string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		cache:        c,
		version:      version,
		modelVersion: modelVersion,
		logger:       log.WithComponent("health"),
		startTime:    time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Model     string            `json:"model,omitempty"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Model:     h.modelVersion,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// Ready handles GET /ready - checks all dependencies
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := http.StatusOK
	overallStatus := "ready"

	// Check Redis
	if h.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("redis readiness check failed")
			checks["redis"] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			overallStatus = "not ready"
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	checks["model"] = "loaded"

	response := HealthResponse{
		Status:    overallStatus,
		Version:   h.version,
		Model:     h.modelVersion,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
