package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qrguard-lab/internal/domain/models"
	"qrguard-lab/pkg/logger"
)

// PrometheusMetrics collects HTTP and assessment metrics on its own registry
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Assessments
	assessmentsTotal *prometheus.CounterVec
	rulesTriggered   *prometheus.CounterVec
	assessmentScore  prometheus.Histogram

	// Scans
	scansTotal *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors under namespace
func NewPrometheusMetrics(namespace string, log *logger.Logger) *PrometheusMetrics {
	if namespace == "" {
		namespace = "qrguard"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	pm := &PrometheusMetrics{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latencies in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "path"},
		),

		assessmentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assessments_total",
				Help:      "Total number of URL assessments by verdict",
			},
			[]string{"verdict"}, // suspicious, safe
		),
		rulesTriggered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rules_triggered_total",
				Help:      "Total number of times each heuristic rule fired",
			},
			[]string{"rule"},
		),
		assessmentScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "assessment_score",
				Help:      "Distribution of logistic risk scores",
				Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
			},
		),

		scansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scans_total",
				Help:      "Total number of QR scans by content type",
			},
			[]string{"content_type"},
		),
	}

	log.WithComponent("metrics").Info().Str("namespace", namespace).Msg("prometheus metrics initialized")
	return pm
}

// HTTPMiddleware records request counts and latencies per route pattern
func (pm *PrometheusMetrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		pm.httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		pm.httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the exposition handler for this registry
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{})
}

// ObserveAssessment records a URL verdict
func (pm *PrometheusMetrics) ObserveAssessment(a models.Assessment) {
	verdict := "safe"
	if a.IsSuspicious {
		verdict = "suspicious"
	}
	pm.assessmentsTotal.WithLabelValues(verdict).Inc()
	pm.assessmentScore.Observe(a.Score)

	for _, rule := range a.TriggeredRules {
		pm.rulesTriggered.WithLabelValues(string(rule)).Inc()
	}
}

// RecordScan records a QR scan by content type
func (pm *PrometheusMetrics) RecordScan(contentType models.QRContentType) {
	pm.scansTotal.WithLabelValues(string(contentType)).Inc()
}
