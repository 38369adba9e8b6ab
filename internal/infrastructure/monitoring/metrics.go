package monitoring

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
	"go.uber.org/zap"

	"github.com/recipebox/recipebox/internal/domain/ai"
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Pipeline metrics
	parseRequestsTotal   *prometheus.CounterVec
	modelAttemptsTotal   *prometheus.CounterVec
	modelAttemptDuration *prometheus.HistogramVec
	telemetryWriteErrors *prometheus.CounterVec

	// Business metrics
	recipesCreatedTotal prometheus.Counter
}

// NewMetricsCollector creates a collector backed by its own registry
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &MetricsCollector{
		logger:   logger.Named("metrics"),
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebox_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recipebox_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		parseRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebox_parse_requests_total",
				Help: "Parse requests by input kind and result code",
			},
			[]string{"input", "result"},
		),
		modelAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebox_model_attempts_total",
				Help: "Model candidate attempts by outcome",
			},
			[]string{"model", "outcome", "fallback"},
		),
		modelAttemptDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recipebox_model_attempt_duration_seconds",
				Help:    "Model candidate attempt latency in seconds",
				Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"model"},
		),
		telemetryWriteErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebox_telemetry_write_errors_total",
				Help: "Failed telemetry sink writes",
			},
			[]string{"sink"},
		),

		recipesCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "recipebox_recipes_created_total",
				Help: "Total number of recipes created",
			},
		),
	}
}

// HTTPMiddleware records request count and latency per route pattern
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ModelAttempt records one candidate attempt
func (m *MetricsCollector) ModelAttempt(attempt ai.ModelAttempt) {
	m.modelAttemptsTotal.WithLabelValues(attempt.Model, string(attempt.Outcome), strconv.FormatBool(attempt.Fallback)).Inc()
	m.modelAttemptDuration.WithLabelValues(attempt.Model).Observe(attempt.Latency.Seconds())
}

// ParseRequest records a finished parse request. result is "ok" or an error code.
func (m *MetricsCollector) ParseRequest(input, result string) {
	m.parseRequestsTotal.WithLabelValues(input, result).Inc()
}

// TelemetryWriteFailed records a failed sink write
func (m *MetricsCollector) TelemetryWriteFailed(sink string) {
	m.telemetryWriteErrors.WithLabelValues(sink).Inc()
}

// RecipeCreated increments the recipes created counter
func (m *MetricsCollector) RecipeCreated() {
	m.recipesCreatedTotal.Inc()
}

// Registry exposes the underlying registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
