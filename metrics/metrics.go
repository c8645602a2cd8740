// Package metrics exposes Prometheus collectors for database statements
// and HTTP requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skryldev/jobly-api/db"
)

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIActiveRequests  prometheus.Gauge
	APIRateLimitHits   *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		DBQueryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobly_db_query_duration_seconds",
				Help:    "Duration of database statements in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"statement"},
		),
		DBQueryErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobly_db_query_errors_total",
				Help: "Total number of failed database statements",
			},
			[]string{"statement"},
		),

		APIRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobly_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "route", "status_code"},
		),
		APIRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobly_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		APIActiveRequests: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "jobly_api_active_requests",
				Help: "Current number of in-flight API requests",
			},
		),
		APIRateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobly_api_rate_limit_hits_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
	}
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordQuery implements db.MetricsCollector.
func (m *Metrics) RecordQuery(query string, d time.Duration, success bool) {
	kind := db.StatementKind(query)
	m.DBQueryDuration.WithLabelValues(kind).Observe(d.Seconds())
	if !success {
		m.DBQueryErrors.WithLabelValues(kind).Inc()
	}
}

// RecordRateLimitHit counts one limiter rejection on route.
func (m *Metrics) RecordRateLimitHit(route string) {
	m.APIRateLimitHits.WithLabelValues(route).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records count, latency and in-flight gauge per request. The
// route label is chi's matched pattern so path parameters do not explode
// cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.APIActiveRequests.Inc()
		defer m.APIActiveRequests.Dec()

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.APIRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.APIRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

var _ db.MetricsCollector = (*Metrics)(nil)
