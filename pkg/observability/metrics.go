package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the spotlight service.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Search metrics
	SearchRequestsTotal *prometheus.CounterVec
	SearchDuration      *prometheus.HistogramVec
	SearchResultCount   *prometheus.HistogramVec
	SearchTiersQueried  *prometheus.HistogramVec

	// Rate limiting
	RateLimitRejectedTotal *prometheus.CounterVec

	// Permission cache
	PermissionCacheHitsTotal   prometheus.Counter
	PermissionCacheMissesTotal prometheus.Counter

	// Database connection pool
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics. A nil registry
// creates a private one, which keeps tests isolated.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotlight_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spotlight_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		SearchRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotlight_search_requests_total",
				Help: "Total number of spotlight searches by entity class and outcome",
			},
			[]string{"entity", "outcome"},
		),
		SearchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spotlight_search_duration_seconds",
				Help:    "Spotlight search duration in seconds by entity class",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"entity"},
		),
		SearchResultCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spotlight_search_result_count",
				Help:    "Number of results returned per search by entity class",
				Buckets: []float64{0, 1, 2, 5, 10, 15, 25},
			},
			[]string{"entity"},
		),
		SearchTiersQueried: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spotlight_search_tiers_queried",
				Help:    "Number of cascade tiers queried before the quota was filled",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 6},
			},
			[]string{"entity"},
		),

		RateLimitRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotlight_ratelimit_rejected_total",
				Help: "Total number of spotlight invocations rejected by the rate limiter",
			},
			[]string{"identity_class"},
		),

		PermissionCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spotlight_permission_cache_hits_total",
				Help: "Total number of permission cache hits",
			},
		),
		PermissionCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spotlight_permission_cache_misses_total",
				Help: "Total number of permission cache misses",
			},
		),

		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "spotlight_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "spotlight_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SearchRequestsTotal,
		m.SearchDuration,
		m.SearchResultCount,
		m.SearchTiersQueried,
		m.RateLimitRejectedTotal,
		m.PermissionCacheHitsTotal,
		m.PermissionCacheMissesTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
	)

	return m
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSearch records a completed search pass for one entity class.
func (m *Metrics) ObserveSearch(entity string, resultCount int, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.SearchRequestsTotal.WithLabelValues(entity, outcome).Inc()
	m.SearchDuration.WithLabelValues(entity).Observe(duration.Seconds())
	if err == nil {
		m.SearchResultCount.WithLabelValues(entity).Observe(float64(resultCount))
	}
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// HTTPMiddleware instruments an HTTP handler with request count and
// duration metrics. The route template should be passed as path to keep
// label cardinality bounded.
func (m *Metrics) HTTPMiddleware(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
