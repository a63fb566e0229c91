package obs

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_http_in_flight_requests",
		Help: "In-flight dashboard HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "Total number of dashboard HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "Dashboard HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// BackendCalls counts authenticated gateway calls by outcome
	// (ok, api_error, network_error, session_expired).
	BackendCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_backend_calls_total",
			Help: "Authenticated backend calls by outcome.",
		},
		[]string{"outcome"},
	)

	// TokenRefreshes counts refresh-endpoint exchanges by outcome (success, failure, skipped).
	TokenRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_token_refreshes_total",
			Help: "Access token refresh attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// ForcedLogouts counts logouts caused by an unrecoverable session (reason: expiry_check, unauthorized).
	ForcedLogouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_forced_logouts_total",
			Help: "Logouts forced by token expiry or rejected refresh.",
		},
		[]string{"reason"},
	)
)

var initOnce sync.Once

// Init registers the metrics with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration,
			BackendCalls, TokenRefreshes, ForcedLogouts,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records request count, latency and in-flight gauge per canonical path.
func Instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		defer httpInFlight.Dec()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next(sw, r)

		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	}
}

// CanonicalPath collapses proxied API paths so label cardinality stays bounded.
func CanonicalPath(path string) string {
	if path == "" {
		return "/"
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	switch {
	case strings.HasPrefix(path, "/api/"):
		return "/api/*"
	case strings.HasPrefix(path, "/reports/download/"):
		return "/reports/download/:type"
	}
	return path
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
