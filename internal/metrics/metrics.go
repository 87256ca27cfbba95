// Package metrics exposes Prometheus instrumentation for HTTP traffic and for
// the analytical computations behind it.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockintel_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockintel_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route", "method"},
	)

	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stockintel_http_in_flight_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	computationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockintel_computation_duration_seconds",
			Help:    "Duration of frontier and regime computations",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"computation", "outcome"},
	)

	syncedSymbols = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockintel_price_sync_symbols_total",
			Help: "Symbols processed by the price sync, by outcome",
		},
		[]string{"outcome"},
	)

	jobRuns = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockintel_scheduled_job_duration_seconds",
			Help:    "Duration of scheduled background jobs",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
		[]string{"job", "outcome"},
	)
)

// ObserveComputation records how long a named computation took since start.
func ObserveComputation(name string, start time.Time, err error) {
	computationDuration.WithLabelValues(name, outcome(err)).Observe(time.Since(start).Seconds())
}

// ObserveSync counts one symbol processed by the price sync.
func ObserveSync(err error) {
	syncedSymbols.WithLabelValues(outcome(err)).Inc()
}

// ObserveJob records one run of a scheduled job.
func ObserveJob(name string, start time.Time, err error) {
	jobRuns.WithLabelValues(name, outcome(err)).Observe(time.Since(start).Seconds())
}

// Middleware records request counts and latency using the chi route pattern
// as the label, which keeps cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := routeLabel(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
