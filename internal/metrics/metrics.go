// Package metrics exposes Prometheus collectors for the broker service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchTotal               *prometheus.CounterVec
	fetchBytesTotal          *prometheus.CounterVec
	httpRequestsTotal        *prometheus.CounterVec
	httpRequestDuration      *prometheus.HistogramVec
	updateCycleDuration      prometheus.Histogram
	itemsInsertedTotal       prometheus.Counter
	updateCyclesActive       prometheus.Gauge
	fetchRateLimitDelaySecs  *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors. Safe to call more
// than once.
func Init() {
	once.Do(func() {
		fetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "broker_fetch_total",
				Help: "Total number of archive directory/file fetches, labeled by collector and status.",
			},
			[]string{"collector", "status"},
		)

		fetchBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "broker_fetch_bytes_total",
				Help: "Total bytes fetched, labeled by collector.",
			},
			[]string{"collector"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "broker_http_requests_total",
				Help: "Total API HTTP requests, labeled by method and status code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "broker_http_request_duration_seconds",
				Help:    "Histogram of API HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		updateCycleDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "broker_update_cycle_duration_seconds",
				Help:    "Histogram of full update-cycle durations.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
			},
		)

		itemsInsertedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "broker_items_inserted_total",
				Help: "Total number of BrokerItems newly inserted across all update cycles.",
			},
		)

		updateCyclesActive = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "broker_update_cycles_active",
				Help: "Number of update cycles currently running (0 or 1).",
			},
		)

		fetchRateLimitDelaySecs = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "broker_fetch_rate_limit_delay_seconds",
				Help:    "Histogram of per-host rate limit wait durations before a fetch.",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"host"},
		)
	})
}

// SanitizeHost extracts a lowercase hostname from rawURL, or "unknown" if
// it cannot be parsed.
func SanitizeHost(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch increments the fetch counters for one collector.
func ObserveFetch(collector, status string, bytesFetched int) {
	Init()
	fetchTotal.WithLabelValues(collector, status).Inc()
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(collector).Add(float64(bytesFetched))
	}
}

// ObserveHTTPRequest increments the API HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveUpdateCycle records one completed update cycle's duration and
// inserted-row count.
func ObserveUpdateCycle(duration time.Duration, inserted int) {
	Init()
	updateCycleDuration.Observe(duration.Seconds())
	if inserted > 0 {
		itemsInsertedTotal.Add(float64(inserted))
	}
}

// SetUpdateCycleActive reports whether an update cycle is currently running.
func SetUpdateCycleActive(active bool) {
	Init()
	if active {
		updateCyclesActive.Set(1)
		return
	}
	updateCyclesActive.Set(0)
}

// ObserveRateLimitDelay records the duration of a per-host rate limit wait.
func ObserveRateLimitDelay(host string, duration time.Duration) {
	Init()
	fetchRateLimitDelaySecs.WithLabelValues(host).Observe(duration.Seconds())
}
