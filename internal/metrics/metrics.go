// Package metrics exposes Prometheus collectors for the catalog parse
// service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	parseRequestsTotal           *prometheus.CounterVec
	upstreamFetchDurationSeconds *prometheus.HistogramVec
	cacheEventsTotal             *prometheus.CounterVec
	rateLimitRejectionsTotal     *prometheus.CounterVec
	productsExtractedTotal       *prometheus.CounterVec
	httpRequestsTotal            *prometheus.CounterVec
	httpRequestDurationSeconds   *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		parseRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_parse_requests_total",
				Help: "Total parse requests, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		upstreamFetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_upstream_fetch_duration_seconds",
				Help:    "Histogram of upstream fetch latencies, labeled by status code.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"status"},
		)

		cacheEventsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_cache_events_total",
				Help: "Response cache events, labeled by event (hit, miss, store).",
			},
			[]string{"event"},
		)

		rateLimitRejectionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_ratelimit_rejections_total",
				Help: "Requests rejected by the rate limiter, labeled by reason.",
			},
			[]string{"reason"},
		)

		productsExtractedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_products_extracted_total",
				Help: "Products extracted from upstream pages, labeled by strategy.",
			},
			[]string{"strategy"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler exposing the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveParseRequest increments the parse request counter for an outcome.
func ObserveParseRequest(outcome string) {
	if parseRequestsTotal == nil {
		return
	}
	parseRequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveUpstreamFetch records one upstream fetch. Status 0 means the
// request failed before a status was received.
func ObserveUpstreamFetch(status int, duration time.Duration) {
	if upstreamFetchDurationSeconds == nil {
		return
	}
	upstreamFetchDurationSeconds.WithLabelValues(strconv.Itoa(status)).Observe(duration.Seconds())
}

// ObserveCacheEvent counts a response cache hit, miss, or store.
func ObserveCacheEvent(event string) {
	if cacheEventsTotal == nil {
		return
	}
	cacheEventsTotal.WithLabelValues(event).Inc()
}

// ObserveRateLimitRejection counts a rejected request by reason.
func ObserveRateLimitRejection(reason string) {
	if rateLimitRejectionsTotal == nil {
		return
	}
	rateLimitRejectionsTotal.WithLabelValues(reason).Inc()
}

// ObserveProductsExtracted adds the record count yielded by a strategy.
func ObserveProductsExtracted(strategy string, count int) {
	if productsExtractedTotal == nil {
		return
	}
	productsExtractedTotal.WithLabelValues(strategy).Add(float64(count))
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
