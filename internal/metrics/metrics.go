// Package metrics holds the Prometheus instrumentation for the activity service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Provider metrics (overpass, postgis, openweathermap, nominatim, google)
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Duration of outbound data provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	ProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_errors_total",
			Help: "Total number of failed data provider calls",
		},
		[]string{"provider", "operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "provider_circuit_breaker_state",
			Help: "Circuit breaker state per provider (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	// Search metrics
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searches_total",
			Help: "Total number of place searches by outcome",
		},
		[]string{"outcome"},
	)

	PlacesRanked = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_places_ranked",
			Help:    "Number of places ranked per search after filtering",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	FallbackWindows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "time_windows_fallback_total",
			Help: "Number of window computations that fell back to the heuristic windows",
		},
	)

	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

// ObserveProvider records the duration and outcome of a provider call.
func ObserveProvider(provider, operation string, start time.Time, err error) {
	ProviderRequestDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		ProviderErrors.WithLabelValues(provider, operation).Inc()
	}
}
