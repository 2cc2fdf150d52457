package handler

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus metrics for the issuance pipeline.
type Metrics struct {
	issuanceTotal    *prometheus.CounterVec
	issuanceDuration *prometheus.HistogramVec
	providerErrors   *prometheus.CounterVec
}

// NewMetrics creates and registers the pipeline metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		issuanceTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "giftcard_issuance_requests_total",
				Help: "Total number of issuance requests by outcome",
			},
			[]string{"outcome"},
		),
		issuanceDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "giftcard_issuance_duration_seconds",
				Help:    "End-to-end issuance request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		providerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "giftcard_provider_errors_total",
				Help: "Total number of recognized provider error codes",
			},
			[]string{"code"},
		),
	}
}

// RecordIssuance records one completed issuance attempt.
func (m *Metrics) RecordIssuance(outcome string, duration time.Duration) {
	m.issuanceTotal.WithLabelValues(outcome).Inc()
	m.issuanceDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordProviderError records a provider rejection by error code.
func (m *Metrics) RecordProviderError(code string) {
	m.providerErrors.WithLabelValues(code).Inc()
}

// Handler returns the Prometheus exposition handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
