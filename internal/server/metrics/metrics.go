// Package metrics exposes Prometheus counters for the identity endpoints.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskerid/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK                   = "ok"
	OutcomeDuplicateUser        = "duplicate_user"
	OutcomeRegistrationFailed   = "registration_failed"
	OutcomeAuthenticationFailed = "authentication_failed"
	OutcomeInvalidToken         = "invalid_token"
	OutcomeThrottled            = "throttled"
	OutcomeError                = "error"
)

type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ThrottledTotal  *prometheus.CounterVec
}

// New creates the metrics and registers them on registry.
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskerid_requests_total",
				Help: "Identity operations by transport, operation and outcome",
			},
			[]string{"transport", "operation", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskerid_request_duration_seconds",
				Help:    "Identity operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"transport", "operation"},
		),
		ThrottledTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskerid_throttled_total",
				Help: "Attempts refused by the login throttle",
			},
			[]string{"transport", "operation"},
		),
	}

	registry.MustRegister(m.RequestsTotal, m.RequestDuration, m.ThrottledTotal)

	return m
}

// Observe records one finished operation. A nil *Metrics is a no-op.
func (m *Metrics) Observe(transport, operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(transport, operation, Outcome(err)).Inc()
	m.RequestDuration.WithLabelValues(transport, operation).Observe(elapsed.Seconds())
}

func (m *Metrics) Throttled(transport, operation string) {
	if m == nil {
		return
	}
	m.ThrottledTotal.WithLabelValues(transport, operation).Inc()
	m.RequestsTotal.WithLabelValues(transport, operation, OutcomeThrottled).Inc()
}

// Outcome classifies err into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, common.ErrDuplicateUser):
		return OutcomeDuplicateUser
	case errors.Is(err, common.ErrRegistrationFailed):
		return OutcomeRegistrationFailed
	case errors.Is(err, common.ErrAuthenticationFailed):
		return OutcomeAuthenticationFailed
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return OutcomeInvalidToken
	case errors.Is(err, common.ErrTooManyAttempts):
		return OutcomeThrottled
	}
	return OutcomeError
}

// Handler serves the registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
