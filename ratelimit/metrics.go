/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Results of the scheduled refill.
const (
	RefillResultReset = "reset"
	RefillResultNoop  = "noop"
)

// MetricsCollector is an interface for collecting rate limiter metrics.
type MetricsCollector interface {
	// IncAcquired increments the number of admitted operations.
	IncAcquired()
	// IncRejected increments the number of interrupted waits and failed limit checks.
	IncRejected(reason string)
	// ObserveWaitDuration observes how long the caller waited for capacity (regardless of the result).
	ObserveWaitDuration(startTime time.Time)
	// IncRefills increments the number of the scheduled refills.
	IncRefills(result string)
}

// PrometheusMetricsCollector is a Prometheus metrics collector for rate limiters.
type PrometheusMetricsCollector struct {
	Acquired      prometheus.Counter
	Rejected      *prometheus.CounterVec
	WaitDurations prometheus.Histogram
	Refills       *prometheus.CounterVec
}

var _ MetricsCollector = (*PrometheusMetricsCollector)(nil)

// NewPrometheusMetricsCollector creates a new Prometheus metrics collector.
func NewPrometheusMetricsCollector(namespace string) *PrometheusMetricsCollector {
	return &PrometheusMetricsCollector{
		Acquired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_acquired_total",
			Help:      "Number of operations admitted by the rate limiter.",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_rejected_total",
			Help:      "Number of operations which waits for the rate limiter capacity were interrupted.",
		}, []string{"reason"}),
		WaitDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ratelimit_wait_duration_seconds",
			Help:      "A histogram of the durations of waiting for the rate limiter capacity.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 150, 300},
		}),
		Refills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_refills_total",
			Help:      "Number of the scheduled rate limiter refills.",
		}, []string{"result"}),
	}
}

// MustRegister registers the Prometheus metrics.
func (p *PrometheusMetricsCollector) MustRegister() {
	prometheus.MustRegister(p.Acquired, p.Rejected, p.WaitDurations, p.Refills)
}

// Unregister the Prometheus metrics.
func (p *PrometheusMetricsCollector) Unregister() {
	prometheus.Unregister(p.Acquired)
	prometheus.Unregister(p.Rejected)
	prometheus.Unregister(p.WaitDurations)
	prometheus.Unregister(p.Refills)
}

// IncAcquired increments the number of admitted operations.
func (p *PrometheusMetricsCollector) IncAcquired() {
	p.Acquired.Inc()
}

// IncRejected increments the number of interrupted waits and failed limit checks.
func (p *PrometheusMetricsCollector) IncRejected(reason string) {
	p.Rejected.WithLabelValues(reason).Inc()
}

// ObserveWaitDuration observes how long the caller waited for capacity.
func (p *PrometheusMetricsCollector) ObserveWaitDuration(startTime time.Time) {
	p.WaitDurations.Observe(time.Since(startTime).Seconds())
}

// IncRefills increments the number of the scheduled refills.
func (p *PrometheusMetricsCollector) IncRefills(result string) {
	p.Refills.WithLabelValues(result).Inc()
}

type disabledMetrics struct{}

func (disabledMetrics) IncAcquired() {}

func (disabledMetrics) IncRejected(string) {}

func (disabledMetrics) ObserveWaitDuration(time.Time) {}

func (disabledMetrics) IncRefills(string) {}

func metricsOrDisabled(mc MetricsCollector) MetricsCollector {
	if mc == nil {
		return disabledMetrics{}
	}
	return mc
}
