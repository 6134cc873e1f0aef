/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package docclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/crptkit/docsubmit/internal/libinfo"
)

// Submission results used as metric label values.
const (
	SubmissionResultSent               = "sent"
	SubmissionResultTransportError     = "transport_error"
	SubmissionResultSerializationError = "serialization_error"
	SubmissionResultWaitInterrupted    = "wait_interrupted"
)

// MetricsCollector is an interface for collecting document submission metrics.
type MetricsCollector interface {
	// ObserveSubmission counts the finished submission and observes its duration.
	ObserveSubmission(result string, startTime time.Time)
}

// PrometheusMetricsCollector is a Prometheus metrics collector for document submissions.
type PrometheusMetricsCollector struct {
	Submissions *prometheus.CounterVec
	Durations   *prometheus.HistogramVec
}

var _ MetricsCollector = (*PrometheusMetricsCollector)(nil)

// NewPrometheusMetricsCollector creates a new Prometheus metrics collector.
// Metrics have the constant "docsubmit_version" label.
func NewPrometheusMetricsCollector(namespace string) *PrometheusMetricsCollector {
	return &PrometheusMetricsCollector{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "docclient_submissions_total",
			Help:        "Number of finished document submissions.",
			ConstLabels: libinfo.PrometheusConstLabels(),
		}, []string{"result"}),
		Durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "docclient_submission_duration_seconds",
			Help:        "A histogram of the document submissions durations including waiting for the rate limit capacity.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 150, 300, 600},
			ConstLabels: libinfo.PrometheusConstLabels(),
		}, []string{"result"}),
	}
}

// MustRegister registers the Prometheus metrics.
func (p *PrometheusMetricsCollector) MustRegister() {
	prometheus.MustRegister(p.Submissions, p.Durations)
}

// Unregister the Prometheus metrics.
func (p *PrometheusMetricsCollector) Unregister() {
	prometheus.Unregister(p.Submissions)
	prometheus.Unregister(p.Durations)
}

// ObserveSubmission counts the finished submission and observes its duration.
func (p *PrometheusMetricsCollector) ObserveSubmission(result string, startTime time.Time) {
	p.Submissions.WithLabelValues(result).Inc()
	p.Durations.WithLabelValues(result).Observe(time.Since(startTime).Seconds())
}

type disabledMetrics struct{}

func (disabledMetrics) ObserveSubmission(string, time.Time) {}
