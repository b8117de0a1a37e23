package metrics

import (
	"context"
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// RequestMetricsCollector tracks mediator requests: episode runs, catalog and
// episode queries
type RequestMetricsCollector struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
	inFlight *prometheus.GaugeVec
}

// NewRequestMetricsCollector creates the mediator request collector
func NewRequestMetricsCollector() *RequestMetricsCollector {
	return &RequestMetricsCollector{
		// episode runs dominate the upper buckets
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "request_duration_seconds",
				Help:      "Mediator request duration by request, kind and outcome",
				Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1, 10, 60, 300},
			},
			[]string{"request", "kind", "outcome"},
		),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "requests_total",
				Help:      "Mediator requests handled by request, kind and outcome",
			},
			[]string{"request", "kind", "outcome"},
		),
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "requests_in_flight",
				Help:      "Mediator requests currently being handled",
			},
			[]string{"request"},
		),
	}
}

// Register registers the collector with the global registry; a nil registry means
// metrics are disabled
func (c *RequestMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}

	for _, metric := range []prometheus.Collector{c.duration, c.total, c.inFlight} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// Begin marks a request as in flight and returns the function that records its end
func (c *RequestMetricsCollector) Begin(request string) func(seconds float64, err error) {
	c.inFlight.WithLabelValues(request).Inc()
	return func(seconds float64, err error) {
		c.inFlight.WithLabelValues(request).Dec()
		c.Observe(request, seconds, err)
	}
}

// Observe records one finished request
func (c *RequestMetricsCollector) Observe(request string, seconds float64, err error) {
	kind := RequestKind(request)
	outcome := Outcome(err)
	c.duration.WithLabelValues(request, kind, outcome).Observe(seconds)
	c.total.WithLabelValues(request, kind, outcome).Inc()
}

// RequestKind classifies a request name by its suffix
func RequestKind(request string) string {
	switch {
	case strings.HasSuffix(request, "Command"):
		return "command"
	case strings.HasSuffix(request, "Query"):
		return "query"
	default:
		return "request"
	}
}

// Outcome maps a handler error to its outcome label. A stopped episode run returns
// context cancellation, which is not a failure.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeError
	}
}
