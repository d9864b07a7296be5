// Package metrics exposes the candidate supply pipeline's observable state
// as Prometheus collectors: queue depth and throughput, worker circuit
// state, per-strategy failures, and suggestions request latency.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a dedicated registry and every collector the pipeline
// reports to.
type Metrics struct {
	registry *prometheus.Registry

	QueueSize         prometheus.Gauge
	QueueEnqueued     prometheus.Counter
	QueueDequeued     prometheus.Counter
	QueueDropped      prometheus.Counter
	KeywordBufferSize prometheus.Gauge

	StrategyFailures *prometheus.CounterVec
	CircuitOpen      prometheus.Gauge

	SuggestionsLatency *prometheus.HistogramVec
	RateLimitRejected  prometheus.Counter
}

// New constructs a Metrics instance registered against a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		QueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "otodoki", Subsystem: "queue", Name: "size",
			Help: "Current number of tracks held in the track queue.",
		}),
		QueueEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "otodoki", Subsystem: "queue", Name: "enqueued_total",
			Help: "Total tracks accepted by enqueue (before any eviction).",
		}),
		QueueDequeued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "otodoki", Subsystem: "queue", Name: "dequeued_total",
			Help: "Total tracks removed by dequeue.",
		}),
		QueueDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "otodoki", Subsystem: "queue", Name: "dropped_total",
			Help: "Total tracks evicted due to capacity overflow.",
		}),
		KeywordBufferSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "otodoki", Subsystem: "worker", Name: "keyword_buffer_size",
			Help: "Current number of buffered search terms.",
		}),
		StrategyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "otodoki", Subsystem: "strategies", Name: "failures_total",
			Help: "Total failures per search strategy, labeled by strategy name.",
		}, []string{"strategy"}),
		CircuitOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "otodoki", Subsystem: "worker", Name: "circuit_open",
			Help: "1 if the replenishment worker's circuit breaker is currently open, else 0.",
		}),
		SuggestionsLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "otodoki", Subsystem: "suggestions", Name: "request_duration_seconds",
			Help:    "Suggestions request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		RateLimitRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "otodoki", Subsystem: "suggestions", Name: "rate_limited_total",
			Help: "Total suggestions requests rejected by the rate limiter.",
		}),
	}

	reg.MustRegister(
		m.QueueSize, m.QueueEnqueued, m.QueueDequeued, m.QueueDropped,
		m.KeywordBufferSize, m.StrategyFailures, m.CircuitOpen,
		m.SuggestionsLatency, m.RateLimitRejected,
	)
	return m
}

// Handler returns the HTTP handler serving this registry's exposition
// format, suitable for mounting at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSuggestionsLatency records a completed suggestions request.
func (m *Metrics) ObserveSuggestionsLatency(outcome string, d time.Duration) {
	m.SuggestionsLatency.WithLabelValues(outcome).Observe(d.Seconds())
}
