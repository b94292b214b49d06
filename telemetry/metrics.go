// Package telemetry provides the worker's Prometheus metrics, OpenTelemetry tracer setup, structured logger and
// the health/metrics HTTP surface.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/velmie/graphsync"
)

// Metrics records relay and dispatcher activity in Prometheus.
type Metrics struct {
	batchDuration prometheus.Histogram
	batchSize     prometheus.Histogram
	outcomes      *prometheus.CounterVec
	unrouted      *prometheus.CounterVec
	pending       prometheus.Gauge
}

var _ graphsync.Metrics = (*Metrics)(nil)

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer, pipelineName string) *Metrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"pipeline": pipelineName}

	return &Metrics{
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "graphsync_batch_duration_seconds",
			Help:        "Time spent dispatching one fetched batch.",
			ConstLabels: labels,
			Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "graphsync_batch_size",
			Help:        "Number of outbox events fetched per non-empty batch.",
			ConstLabels: labels,
			Buckets:     []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "graphsync_events_total",
			Help:        "Outbox events handled, labelled by aggregate type and pipeline outcome.",
			ConstLabels: labels,
		}, []string{"aggregate_type", "outcome"}),
		unrouted: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "graphsync_unrouted_events_total",
			Help:        "Outbox events left pending because no pipeline handles their aggregate type.",
			ConstLabels: labels,
		}, []string{"aggregate_type"}),
		pending: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "graphsync_pending_events",
			Help:        "Outbox events eligible for fetch, sampled while the relay is idle.",
			ConstLabels: labels,
		}),
	}
}

func (m *Metrics) ObserveBatchDuration(d time.Duration) {
	m.batchDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveBatchSize(size int) {
	m.batchSize.Observe(float64(size))
}

func (m *Metrics) AddOutcome(aggregate graphsync.AggregateType, kind graphsync.OutcomeKind) {
	m.outcomes.WithLabelValues(string(aggregate), kind.String()).Inc()
}

func (m *Metrics) AddUnrouted(aggregate graphsync.AggregateType) {
	m.unrouted.WithLabelValues(string(aggregate)).Inc()
}

func (m *Metrics) SetPending(count int) {
	m.pending.Set(float64(count))
}
