package graphsync

import "time"

// Metrics captures relay and dispatcher telemetry.
type Metrics interface {
	// ObserveBatchDuration records the time to dispatch a batch.
	ObserveBatchDuration(duration time.Duration)
	// ObserveBatchSize records the number of events fetched in a batch.
	ObserveBatchSize(size int)
	// AddOutcome counts one pipeline outcome.
	AddOutcome(aggregate AggregateType, kind OutcomeKind)
	// AddUnrouted counts an event whose aggregate type has no pipeline.
	AddUnrouted(aggregate AggregateType)
	// SetPending updates the current eligible event count.
	SetPending(count int)
}

// NopMetrics is a no-op metrics recorder.
type NopMetrics struct{}

// ObserveBatchDuration implements Metrics.
func (NopMetrics) ObserveBatchDuration(time.Duration) {}

// ObserveBatchSize implements Metrics.
func (NopMetrics) ObserveBatchSize(int) {}

// AddOutcome implements Metrics.
func (NopMetrics) AddOutcome(AggregateType, OutcomeKind) {}

// AddUnrouted implements Metrics.
func (NopMetrics) AddUnrouted(AggregateType) {}

// SetPending implements Metrics.
func (NopMetrics) SetPending(int) {}
