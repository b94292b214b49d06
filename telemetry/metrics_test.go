package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/velmie/graphsync"
)

func TestMetricsRecordOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "utility-lineage")

	m.AddOutcome(graphsync.AggregateAudit, graphsync.OutcomeApplied)
	m.AddOutcome(graphsync.AggregateAudit, graphsync.OutcomeApplied)
	m.AddOutcome(graphsync.AggregateLineage, graphsync.OutcomeFailed)
	m.AddUnrouted(graphsync.AggregateType("mystery"))
	m.SetPending(42)
	m.ObserveBatchSize(3)
	m.ObserveBatchDuration(150 * time.Millisecond)

	require.InDelta(t, 2, testutil.ToFloat64(m.outcomes.WithLabelValues("audit_event", "applied")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.outcomes.WithLabelValues("lineage_entity", "failed")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.unrouted.WithLabelValues("mystery")), 0)
	require.InDelta(t, 42, testutil.ToFloat64(m.pending), 0)

	count, err := testutil.GatherAndCount(reg, "graphsync_batch_size", "graphsync_batch_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestNewMetricsRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg, "a")

	require.Panics(t, func() { NewMetrics(reg, "a") })
}
