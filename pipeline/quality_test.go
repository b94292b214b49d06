package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/velmie/graphsync"
	"github.com/velmie/graphsync/snapshot"
)

func qualityEvent(entityID string, op graphsync.Op) graphsync.Event {
	return graphsync.Event{
		AggregateType: graphsync.AggregateQuality,
		TableName:     "data_quality_scores",
		Op:            op,
		AggregateID:   entityID,
	}
}

func TestQualityUpdatesExistingEntity(t *testing.T) {
	loader := &fakeLoader{quality: map[string]snapshot.QualityScore{
		"p1": {EntityID: "p1", EntityType: "product", Issues: []string{"stale"}},
	}}
	writer := &recordingWriter{}

	out := NewQuality(loader, writer, nil).Handle(context.Background(), qualityEvent("p1", graphsync.OpUpdate))

	require.Equal(t, graphsync.OutcomeApplied, out.Kind)
	require.Len(t, writer.calls, 1)
	require.Contains(t, writer.calls[0][0].Cypher, "MATCH (e:Product {id: $entity_id})")
}

func TestQualityDeleteStillReappliesLatestRow(t *testing.T) {
	loader := &fakeLoader{quality: map[string]snapshot.QualityScore{
		"p1": {EntityID: "p1", EntityType: "product"},
	}}
	writer := &recordingWriter{}

	out := NewQuality(loader, writer, nil).Handle(context.Background(), qualityEvent("p1", graphsync.OpDelete))

	require.Equal(t, graphsync.OutcomeApplied, out.Kind)
	require.NotContains(t, writer.calls[0][0].Cypher, "REMOVE")
}

func TestQualitySkipsAndFailures(t *testing.T) {
	writer := &recordingWriter{}
	loader := &fakeLoader{quality: map[string]snapshot.QualityScore{
		"n1": {EntityID: "n1", EntityType: "nutrition_fact"},
	}}
	p := NewQuality(loader, writer, nil)

	require.Equal(t, graphsync.OutcomeSkippedNotFound, p.Handle(context.Background(), qualityEvent("x", graphsync.OpInsert)).Kind)
	require.Equal(t, graphsync.OutcomeSkippedUnsupported, p.Handle(context.Background(), qualityEvent("n1", graphsync.OpInsert)).Kind)
	require.Empty(t, writer.calls)

	boom := errors.New("neo4j down")
	loader.quality["p1"] = snapshot.QualityScore{EntityID: "p1", EntityType: "recipe"}
	out := NewQuality(loader, &recordingWriter{err: boom}, nil).Handle(context.Background(), qualityEvent("p1", graphsync.OpInsert))
	require.Equal(t, graphsync.OutcomeFailed, out.Kind)
	require.ErrorIs(t, out.Err, boom)
}
