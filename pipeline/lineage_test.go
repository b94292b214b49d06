package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/velmie/graphsync"
	"github.com/velmie/graphsync/snapshot"
)

func lineageEvent(entityID string) graphsync.Event {
	return graphsync.Event{
		AggregateType: graphsync.AggregateLineage,
		TableName:     "data_lineage",
		Op:            graphsync.OpInsert,
		AggregateID:   entityID,
	}
}

func TestLineageClearsAndRebuildsInOneWrite(t *testing.T) {
	loader := &fakeLoader{lineage: map[string][]snapshot.LineageRun{
		"e1": {
			{ID: "r2", EntityID: "e1", EntityType: "Product", SourceSystem: "erp"},
			{ID: "r1", EntityID: "e1", EntityType: "Product", SourceSystem: "erp"},
		},
	}}
	writer := &recordingWriter{}

	out := NewLineage(loader, writer, nil).Handle(context.Background(), lineageEvent("e1"))

	require.Equal(t, graphsync.OutcomeApplied, out.Kind)
	require.Equal(t, "e1", loader.lastLookup)
	require.Len(t, writer.calls, 1)
	require.Len(t, writer.calls[0], 2)
	require.Contains(t, writer.calls[0][0].Cypher, "DELETE old")
	require.Contains(t, writer.calls[0][1].Cypher, "UNWIND $rows AS row")
	require.Len(t, writer.calls[0][1].Params["rows"], 2)
}

func TestLineageSkips(t *testing.T) {
	writer := &recordingWriter{}
	loader := &fakeLoader{lineage: map[string][]snapshot.LineageRun{
		"v1": {{ID: "r1", EntityID: "v1", EntityType: "vendor", SourceSystem: "erp"}},
	}}
	p := NewLineage(loader, writer, nil)

	out := p.Handle(context.Background(), lineageEvent("missing"))
	require.Equal(t, graphsync.OutcomeSkippedNotFound, out.Kind)

	out = p.Handle(context.Background(), lineageEvent("v1"))
	require.Equal(t, graphsync.OutcomeSkippedUnsupported, out.Kind)
	require.Contains(t, out.Reason, "vendor")

	require.Empty(t, writer.calls)
}

func TestLineageLoadFailure(t *testing.T) {
	out := NewLineage(&fakeLoader{err: snapshot.ErrInvalid}, &recordingWriter{}, nil).
		Handle(context.Background(), lineageEvent("e1"))

	require.Equal(t, graphsync.OutcomeFailed, out.Kind)
	require.True(t, errors.Is(out.Err, snapshot.ErrInvalid))
}
