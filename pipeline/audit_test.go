package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/velmie/graphsync"
	"github.com/velmie/graphsync/snapshot"
)

func auditEvent(id string, op graphsync.Op) graphsync.Event {
	return graphsync.Event{
		ID:            uuid.New(),
		AggregateType: graphsync.AggregateAudit,
		TableName:     "audit_log",
		Op:            op,
		AggregateID:   id,
	}
}

func TestAuditUpsertLinksKnownTable(t *testing.T) {
	loader := &fakeLoader{audit: map[string]snapshot.AuditEntry{
		"a1": {ID: "a1", TableName: "products", RecordID: "p1", Action: "UPDATE", ChangedBy: "u1"},
	}}
	writer := &recordingWriter{}

	out := NewAudit(loader, writer, nil).Handle(context.Background(), auditEvent("a1", graphsync.OpUpdate))

	require.Equal(t, graphsync.OutcomeApplied, out.Kind)
	require.Len(t, writer.calls, 1)
	require.Len(t, writer.calls[0], 2)
	require.Contains(t, writer.calls[0][1].Cypher, "MATCH (e:Product {id: $record_id})")
}

func TestAuditUpsertUnknownTableHasNoAffectedEdge(t *testing.T) {
	loader := &fakeLoader{audit: map[string]snapshot.AuditEntry{
		"a1": {ID: "a1", TableName: "orders", RecordID: "o1", Action: "INSERT"},
	}}
	writer := &recordingWriter{}

	out := NewAudit(loader, writer, nil).Handle(context.Background(), auditEvent("a1", graphsync.OpInsert))

	require.Equal(t, graphsync.OutcomeApplied, out.Kind)
	require.Len(t, writer.calls[0], 1)
}

func TestAuditMissingRow(t *testing.T) {
	writer := &recordingWriter{}
	p := NewAudit(&fakeLoader{}, writer, nil)

	out := p.Handle(context.Background(), auditEvent("gone", graphsync.OpUpdate))
	require.Equal(t, graphsync.OutcomeSkippedNotFound, out.Kind)
	require.Empty(t, writer.calls)

	out = p.Handle(context.Background(), auditEvent("gone", graphsync.Op("delete")))
	require.Equal(t, graphsync.OutcomeApplied, out.Kind)
	require.Len(t, writer.calls, 1)
	require.Contains(t, writer.calls[0][0].Cypher, "DETACH DELETE ce")
	require.Equal(t, "gone", writer.calls[0][0].Params["id"])
}

func TestAuditFailures(t *testing.T) {
	boom := errors.New("boom")

	out := NewAudit(&fakeLoader{err: boom}, &recordingWriter{}, nil).
		Handle(context.Background(), auditEvent("a1", graphsync.OpInsert))
	require.Equal(t, graphsync.OutcomeFailed, out.Kind)
	require.ErrorIs(t, out.Err, boom)

	loader := &fakeLoader{audit: map[string]snapshot.AuditEntry{"a1": {ID: "a1"}}}
	out = NewAudit(loader, &recordingWriter{err: boom}, nil).
		Handle(context.Background(), auditEvent("a1", graphsync.OpInsert))
	require.Equal(t, graphsync.OutcomeFailed, out.Kind)
	require.ErrorIs(t, out.Err, boom)
}
