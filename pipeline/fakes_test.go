package pipeline

import (
	"context"

	"github.com/velmie/graphsync/graph"
	"github.com/velmie/graphsync/snapshot"
)

type fakeLoader struct {
	audit      map[string]snapshot.AuditEntry
	lineage    map[string][]snapshot.LineageRun
	quality    map[string]snapshot.QualityScore
	vendor     map[string]snapshot.VendorMapping
	err        error
	lastLookup string
}

func (f *fakeLoader) AuditEntry(_ context.Context, id string) (snapshot.AuditEntry, bool, error) {
	f.lastLookup = id
	entry, ok := f.audit[id]

	return entry, ok, f.err
}

func (f *fakeLoader) LineageRuns(_ context.Context, entityID string) ([]snapshot.LineageRun, error) {
	f.lastLookup = entityID

	return f.lineage[entityID], f.err
}

func (f *fakeLoader) QualityScore(_ context.Context, entityID string) (snapshot.QualityScore, bool, error) {
	f.lastLookup = entityID
	score, ok := f.quality[entityID]

	return score, ok, f.err
}

func (f *fakeLoader) VendorMapping(_ context.Context, id string) (snapshot.VendorMapping, bool, error) {
	f.lastLookup = id
	mapping, ok := f.vendor[id]

	return mapping, ok, f.err
}

type recordingWriter struct {
	calls [][]graph.Statement
	err   error
}

func (w *recordingWriter) Write(_ context.Context, statements ...graph.Statement) error {
	w.calls = append(w.calls, statements)

	return w.err
}

type captureLogger struct {
	errors []string
}

func (l *captureLogger) Debug(string, ...any) {}
func (l *captureLogger) Info(string, ...any)  {}
func (l *captureLogger) Warn(string, ...any)  {}
func (l *captureLogger) Error(msg string, _ ...any) {
	l.errors = append(l.errors, msg)
}
