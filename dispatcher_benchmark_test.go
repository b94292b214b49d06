package graphsync

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type nopMarker struct{}

func (nopMarker) MarkProcessed(context.Context, uuid.UUID) error { return nil }

func (nopMarker) MarkFailed(context.Context, uuid.UUID, error) error { return nil }

func BenchmarkDispatcherDispatchBatch(b *testing.B) {
	events := testEvents(100)
	dispatcher := NewDispatcher(nopMarker{}, map[AggregateType]Pipeline{
		AggregateLineage: PipelineFunc(func(context.Context, Event) Outcome { return Applied() }),
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := dispatcher.DispatchBatch(context.Background(), events); err != nil {
			b.Fatalf("dispatch batch: %v", err)
		}
	}
}
