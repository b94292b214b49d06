package graphsync

import "context"

// Pipeline turns one outbox event into idempotent graph mutations.
//
// Implementations must not touch the outbox; the Dispatcher owns processed/failed transitions.
type Pipeline interface {
	// Handle reloads relational state for the event and applies it to the graph.
	Handle(ctx context.Context, event Event) Outcome
}

// PipelineFunc adapts a function to Pipeline.
type PipelineFunc func(ctx context.Context, event Event) Outcome

// Handle implements Pipeline.
func (fn PipelineFunc) Handle(ctx context.Context, event Event) Outcome {
	return fn(ctx, event)
}
