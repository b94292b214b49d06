package graphsync

import (
	"context"

	"github.com/google/uuid"
)

// FetchOptions controls which outbox rows are eligible for a batch.
type FetchOptions struct {
	BatchSize int
	// MaxAttempts excludes rows whose attempt counter reached the ceiling.
	MaxAttempts int
	// Tables restricts rows by source table name. Empty means no restriction.
	Tables []string
	// AggregateTypes restricts rows by aggregate type. Empty means no restriction.
	AggregateTypes []AggregateType
}

// Consumer provides batches of eligible outbox events.
type Consumer interface {
	// Fetch locks, reads and releases a batch of events ordered by creation time.
	// Locks are held only for the duration of the fetch transaction.
	Fetch(ctx context.Context, opts FetchOptions) ([]Event, error)
}

// Marker records terminal success or a retryable failure for an event.
type Marker interface {
	// MarkProcessed sets processed_at and clears any stored error.
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	// MarkFailed increments attempts, stores the truncated error and keeps the event pending.
	MarkFailed(ctx context.Context, id uuid.UUID, cause error) error
}

// Store is the full outbox adapter used by the Relay.
type Store interface {
	Consumer
	Marker
}

// PendingCounter provides the number of events currently eligible for processing.
type PendingCounter interface {
	// PendingCount returns the number of eligible events for opts.
	PendingCount(ctx context.Context, opts FetchOptions) (int, error)
}
