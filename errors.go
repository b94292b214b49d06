package graphsync

import "errors"

var (
	// ErrInvalidBatchSize indicates that the requested batch size is not positive.
	ErrInvalidBatchSize = errors.New("graphsync: batch size must be positive")
	// ErrInvalidMaxAttempts indicates that the attempts ceiling is not positive.
	ErrInvalidMaxAttempts = errors.New("graphsync: max attempts must be positive")
	// ErrPipelineFailed is used when a pipeline reports failure without a cause.
	ErrPipelineFailed = errors.New("graphsync: pipeline failed")
	// ErrPipelinePanic wraps a recovered pipeline panic.
	ErrPipelinePanic = errors.New("graphsync: pipeline panic")
	// ErrMarkFailed indicates that the outbox state could not be updated after handling an event.
	ErrMarkFailed = errors.New("graphsync: outbox mark failed")
)
