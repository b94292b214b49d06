package graph

import (
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var (
	// ErrURIRequired is returned when no bolt/neo4j URI is configured.
	ErrURIRequired = errors.New("graph: uri is required")
	// ErrNoStatements is returned by Write when called without statements.
	ErrNoStatements = errors.New("graph: no statements")
)

// TransientError marks a graph failure caused by connectivity or a retryable server state.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "graph: transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient reports true; graphsync.ClassifyError keys on it.
func (e *TransientError) Transient() bool {
	return true
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	if neo4j.IsConnectivityError(err) || neo4j.IsRetryable(err) || neo4j.IsTransactionExecutionLimit(err) {
		return &TransientError{Err: err}
	}

	return err
}
