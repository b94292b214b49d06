package graph

import (
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/require"

	"github.com/velmie/graphsync"
)

func TestClassifyTransientServerError(t *testing.T) {
	cause := &neo4j.Neo4jError{Code: "Neo.TransientError.Transaction.DeadlockDetected", Msg: "deadlock"}

	err := classify(cause)

	var transient *TransientError
	require.ErrorAs(t, err, &transient)
	require.ErrorIs(t, err, cause)
	require.Equal(t, graphsync.ErrorClassTransient, graphsync.ClassifyError(err))
}

func TestClassifyClientError(t *testing.T) {
	cause := &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "bad cypher"}

	err := classify(cause)

	var transient *TransientError
	require.False(t, errors.As(err, &transient))
	require.Equal(t, graphsync.ErrorClassApplication, graphsync.ClassifyError(err))
}

func TestClassifyNil(t *testing.T) {
	require.NoError(t, classify(nil))
}

func TestNewClientRequiresURI(t *testing.T) {
	_, err := NewClient("", "neo4j", "secret")
	require.ErrorIs(t, err, ErrURIRequired)
}
