//go:build integration

package testutil

import (
	"context"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Query runs a read query against the container and returns every record.
func (c Neo4jContainer) Query(t *testing.T, ctx context.Context, cypher string, params map[string]any) []*neo4j.Record {
	t.Helper()

	driver, err := neo4j.NewDriverWithContext(c.URI, neo4j.BasicAuth(c.User, c.Password, ""))
	if err != nil {
		t.Fatalf("neo4j driver: %v", err)
	}
	defer func() { _ = driver.Close(ctx) }()

	res, err := neo4j.ExecuteQuery(ctx, driver, cypher, params, neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		t.Fatalf("neo4j query: %v", err)
	}

	return res.Records
}

// Count runs a query returning a single integer column named n.
func (c Neo4jContainer) Count(t *testing.T, ctx context.Context, cypher string, params map[string]any) int64 {
	t.Helper()

	records := c.Query(t, ctx, cypher, params)
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	n, _, err := neo4j.GetRecordValue[int64](records[0], "n")
	if err != nil {
		t.Fatalf("read count: %v", err)
	}

	return n
}
