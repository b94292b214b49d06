// Package graph writes pipeline mutations to Neo4j.
//
// Each Write call opens one session and runs every statement in a single managed write transaction, so a multi
// statement mutation (lineage clear then rebuild, vendor upsert then prune) commits or rolls back as a whole.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Client is a Neo4j writer safe for concurrent use.
type Client struct {
	driver neo4j.DriverWithContext
	cfg    Config
	tracer trace.Tracer
}

// NewClient creates a driver for uri with basic auth. It does not dial; call VerifyConnectivity.
func NewClient(uri, user, password string, opts ...Option) (*Client, error) {
	if uri == "" {
		return nil, ErrURIRequired
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""), func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = cfg.MaxPoolSize
		c.MaxTransactionRetryTime = cfg.MaxRetryTime
		c.ConnectionAcquisitionTimeout = cfg.AcquireTimeout
	})
	if err != nil {
		return nil, fmt.Errorf("graph: create driver: %w", err)
	}

	return &Client{
		driver: driver,
		cfg:    cfg,
		tracer: cfg.TracerProvider.Tracer(tracerName),
	}, nil
}

// Write runs statements in order inside one write transaction.
func (c *Client) Write(ctx context.Context, statements ...Statement) error {
	if len(statements) == 0 {
		return ErrNoStatements
	}

	ctx, span := c.tracer.Start(ctx, "graph.write",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "neo4j"),
			attribute.Int("graph.statements", len(statements)),
		),
	)
	defer span.End()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.cfg.Database,
	})
	defer func() {
		if err := session.Close(ctx); err != nil {
			c.cfg.Logger.Warn("graph session close failed", "err", err)
		}
	}()

	var counters writeCounters
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		counters = writeCounters{}
		for i, st := range statements {
			result, err := tx.Run(ctx, st.Cypher, st.Params)
			if err != nil {
				return nil, fmt.Errorf("statement %d: %w", i, err)
			}
			summary, err := result.Consume(ctx)
			if err != nil {
				return nil, fmt.Errorf("statement %d: %w", i, err)
			}
			counters.add(summary.Counters())
		}

		return nil, nil
	})
	if err != nil {
		err = classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "graph write failed")

		return fmt.Errorf("graph: write: %w", err)
	}

	c.cfg.Logger.Debug("graph write committed",
		"statements", len(statements),
		"nodes_created", counters.nodesCreated,
		"nodes_deleted", counters.nodesDeleted,
		"relationships_created", counters.relsCreated,
		"relationships_deleted", counters.relsDeleted,
		"properties_set", counters.propsSet,
	)

	return nil
}

// VerifyConnectivity dials the server and checks authentication.
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("graph: verify connectivity: %w", classify(err))
	}

	return nil
}

// Close releases every pooled connection.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

type writeCounters struct {
	nodesCreated int
	nodesDeleted int
	relsCreated  int
	relsDeleted  int
	propsSet     int
}

func (w *writeCounters) add(c neo4j.Counters) {
	w.nodesCreated += c.NodesCreated()
	w.nodesDeleted += c.NodesDeleted()
	w.relsCreated += c.RelationshipsCreated()
	w.relsDeleted += c.RelationshipsDeleted()
	w.propsSet += c.PropertiesSet()
}
