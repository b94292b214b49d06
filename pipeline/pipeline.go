// Package pipeline turns outbox events into graph mutations. Every pipeline reloads current relational state for
// the event's aggregate and rewrites the graph from it, so redelivering an event converges instead of duplicating.
package pipeline

import (
	"context"

	"github.com/velmie/graphsync"
	"github.com/velmie/graphsync/graph"
	"github.com/velmie/graphsync/snapshot"
)

// GraphWriter applies statements in one write transaction.
type GraphWriter interface {
	Write(ctx context.Context, statements ...graph.Statement) error
}

// AuditLoader loads audit_log rows.
type AuditLoader interface {
	AuditEntry(ctx context.Context, id string) (snapshot.AuditEntry, bool, error)
}

// LineageLoader loads the most recent data_lineage rows of an entity.
type LineageLoader interface {
	LineageRuns(ctx context.Context, entityID string) ([]snapshot.LineageRun, error)
}

// QualityLoader loads the latest data_quality_scores row of an entity.
type QualityLoader interface {
	QualityScore(ctx context.Context, entityID string) (snapshot.QualityScore, bool, error)
}

// VendorLoader loads a vendor_product_mappings row with vendor and product names.
type VendorLoader interface {
	VendorMapping(ctx context.Context, id string) (snapshot.VendorMapping, bool, error)
}

// Loader is implemented by *sqlstore.Snapshots.
type Loader interface {
	AuditLoader
	LineageLoader
	QualityLoader
	VendorLoader
}

// NewSet returns the pipeline for every known aggregate type.
func NewSet(loader Loader, writer GraphWriter, logger graphsync.Logger) map[graphsync.AggregateType]graphsync.Pipeline {
	return map[graphsync.AggregateType]graphsync.Pipeline{
		graphsync.AggregateLineage:       NewLineage(loader, writer, logger),
		graphsync.AggregateVendorMapping: NewVendor(loader, writer, logger),
		graphsync.AggregateAudit:         NewAudit(loader, writer, logger),
		graphsync.AggregateQuality:       NewQuality(loader, writer, logger),
	}
}

func loggerOrNop(logger graphsync.Logger) graphsync.Logger {
	if logger == nil {
		return graphsync.NopLogger{}
	}

	return logger
}
