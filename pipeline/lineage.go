package pipeline

import (
	"context"
	"fmt"

	"github.com/velmie/graphsync"
	"github.com/velmie/graphsync/graph"
)

// Lineage replaces an entity's lineage subgraph with its most recent data_lineage rows.
type Lineage struct {
	loader LineageLoader
	writer GraphWriter
	logger graphsync.Logger
}

// NewLineage constructs the lineage pipeline.
func NewLineage(loader LineageLoader, writer GraphWriter, logger graphsync.Logger) *Lineage {
	return &Lineage{loader: loader, writer: writer, logger: loggerOrNop(logger)}
}

// Handle implements graphsync.Pipeline. Clear and rebuild commit in one transaction.
func (p *Lineage) Handle(ctx context.Context, event graphsync.Event) graphsync.Outcome {
	entityID := event.AggregateID

	runs, err := p.loader.LineageRuns(ctx, entityID)
	if err != nil {
		return graphsync.Failed(fmt.Errorf("load lineage %s: %w", entityID, err))
	}
	if len(runs) == 0 {
		return graphsync.SkippedNotFound("no lineage rows for entity")
	}

	entityType := runs[0].EntityType
	label, ok := graph.LineageLabel(entityType)
	if !ok {
		return graphsync.SkippedUnsupported(fmt.Sprintf("unsupported lineage entity_type %q", entityType))
	}

	err = p.writer.Write(ctx,
		graph.LineageClear(label, entityID),
		graph.LineageRebuild(label, entityID, runs),
	)
	if err != nil {
		return graphsync.Failed(err)
	}
	p.logger.Debug("lineage rebuilt", "entity_id", entityID, "label", string(label), "runs", len(runs))

	return graphsync.Applied()
}
