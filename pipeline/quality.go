package pipeline

import (
	"context"
	"fmt"

	"github.com/velmie/graphsync"
	"github.com/velmie/graphsync/graph"
)

// Quality copies the latest data quality score onto an existing entity node. Scores are never cleared.
type Quality struct {
	loader QualityLoader
	writer GraphWriter
	logger graphsync.Logger
}

// NewQuality constructs the quality pipeline.
func NewQuality(loader QualityLoader, writer GraphWriter, logger graphsync.Logger) *Quality {
	return &Quality{loader: loader, writer: writer, logger: loggerOrNop(logger)}
}

// Handle implements graphsync.Pipeline.
func (p *Quality) Handle(ctx context.Context, event graphsync.Event) graphsync.Outcome {
	score, found, err := p.loader.QualityScore(ctx, event.AggregateID)
	if err != nil {
		return graphsync.Failed(fmt.Errorf("load quality score %s: %w", event.AggregateID, err))
	}
	if !found {
		return graphsync.SkippedNotFound("no quality row for entity")
	}

	label, ok := graph.QualityLabel(score.EntityType)
	if !ok {
		return graphsync.SkippedUnsupported(fmt.Sprintf("unsupported quality entity_type %q", score.EntityType))
	}

	if err := p.writer.Write(ctx, graph.QualityUpdate(label, score)); err != nil {
		return graphsync.Failed(err)
	}
	p.logger.Debug("quality updated", "entity_id", score.EntityID, "label", string(label))

	return graphsync.Applied()
}
