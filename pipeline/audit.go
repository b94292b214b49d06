package pipeline

import (
	"context"
	"fmt"

	"github.com/velmie/graphsync"
	"github.com/velmie/graphsync/graph"
)

// Audit mirrors audit_log rows as ChangeEvent nodes.
type Audit struct {
	loader AuditLoader
	writer GraphWriter
	logger graphsync.Logger
}

// NewAudit constructs the audit pipeline.
func NewAudit(loader AuditLoader, writer GraphWriter, logger graphsync.Logger) *Audit {
	return &Audit{loader: loader, writer: writer, logger: loggerOrNop(logger)}
}

// Handle implements graphsync.Pipeline.
func (p *Audit) Handle(ctx context.Context, event graphsync.Event) graphsync.Outcome {
	entry, found, err := p.loader.AuditEntry(ctx, event.AggregateID)
	if err != nil {
		return graphsync.Failed(fmt.Errorf("load audit entry %s: %w", event.AggregateID, err))
	}

	if !found {
		if !event.IsDelete() {
			return graphsync.SkippedNotFound("audit row missing")
		}
		if err := p.writer.Write(ctx, graph.AuditDelete(event.AggregateID)); err != nil {
			return graphsync.Failed(err)
		}
		p.logger.Debug("change event deleted", "audit_id", event.AggregateID)

		return graphsync.Applied()
	}

	statements := []graph.Statement{graph.AuditUpsert(entry)}
	label, ok := graph.AuditLabel(entry.TableName)
	if ok {
		statements = append(statements, graph.AuditAffected(label, entry))
	}
	if err := p.writer.Write(ctx, statements...); err != nil {
		return graphsync.Failed(err)
	}
	p.logger.Debug("change event upserted", "audit_id", entry.ID, "table", entry.TableName, "linked", ok)

	return graphsync.Applied()
}
