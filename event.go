package graphsync

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AggregateType selects the pipeline an outbox event is dispatched to.
type AggregateType string

const (
	// AggregateLineage wakes the lineage pipeline for a gold entity.
	AggregateLineage AggregateType = "lineage_entity"
	// AggregateVendorMapping wakes the vendor-mapping pipeline for a vendor_product_mappings row.
	AggregateVendorMapping AggregateType = "vendor_product_mapping"
	// AggregateAudit wakes the audit pipeline for an audit_log row.
	AggregateAudit AggregateType = "audit_event"
	// AggregateQuality wakes the quality pipeline for a gold entity.
	AggregateQuality AggregateType = "data_quality_entity"
)

// DefaultAggregateTypes returns the aggregate types handled by the built-in pipelines.
func DefaultAggregateTypes() []AggregateType {
	return []AggregateType{AggregateLineage, AggregateVendorMapping, AggregateAudit, AggregateQuality}
}

// DefaultTables returns the source tables whose outbox rows are polled by default.
func DefaultTables() []string {
	return []string{"data_lineage", "vendor_product_mappings", "audit_log", "data_quality_scores"}
}

// Op is the relational operation that produced an outbox event.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Normalize returns the upper-cased, trimmed operation.
func (o Op) Normalize() Op {
	return Op(strings.ToUpper(strings.TrimSpace(string(o))))
}

// Event is a stored outbox row fetched for processing.
//
// The event is a wake-up signal: pipelines reload current relational state for AggregateID and only fall back to
// Payload when the source row is already gone.
type Event struct {
	ID            uuid.UUID
	AggregateType AggregateType
	TableName     string
	Op            Op
	AggregateID   string
	// Payload is nil when the column is NULL.
	Payload   []byte
	CreatedAt time.Time
	Attempts  int
}

// IsDelete reports whether the event was produced by a DELETE.
func (e Event) IsDelete() bool {
	return e.Op.Normalize() == OpDelete
}
