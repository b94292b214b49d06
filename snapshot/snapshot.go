// Package snapshot defines the typed relational records each sync pipeline loads.
//
// Records are produced by loaders at the relational boundary and validated there; pipelines only ever see records
// that passed Validate.
package snapshot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalid is returned when a loaded row is missing data the graph needs.
var ErrInvalid = errors.New("snapshot: invalid record")

// MaxLineageRuns is the number of most recent lineage rows kept per entity.
const MaxLineageRuns = 5

func invalid(kind, field, id string) error {
	return fmt.Errorf("%w: %s %q: %s is required", ErrInvalid, kind, id, field)
}

// LineageRun is one data_lineage row.
type LineageRun struct {
	ID                    string
	EntityID              string
	EntityType            string
	SourceSystem          string
	TransformationApplied *string
	BronzeRecordID        *string
	SilverRecordID        *string
	IngestedAt            *time.Time
	ProcessedAt           *time.Time
	CreatedAt             *time.Time
}

// Validate checks the fields used as graph keys.
func (r LineageRun) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return invalid("lineage run", "id", r.EntityID)
	case strings.TrimSpace(r.EntityID) == "":
		return invalid("lineage run", "entity_id", r.ID)
	case strings.TrimSpace(r.SourceSystem) == "":
		return invalid("lineage run", "source_system", r.ID)
	}

	return nil
}

// AuditEntry is one audit_log row.
type AuditEntry struct {
	ID        string
	TableName string
	RecordID  string
	Action    string
	// ChangedBy is empty when the change has no attributable user.
	ChangedBy string
	ChangedAt *time.Time
	IPAddress *string
	UserAgent *string
}

// Validate checks the fields used as graph keys.
func (a AuditEntry) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return invalid("audit entry", "id", a.RecordID)
	}

	return nil
}

// QualityScore is the latest data_quality_scores row of an entity.
type QualityScore struct {
	EntityID     string
	EntityType   string
	QualityScore decimal.NullDecimal
	Completeness decimal.NullDecimal
	Accuracy     decimal.NullDecimal
	LastChecked  *time.Time
	Issues       []string
}

// Validate checks the fields used as graph keys.
func (q QualityScore) Validate() error {
	if strings.TrimSpace(q.EntityID) == "" {
		return invalid("quality score", "entity_id", q.EntityType)
	}

	return nil
}

// VendorMapping is a vendor_product_mappings row joined with the vendor and product names.
type VendorMapping struct {
	ID              string
	VendorID        string
	VendorProductID string
	GlobalProductID string
	VendorName      *string
	ProductName     *string
	ConfidenceScore decimal.NullDecimal
	MappingMethod   *string
	CreatedAt       *time.Time
}

// Validate checks the fields used as graph keys.
func (m VendorMapping) Validate() error {
	switch {
	case strings.TrimSpace(m.ID) == "":
		return invalid("vendor mapping", "id", m.VendorProductID)
	case strings.TrimSpace(m.VendorID) == "":
		return invalid("vendor mapping", "vendor_id", m.ID)
	case strings.TrimSpace(m.VendorProductID) == "":
		return invalid("vendor mapping", "vendor_product_id", m.ID)
	case strings.TrimSpace(m.GlobalProductID) == "":
		return invalid("vendor mapping", "global_product_id", m.ID)
	}

	return nil
}

// DeleteKeys identifies a VendorProduct node after its mapping row is gone.
type DeleteKeys struct {
	VendorID        string
	VendorProductID string
}

// Complete reports whether both keys are present.
func (k DeleteKeys) Complete() bool {
	return strings.TrimSpace(k.VendorID) != "" && strings.TrimSpace(k.VendorProductID) != ""
}

// Float returns the decimal as float64, or nil when NULL.
func Float(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}

	return d.Decimal.InexactFloat64()
}

// Time returns the timestamp in UTC, or nil when NULL.
func Time(t *time.Time) any {
	if t == nil {
		return nil
	}

	return t.UTC()
}

// String returns the string, or nil when NULL.
func String(s *string) any {
	if s == nil {
		return nil
	}

	return *s
}
