package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/velmie/graphsync/snapshot"
)

// Snapshots loads current relational truth for the aggregates referenced by outbox events.
type Snapshots struct {
	db      *sql.DB
	lineage string
	audit   string
	quality string
	vendor  string
}

// NewSnapshots constructs loaders for the given dialect.
func NewSnapshots(db *sql.DB, dialect Dialect) (*Snapshots, error) {
	if db == nil {
		return nil, ErrDBRequired
	}
	if dialect != Postgres && dialect != MySQL {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}

	return &Snapshots{
		db: db,
		lineage: dialect.Rebind(
			"SELECT id, entity_id, entity_type, source_system, transformation_applied, bronze_record_id, " +
				"silver_record_id, ingested_at, processed_at, created_at " +
				"FROM data_lineage WHERE entity_id = ? ORDER BY " + dialect.descNullsLast("processed_at") +
				", id DESC LIMIT ?"),
		audit: dialect.Rebind(
			"SELECT id, table_name, record_id, action, changed_by, changed_at, ip_address, user_agent " +
				"FROM audit_log WHERE id = ?"),
		quality: dialect.Rebind(
			"SELECT entity_id, entity_type, quality_score, completeness, accuracy, last_checked, issues " +
				"FROM data_quality_scores WHERE entity_id = ? ORDER BY " + dialect.descNullsLast("last_checked") +
				" LIMIT 1"),
		vendor: dialect.Rebind(
			"SELECT m.id, m.vendor_id, m.vendor_product_id, m.global_product_id, v.name, p.name, " +
				"m.confidence_score, m.mapping_method, m.created_at " +
				"FROM vendor_product_mappings m " +
				"JOIN vendors v ON v.id = m.vendor_id " +
				"JOIN products p ON p.id = m.global_product_id " +
				"WHERE m.id = ?"),
	}, nil
}

// LineageRuns returns up to snapshot.MaxLineageRuns rows for entityID, newest first. No rows is not an error.
func (s *Snapshots) LineageRuns(ctx context.Context, entityID string) ([]snapshot.LineageRun, error) {
	rows, err := s.db.QueryContext(ctx, s.lineage, entityID, snapshot.MaxLineageRuns)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: load lineage failed: %w", err)
	}
	defer rows.Close()

	runs := make([]snapshot.LineageRun, 0, snapshot.MaxLineageRuns)
	for rows.Next() {
		var (
			run                                snapshot.LineageRun
			entityType, sourceSystem           sql.NullString
			transformation, bronze, silver     sql.NullString
			ingestedAt, processedAt, createdAt sql.NullTime
		)
		if err := rows.Scan(
			&run.ID,
			&run.EntityID,
			&entityType,
			&sourceSystem,
			&transformation,
			&bronze,
			&silver,
			&ingestedAt,
			&processedAt,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("sqlstore: scan lineage failed: %w", err)
		}
		run.EntityType = entityType.String
		run.SourceSystem = sourceSystem.String
		run.TransformationApplied = nullString(transformation)
		run.BronzeRecordID = nullString(bronze)
		run.SilverRecordID = nullString(silver)
		run.IngestedAt = nullTime(ingestedAt)
		run.ProcessedAt = nullTime(processedAt)
		run.CreatedAt = nullTime(createdAt)
		if err := run.Validate(); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: lineage rows failed: %w", err)
	}

	return runs, nil
}

// AuditEntry loads one audit_log row. found is false when the row does not exist.
func (s *Snapshots) AuditEntry(ctx context.Context, id string) (snapshot.AuditEntry, bool, error) {
	var (
		entry                           snapshot.AuditEntry
		tableName, recordID, action     sql.NullString
		changedBy, ipAddress, userAgent sql.NullString
		changedAt                       sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, s.audit, id).Scan(
		&entry.ID,
		&tableName,
		&recordID,
		&action,
		&changedBy,
		&changedAt,
		&ipAddress,
		&userAgent,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return snapshot.AuditEntry{}, false, nil
	}
	if err != nil {
		return snapshot.AuditEntry{}, false, fmt.Errorf("sqlstore: load audit entry failed: %w", err)
	}

	entry.TableName = tableName.String
	entry.RecordID = recordID.String
	entry.Action = action.String
	entry.ChangedBy = changedBy.String
	entry.ChangedAt = nullTime(changedAt)
	entry.IPAddress = nullString(ipAddress)
	entry.UserAgent = nullString(userAgent)
	if err := entry.Validate(); err != nil {
		return snapshot.AuditEntry{}, false, err
	}

	return entry, true, nil
}

// QualityScore loads the most recently checked quality row for entityID.
func (s *Snapshots) QualityScore(ctx context.Context, entityID string) (snapshot.QualityScore, bool, error) {
	var (
		score       snapshot.QualityScore
		entityType  sql.NullString
		lastChecked sql.NullTime
		issues      []byte
	)
	err := s.db.QueryRowContext(ctx, s.quality, entityID).Scan(
		&score.EntityID,
		&entityType,
		&score.QualityScore,
		&score.Completeness,
		&score.Accuracy,
		&lastChecked,
		&issues,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return snapshot.QualityScore{}, false, nil
	}
	if err != nil {
		return snapshot.QualityScore{}, false, fmt.Errorf("sqlstore: load quality score failed: %w", err)
	}

	score.EntityType = entityType.String
	score.LastChecked = nullTime(lastChecked)
	if score.Issues, err = snapshot.ParseIssues(issues); err != nil {
		return snapshot.QualityScore{}, false, fmt.Errorf("%w: %w", snapshot.ErrInvalid, err)
	}
	if err := score.Validate(); err != nil {
		return snapshot.QualityScore{}, false, err
	}

	return score, true, nil
}

// VendorMapping loads a mapping joined with its vendor and product names.
func (s *Snapshots) VendorMapping(ctx context.Context, id string) (snapshot.VendorMapping, bool, error) {
	var (
		mapping                                snapshot.VendorMapping
		vendorName, productName, mappingMethod sql.NullString
		createdAt                              sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, s.vendor, id).Scan(
		&mapping.ID,
		&mapping.VendorID,
		&mapping.VendorProductID,
		&mapping.GlobalProductID,
		&vendorName,
		&productName,
		&mapping.ConfidenceScore,
		&mappingMethod,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return snapshot.VendorMapping{}, false, nil
	}
	if err != nil {
		return snapshot.VendorMapping{}, false, fmt.Errorf("sqlstore: load vendor mapping failed: %w", err)
	}

	mapping.VendorName = nullString(vendorName)
	mapping.ProductName = nullString(productName)
	mapping.MappingMethod = nullString(mappingMethod)
	mapping.CreatedAt = nullTime(createdAt)
	if err := mapping.Validate(); err != nil {
		return snapshot.VendorMapping{}, false, err
	}

	return mapping, true, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String

	return &v
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()

	return &v
}
