package postgres

import (
	"fmt"

	"github.com/velmie/graphsync/sqlstore"
)

const schemaTemplate = `CREATE TABLE IF NOT EXISTS %[1]s (
	id UUID PRIMARY KEY,
	aggregate_type TEXT NOT NULL,
	table_name TEXT NOT NULL,
	op TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	payload JSONB NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	attempts INTEGER NOT NULL DEFAULT 0,
	processed_at TIMESTAMPTZ NULL,
	error_message VARCHAR(1000) NULL
);
CREATE INDEX IF NOT EXISTS %[2]s_pending_idx ON %[1]s (created_at) WHERE processed_at IS NULL;`

// Schema returns the outbox table DDL.
func Schema(table string) (string, error) {
	name, err := sqlstore.SanitizeTableName(table)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(schemaTemplate, name, indexPrefix(name)), nil
}

func indexPrefix(table string) string {
	out := []byte(table)
	for i, c := range out {
		if c == '.' {
			out[i] = '_'
		}
	}

	return string(out)
}

// SourceSchema is the DDL of the relational tables the snapshot loaders read. The producing application owns these
// tables; the statements exist for local setups and tests.
const SourceSchema = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS vendors (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS vendor_product_mappings (
	id TEXT PRIMARY KEY,
	vendor_id TEXT NOT NULL REFERENCES vendors (id),
	vendor_product_id TEXT NOT NULL,
	global_product_id TEXT NOT NULL REFERENCES products (id),
	confidence_score NUMERIC(5, 4) NULL,
	mapping_method TEXT NULL,
	created_at TIMESTAMPTZ NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS data_lineage (
	id TEXT PRIMARY KEY,
	entity_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	source_system TEXT NOT NULL,
	transformation_applied TEXT NULL,
	bronze_record_id TEXT NULL,
	silver_record_id TEXT NULL,
	ingested_at TIMESTAMPTZ NULL,
	processed_at TIMESTAMPTZ NULL,
	created_at TIMESTAMPTZ NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY,
	table_name TEXT NOT NULL,
	record_id TEXT NOT NULL,
	action TEXT NOT NULL,
	changed_by TEXT NULL,
	changed_at TIMESTAMPTZ NULL DEFAULT NOW(),
	ip_address TEXT NULL,
	user_agent TEXT NULL
);
CREATE TABLE IF NOT EXISTS data_quality_scores (
	entity_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	quality_score NUMERIC(5, 4) NULL,
	completeness NUMERIC(5, 4) NULL,
	accuracy NUMERIC(5, 4) NULL,
	last_checked TIMESTAMPTZ NULL,
	issues JSONB NULL
);`
