package mysql

import (
	"fmt"

	"github.com/velmie/graphsync/sqlstore"
)

const schemaTemplate = `CREATE TABLE IF NOT EXISTS %s (
	id CHAR(36) NOT NULL,
	aggregate_type VARCHAR(64) NOT NULL,
	table_name VARCHAR(128) NOT NULL,
	op VARCHAR(16) NOT NULL,
	aggregate_id VARCHAR(128) NOT NULL,
	payload JSON NULL,
	created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	attempts INT NOT NULL DEFAULT 0,
	processed_at TIMESTAMP(6) NULL,
	error_message VARCHAR(1000) NULL,
	PRIMARY KEY (id),
	INDEX idx_pending (processed_at, attempts, created_at)
);`

// Schema returns the outbox table DDL.
func Schema(table string) (string, error) {
	name, err := sqlstore.SanitizeTableName(table)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(schemaTemplate, name), nil
}
