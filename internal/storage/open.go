// Package storage opens the relational store named by a sqlstore.Dialect.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/velmie/graphsync/mysql"
	"github.com/velmie/graphsync/postgres"
	"github.com/velmie/graphsync/sqlstore"
)

// Open connects to dsn with the driver matching dialect.
func Open(ctx context.Context, dialect sqlstore.Dialect, dsn string, pool sqlstore.Pool) (*sql.DB, error) {
	switch dialect {
	case sqlstore.Postgres:
		return postgres.Open(ctx, dsn, pool)
	case sqlstore.MySQL:
		return mysql.Open(ctx, dsn, pool)
	default:
		return nil, fmt.Errorf("%w: %q", sqlstore.ErrUnknownDialect, dialect)
	}
}
