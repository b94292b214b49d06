package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/velmie/graphsync/sqlstore"
)

// Open connects with dsn (URL or keyword/value form) and verifies the connection.
func Open(ctx context.Context, dsn string, pool sqlstore.Pool) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}

	db := stdlib.OpenDB(*cfg)
	pool.Apply(db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return db, nil
}
