package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"github.com/velmie/graphsync/sqlstore"
)

// Open connects with dsn, forcing parseTime and UTC so timestamps scan into time.Time.
func Open(ctx context.Context, dsn string, pool sqlstore.Pool) (*sql.DB, error) {
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: parse dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := driver.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql: connector: %w", err)
	}

	db := sql.OpenDB(connector)
	pool.Apply(db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	return db, nil
}
