// Package sqlstore implements the outbox adapter and the relational snapshot loaders on database/sql.
//
// Both Postgres (pgx driver) and MySQL 8 (go-sql-driver/mysql) are supported through Dialect; row locking uses
// SELECT ... FOR UPDATE SKIP LOCKED on either backend.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/velmie/graphsync"
)

// MaxErrorLen is the longest error_message stored on a failed event, in characters.
const MaxErrorLen = 1000

// Store implements graphsync.Store over an outbox table.
type Store struct {
	db      *sql.DB
	dialect Dialect
	cfg     Config
	queries queries
}

var (
	_ graphsync.Store          = (*Store)(nil)
	_ graphsync.PendingCounter = (*Store)(nil)
)

// NewStore constructs a store with validated configuration.
func NewStore(db *sql.DB, dialect Dialect, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrDBRequired
	}
	if dialect != Postgres && dialect != MySQL {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	table, err := SanitizeTableName(cfg.Table)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:      db,
		dialect: dialect,
		cfg:     cfg,
		queries: newQueries(dialect, table),
	}, nil
}

// MustNewStore constructs a store or panics on error.
func MustNewStore(db *sql.DB, dialect Dialect, opts ...Option) *Store {
	store, err := NewStore(db, dialect, opts...)
	if err != nil {
		panic(err)
	}

	return store
}

// Fetch opens a READ COMMITTED transaction, locks a batch of eligible rows and commits right away so the lock
// window ends before any pipeline runs.
func (s *Store) Fetch(ctx context.Context, opts graphsync.FetchOptions) ([]graphsync.Event, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: begin tx failed: %w", err)
	}

	events, err := s.FetchPending(ctx, tx, opts)
	if err != nil {
		return nil, errors.Join(err, rollback(tx))
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlstore: commit fetch failed: %w", err)
	}

	return events, nil
}

// FetchPending selects eligible rows inside the caller's transaction, locking them and skipping rows locked by a
// concurrent fetch. Rows come back ordered by created_at ascending.
func (s *Store) FetchPending(ctx context.Context, tx *sql.Tx, opts graphsync.FetchOptions) ([]graphsync.Event, error) {
	if tx == nil {
		return nil, ErrTxRequired
	}
	if opts.BatchSize <= 0 {
		return nil, graphsync.ErrInvalidBatchSize
	}
	if opts.MaxAttempts <= 0 {
		return nil, graphsync.ErrInvalidMaxAttempts
	}

	query, args := s.queries.selectPending(opts)
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: select failed: %w", err)
	}
	defer rows.Close()

	events := make([]graphsync.Event, 0, opts.BatchSize)
	for rows.Next() {
		var (
			event     graphsync.Event
			aggType   string
			op        string
			payload   []byte
			createdAt time.Time
		)
		if err := rows.Scan(
			&event.ID,
			&aggType,
			&event.TableName,
			&op,
			&event.AggregateID,
			&payload,
			&createdAt,
			&event.Attempts,
		); err != nil {
			return nil, fmt.Errorf("sqlstore: scan failed: %w", err)
		}
		event.AggregateType = graphsync.AggregateType(aggType)
		event.Op = graphsync.Op(op)
		event.CreatedAt = createdAt.UTC()
		if len(payload) > 0 {
			event.Payload = payload
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: rows failed: %w", err)
	}

	return events, nil
}

// MarkProcessed implements graphsync.Marker.
func (s *Store) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, s.queries.markProcessed, s.cfg.Clock.Now(), id); err != nil {
		return fmt.Errorf("sqlstore: mark processed failed: %w", err)
	}

	return nil
}

// MarkFailed implements graphsync.Marker.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, cause error) error {
	if _, err := s.db.ExecContext(ctx, s.queries.markFailed, truncateError(cause), id); err != nil {
		return fmt.Errorf("sqlstore: mark failed failed: %w", err)
	}

	return nil
}

// PendingCount returns the number of rows currently eligible under opts.
func (s *Store) PendingCount(ctx context.Context, opts graphsync.FetchOptions) (int, error) {
	query, args := s.queries.countPending(opts)

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlstore: pending count failed: %w", err)
	}

	return count, nil
}

// AggregateStats summarizes outbox rows of one aggregate type.
type AggregateStats struct {
	AggregateType string `json:"aggregate_type"`
	// Pending rows are still eligible for fetch.
	Pending int64 `json:"pending"`
	// Exhausted rows reached the attempts ceiling and are no longer fetched.
	Exhausted int64 `json:"exhausted"`
	Processed int64 `json:"processed"`
}

// Stats reports per aggregate type counts relative to maxAttempts.
func (s *Store) Stats(ctx context.Context, maxAttempts int) ([]AggregateStats, error) {
	if maxAttempts <= 0 {
		return nil, graphsync.ErrInvalidMaxAttempts
	}

	rows, err := s.db.QueryContext(ctx, s.queries.stats, maxAttempts, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: stats failed: %w", err)
	}
	defer rows.Close()

	var stats []AggregateStats
	for rows.Next() {
		var st AggregateStats
		if err := rows.Scan(&st.AggregateType, &st.Pending, &st.Exhausted, &st.Processed); err != nil {
			return nil, fmt.Errorf("sqlstore: stats scan failed: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: stats rows failed: %w", err)
	}

	return stats, nil
}

// Ping checks the relational connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func rollback(tx *sql.Tx) error {
	err := tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}

	return err
}

func truncateError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	if utf8.RuneCountInString(msg) <= MaxErrorLen {
		return msg
	}

	return string([]rune(msg)[:MaxErrorLen])
}
