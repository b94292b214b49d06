package sqlstore

import (
	"fmt"
	"strings"

	"github.com/velmie/graphsync"
)

const outboxColumns = "id, aggregate_type, table_name, op, aggregate_id, payload, created_at, attempts"

type queries struct {
	dialect       Dialect
	table         string
	markProcessed string
	markFailed    string
	stats         string
}

func newQueries(dialect Dialect, table string) queries {
	return queries{
		dialect: dialect,
		table:   table,
		markProcessed: dialect.Rebind(fmt.Sprintf(
			"UPDATE %s SET processed_at = ?, error_message = NULL WHERE id = ?", table)),
		markFailed: dialect.Rebind(fmt.Sprintf(
			"UPDATE %s SET attempts = attempts + 1, error_message = ?, processed_at = NULL WHERE id = ?", table)),
		stats: dialect.Rebind(fmt.Sprintf(
			"SELECT aggregate_type, "+
				"SUM(CASE WHEN processed_at IS NULL AND attempts < ? THEN 1 ELSE 0 END), "+
				"SUM(CASE WHEN processed_at IS NULL AND attempts >= ? THEN 1 ELSE 0 END), "+
				"SUM(CASE WHEN processed_at IS NOT NULL THEN 1 ELSE 0 END) "+
				"FROM %s GROUP BY aggregate_type ORDER BY aggregate_type", table)),
	}
}

// eligible builds the WHERE clause shared by fetch and count.
func (q queries) eligible(opts graphsync.FetchOptions) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, 1+len(opts.Tables)+len(opts.AggregateTypes))

	b.WriteString("processed_at IS NULL AND attempts < ?")
	args = append(args, opts.MaxAttempts)

	if len(opts.Tables) > 0 {
		b.WriteString(" AND table_name IN (")
		b.WriteString(makePlaceholders(len(opts.Tables)))
		b.WriteString(")")
		for _, table := range opts.Tables {
			args = append(args, table)
		}
	}
	if len(opts.AggregateTypes) > 0 {
		b.WriteString(" AND aggregate_type IN (")
		b.WriteString(makePlaceholders(len(opts.AggregateTypes)))
		b.WriteString(")")
		for _, aggregate := range opts.AggregateTypes {
			args = append(args, string(aggregate))
		}
	}

	return b.String(), args
}

func (q queries) selectPending(opts graphsync.FetchOptions) (string, []any) {
	where, args := q.eligible(opts)
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s ORDER BY created_at ASC LIMIT ? FOR UPDATE SKIP LOCKED",
		outboxColumns,
		q.table,
		where,
	)
	args = append(args, opts.BatchSize)

	return q.dialect.Rebind(query), args
}

func (q queries) countPending(opts graphsync.FetchOptions) (string, []any) {
	where, args := q.eligible(opts)

	return q.dialect.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", q.table, where)), args
}
