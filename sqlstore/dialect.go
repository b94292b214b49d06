package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects placeholder style and ordering syntax for a relational backend.
type Dialect string

const (
	// Postgres uses $n placeholders (driver "pgx").
	Postgres Dialect = "postgres"
	// MySQL uses ? placeholders (driver "mysql"); requires MySQL 8 for SKIP LOCKED.
	MySQL Dialect = "mysql"
)

// ParseDialect converts a configuration value into a Dialect.
func ParseDialect(raw string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(raw))) {
	case Postgres, "postgresql", "pgx":
		return Postgres, nil
	case MySQL:
		return MySQL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, raw)
	}
}

// Rebind rewrites ? placeholders into the dialect's style.
// Queries passed here never contain a literal question mark.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])

			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}

	return b.String()
}

// descNullsLast orders a column newest first with NULLs at the end on both backends.
func (d Dialect) descNullsLast(column string) string {
	if d == Postgres {
		return column + " DESC NULLS LAST"
	}

	return column + " DESC"
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}

	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
