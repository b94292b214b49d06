package sqlstore

import "errors"

var (
	// ErrDBRequired is returned when a nil *sql.DB is provided.
	ErrDBRequired = errors.New("sqlstore: db is required")
	// ErrTableNameRequired is returned when the table name is empty.
	ErrTableNameRequired = errors.New("sqlstore: table name is required")
	// ErrInvalidTableName is returned when the table name has disallowed characters.
	ErrInvalidTableName = errors.New("sqlstore: invalid table name")
	// ErrUnknownDialect is returned for a dialect other than postgres or mysql.
	ErrUnknownDialect = errors.New("sqlstore: unknown dialect")
	// ErrTxRequired is returned when FetchPending is called without a transaction.
	ErrTxRequired = errors.New("sqlstore: transaction is required")
)
