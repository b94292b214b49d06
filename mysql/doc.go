// Package mysql opens MySQL 8.0+ connections for the outbox store and provides the outbox table DDL.
//
// The store itself lives in sqlstore and runs with sqlstore.MySQL; MySQL 8.0 is the minimum version that
// supports SELECT ... FOR UPDATE SKIP LOCKED.
package mysql
