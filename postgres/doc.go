// Package postgres opens Postgres connections through pgx's database/sql driver and provides the outbox table
// DDL plus the source tables the snapshot loaders read.
package postgres
