// Package postgres connects to PostgreSQL through the pgx stdlib driver and
// translates PostgreSQL error codes into store errors. The SQL stores in
// internal/platform/sqlstore run on top of it via Dialect.
package postgres
