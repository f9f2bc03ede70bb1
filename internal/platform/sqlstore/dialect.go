// Package sqlstore implements the store interfaces with database/sql.
//
// The same queries run on PostgreSQL and SQLite. They are written with ?
// placeholders and passed through a Dialect, which rebinds them for the
// target database and maps driver errors to store errors.
package sqlstore

import (
	"database/sql"
	"fmt"
)

// Dialect hides the differences between the supported databases.
type Dialect interface {
	Name() string
	Rebind(query string) string
	MapError(err error) error
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// checkRowsAffected returns notFound when an UPDATE or DELETE touched no rows.
func checkRowsAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
