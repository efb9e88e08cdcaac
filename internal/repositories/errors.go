package repositories

import (
	"database/sql"
	"errors"
)

var (
	// ErrNotFound is returned when a user, shift, swap request or cycle
	// does not exist. Services map it onto their own not-found errors.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError wraps unexpected driver failures so services never
	// branch on lib/pq error strings directly.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert or update trips a unique
	// constraint, such as the one-pending-swap-per-shift index.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")
)

// SQLExecutor is the query surface shared by *sql.DB and *sql.Tx, so the
// same repository method serves both one-off reads and the multi-step
// lifecycle transitions that run inside a transaction.
type SQLExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// scanner is satisfied by *sql.Row and *sql.Rows, letting one scan helper
// serve single-row and list queries.
type scanner interface {
	Scan(dest ...interface{}) error
}
