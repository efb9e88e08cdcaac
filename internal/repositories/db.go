package repositories

import "database/sql"

// Tx is the transaction surface used by services. *sql.Tx satisfies it.
type Tx interface {
	SQLExecutor
	Commit() error
	Rollback() error
}

// Database begins transactions and serves single-statement queries.
// Services depend on this instead of *sql.DB so workflow logic can be
// exercised against in-memory fakes.
type Database interface {
	SQLExecutor
	Begin() (Tx, error)
}

type sqlDatabase struct {
	*sql.DB
}

// NewDatabase wraps an open *sql.DB as a Database.
func NewDatabase(db *sql.DB) Database {
	return sqlDatabase{DB: db}
}

func (d sqlDatabase) Begin() (Tx, error) {
	return d.DB.Begin()
}
