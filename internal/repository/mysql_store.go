package repository

import (
	"context"
	"database/sql"
	"errors"
)

// MySQLStore is the Store backed by a MySQL connection pool.  Each Begin
// opens a database transaction at the server's default isolation level.
type MySQLStore struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewMySQLStore constructs a MySQLStore with the provided DB handle.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// DB exposes the pool for health checks and migrations.
func (s *MySQLStore) DB() *sql.DB { return s.db }

// Begin starts a transaction.  The caller must Commit or Rollback it.
func (s *MySQLStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

// sqlTx implements Tx on top of *sql.Tx.  Its table methods live in the
// per-table *_repository.go files.
type sqlTx struct {
	tx *sql.Tx
}

// Commit commits the transaction.  A unique violation detected at commit
// time is reported as ErrDuplicate.
func (t *sqlTx) Commit() error {
	return classify(t.tx.Commit())
}

// Rollback aborts the transaction.  Rolling back a finished transaction
// is not an error.
func (t *sqlTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
