package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql methods shared by *sql.DB and *sql.Tx.
// Repositories are built on it so the same code runs standalone or inside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RollbackError reports that a transaction could not be rolled back after a
// failure. State touched before the failure may have been applied.
type RollbackError struct {
	Err      error // the error that triggered the rollback
	Rollback error // the rollback failure itself
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback failed: %v (after: %v)", e.Rollback, e.Err)
}

func (e *RollbackError) Unwrap() error { return e.Err }

// CommitError reports that Commit itself returned an error. The outcome is
// ambiguous: the server may have made the transaction durable before the
// connection dropped, so callers must not assume the work was discarded.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("failed to commit transaction: %v", e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// TxManager runs a function inside a database transaction
type TxManager interface {
	RunInTx(ctx context.Context, fn func(tx DBTX) error) error
}

type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager creates a TxManager backed by *sql.DB
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

// RunInTx begins a transaction, runs fn, and commits. If fn returns an error
// the transaction is rolled back and the error is returned unchanged, so
// sentinel errors survive for the caller. A failed rollback is wrapped in
// RollbackError and a failed commit in CommitError.
func (m *sqlTxManager) RunInTx(ctx context.Context, fn func(tx DBTX) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return &RollbackError{Err: err, Rollback: rbErr}
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return &CommitError{Err: err}
	}

	return nil
}
