package core

import (
	"context"
	"database/sql"
)

type (
	DBExecutor interface {
		Exec(query string, args ...interface{}) (sql.Result, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		Query(query string, args ...interface{}) (*sql.Rows, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRow(query string, args ...interface{}) *sql.Row
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	// Database is the storage entrypoint handed to services: a default executor
	// for standalone statements and a factory for delegated transactions.
	Database interface {
		Executor() DBExecutor
		Begin(ctx context.Context) (*Tx, error)
	}
)

// Tx wraps a storage transaction and carries hooks to run only after a
// successful commit. Side effects that must not be transactional (event
// emission, notifications) are registered with AfterCommit instead of being
// fired mid-transaction.
type Tx struct {
	exec     DBExecutor
	commit   func() error
	rollback func() error
	hooks    []func()
	done     bool
}

// NewTx builds a Tx over a storage-specific executor and commit/rollback
// functions. Stores without transactional semantics pass nil functions.
func NewTx(exec DBExecutor, commit, rollback func() error) *Tx {
	return &Tx{exec: exec, commit: commit, rollback: rollback}
}

// Executor returns the executor bound to this transaction.
// It is nil for stores that do not speak SQL.
func (tx *Tx) Executor() DBExecutor { return tx.exec }

// AfterCommit registers fn to run once the transaction commits.
// Hooks never run on rollback; a hook failure cannot roll the commit back.
func (tx *Tx) AfterCommit(fn func()) {
	tx.hooks = append(tx.hooks, fn)
}

func (tx *Tx) Commit() error {
	if tx.done {
		return sql.ErrTxDone
	}
	tx.done = true
	if tx.commit != nil {
		if err := tx.commit(); err != nil {
			return err
		}
	}
	for _, fn := range tx.hooks {
		fn()
	}
	return nil
}

// Rollback is a no-op once the transaction is committed or rolled back,
// so it can be deferred unconditionally.
func (tx *Tx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	if tx.rollback != nil {
		return tx.rollback()
	}
	return nil
}
