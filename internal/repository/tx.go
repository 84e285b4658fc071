package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrPersistence marks transient store-level failures (connection loss,
// timeouts, rollback failures). Callers may retry idempotent operations when
// they observe it.
var ErrPersistence = errors.New("persistent store failure")

// wrapPersistence tags a store-level error so callers can detect it with
// errors.Is while keeping the underlying cause in the chain
func wrapPersistence(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrPersistence, err))
}

// withTx runs fn inside a single database transaction. The transaction is
// rolled back on any error so a failed operation leaves no record.
func withTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, wrapPersistence("begin transaction", err)
	}

	result, err := fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return zero, err
	}

	if err := tx.Commit(); err != nil {
		return zero, wrapPersistence("commit transaction", err)
	}

	return result, nil
}
