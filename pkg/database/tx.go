package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// serializationRetries is how many times a serializable transaction is
// retried after a serialization failure before giving up.
const serializationRetries = 3

// TxManager runs functions inside a transaction on the venture-scoped
// connection carried by the context. The function receives a derived
// context whose scope queries through the transaction, so repositories
// participate without knowing about it.
type TxManager interface {
	// Run executes fn in a transaction at the store's default isolation.
	Run(ctx context.Context, fn func(ctx context.Context) error) error

	// RunSerializable executes fn at SERIALIZABLE isolation and retries
	// on serialization failure (SQLSTATE 40001) or deadlock (40P01).
	RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

type txManager struct{}

// NewTxManager creates a TxManager.
func NewTxManager() TxManager {
	return &txManager{}
}

var _ TxManager = (*txManager)(nil)

func (m *txManager) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return runInTx(ctx, pgx.TxOptions{}, fn)
}

func (m *txManager) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := pgx.TxOptions{IsoLevel: pgx.Serializable}

	var err error
	for attempt := 0; attempt <= serializationRetries; attempt++ {
		err = runInTx(ctx, opts, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("serializable transaction failed after %d retries: %w", serializationRetries, err)
}

func runInTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context) error) error {
	scope, ok := GetVentureScope(ctx)
	if !ok {
		return fmt.Errorf("no venture scope in context")
	}

	// Already inside a transaction: join it rather than nesting.
	if _, inTx := scope.Conn.(pgx.Tx); inTx {
		return fn(ctx)
	}

	if scope.conn == nil {
		return fmt.Errorf("venture scope has no connection")
	}

	tx, err := scope.conn.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txScope := &VentureScope{Conn: tx}
	if err := fn(SetVentureScope(ctx, txScope)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
