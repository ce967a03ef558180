package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// PgxTxManager runs units of work inside a single pgx transaction. The
// open transaction is carried on the context so that repositories pick
// it up transparently; every row touched inside fn commits together or
// not at all.
type PgxTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager builds a transaction manager over the given pool.
func NewTxManager(pool *pgxpool.Pool) *PgxTxManager {
	return &PgxTxManager{pool: pool}
}

// WithinTx begins a transaction, invokes fn with a tx-bearing context,
// and commits on success. Any error from fn rolls the whole unit back.
func (m *PgxTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := repository.TxFromContext(ctx); tx != nil {
		// already inside a transaction; join it
		return fn(ctx)
	}

	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txCtx := repository.ContextWithTx(ctx, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
