package psql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/duynhne/profile-service/internal/core/domain"
)

// TxRunner implements domain.TxRunner on top of sqlx transactions.
type TxRunner struct {
	db *sqlx.DB
}

// NewTxRunner returns a transaction runner for db.
func NewTxRunner(db *sqlx.DB) *TxRunner {
	return &TxRunner{db: db}
}

var _ domain.TxRunner = (*TxRunner)(nil)

// InTx runs fn in a transaction at the store's default isolation level.
// A panic inside fn rolls back and is re-raised.
func (r *TxRunner) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback transaction: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
