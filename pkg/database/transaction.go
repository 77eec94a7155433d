package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxBeginner là thứ mở được transaction (*pgxpool.Pool, *pgx.Conn)
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxFunc là function được execute trong transaction
type TxFunc func(pgx.Tx) error

// WithTransaction chạy fn trong một transaction.
// fn trả error hoặc panic => rollback (panic được re-throw); còn lại commit.
func WithTransaction(ctx context.Context, db TxBeginner, fn TxFunc) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
