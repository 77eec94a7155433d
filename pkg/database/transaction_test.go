package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx chỉ implement Commit/Rollback; method khác panic nếu bị gọi
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b *fakeBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestWithTransaction_Commit(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}

	err := WithTransaction(context.Background(), b, func(pgx.Tx) error { return nil })
	require.NoError(t, err)
	assert.True(t, b.tx.committed)
	assert.False(t, b.tx.rolledBack)
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	boom := errors.New("boom")

	err := WithTransaction(context.Background(), b, func(pgx.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, b.tx.committed)
	assert.True(t, b.tx.rolledBack)
}

func TestWithTransaction_RollbackOnPanic(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}

	assert.Panics(t, func() {
		_ = WithTransaction(context.Background(), b, func(pgx.Tx) error { panic("boom") })
	})
	assert.True(t, b.tx.rolledBack)
}

func TestWithTransaction_CommitFailure(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{commitErr: errors.New("conn lost")}}

	err := WithTransaction(context.Background(), b, func(pgx.Tx) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit")
	assert.True(t, b.tx.rolledBack)
}

func TestWithTransaction_BeginFailure(t *testing.T) {
	b := &fakeBeginner{err: errors.New("pool closed")}

	called := false
	err := WithTransaction(context.Background(), b, func(pgx.Tx) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}
