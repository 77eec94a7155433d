package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	rosterModel "lw-rpg-backend/internal/domains/roster/model"
	"lw-rpg-backend/pkg/database"
)

// querier là phần của *pgxpool.Pool mà repository dùng
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	pool *pgxpool.Pool
	db   querier
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool, db: pool}
}

const (
	createSnapshotsTable = `
		CREATE TABLE IF NOT EXISTS roster_snapshots (
			id           UUID PRIMARY KEY,
			document     TEXT NOT NULL,
			title        TEXT NOT NULL,
			message      TEXT NOT NULL,
			body         TEXT NOT NULL,
			record_count INTEGER NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	createSnapshotsIndex = `
		CREATE INDEX IF NOT EXISTS idx_roster_snapshots_created_at
		ON roster_snapshots (created_at DESC)`

	insertSnapshot = `
		INSERT INTO roster_snapshots (id, document, title, message, body, record_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	selectLatestSnapshot = `
		SELECT id, document, title, message, body, record_count, created_at
		FROM roster_snapshots
		ORDER BY created_at DESC
		LIMIT 1`

	pruneSnapshots = `
		DELETE FROM roster_snapshots
		WHERE id NOT IN (
			SELECT id FROM roster_snapshots ORDER BY created_at DESC LIMIT $1
		)`
)

// Migrate tạo bảng roster_snapshots nếu chưa có
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, createSnapshotsTable); err != nil {
			return fmt.Errorf("create roster_snapshots: %w", err)
		}
		if _, err := tx.Exec(ctx, createSnapshotsIndex); err != nil {
			return fmt.Errorf("create roster_snapshots index: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) Save(ctx context.Context, s rosterModel.Snapshot) error {
	_, err := r.db.Exec(ctx, insertSnapshot,
		s.ID, s.Document, s.Title, s.Message, s.Body, s.Count, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (r *PostgresRepository) LoadLatest(ctx context.Context) (*rosterModel.Snapshot, error) {
	s := &rosterModel.Snapshot{}
	err := r.db.QueryRow(ctx, selectLatestSnapshot).Scan(
		&s.ID, &s.Document, &s.Title, &s.Message, &s.Body, &s.Count, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("select latest snapshot: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	tag, err := r.db.Exec(ctx, pruneSnapshots, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
