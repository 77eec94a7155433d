package repository

import (
	"context"
	"errors"

	rosterModel "lw-rpg-backend/internal/domains/roster/model"
)

// ErrNoSnapshot: chưa có snapshot nào được lưu
var ErrNoSnapshot = errors.New("no roster snapshot stored")

// Repository lưu các snapshot đã submit của roster.
// Store không biết gì về persistence; service là nơi duy nhất gọi Repository.
type Repository interface {
	Save(ctx context.Context, snapshot rosterModel.Snapshot) error
	// LoadLatest trả về ErrNoSnapshot nếu chưa có
	LoadLatest(ctx context.Context) (*rosterModel.Snapshot, error)
	// Prune giữ lại keep snapshot mới nhất, trả về số snapshot đã xóa
	Prune(ctx context.Context, keep int) (int, error)
}
