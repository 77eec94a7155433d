package repository

import (
	"context"
	"encoding/json"
	"fmt"

	rosterModel "lw-rpg-backend/internal/domains/roster/model"
)

const (
	historyPrefix = "rosters/history/"
	latestKey     = "rosters/latest.json"
	jsonType      = "application/json"
)

// objectStore là phần của storage.MinIOStorage mà repository dùng
type objectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
	RemoveObjects(ctx context.Context, keys []string) error
}

// MinIORepository lưu mỗi snapshot thành rosters/history/<time>-<id>.json
// và ghi đè rosters/latest.json
type MinIORepository struct {
	store objectStore
}

func NewMinIORepository(store objectStore) *MinIORepository {
	return &MinIORepository{store: store}
}

// historyKey sort theo thời gian nhờ timestamp cố định độ dài ở đầu
func historyKey(s rosterModel.Snapshot) string {
	return fmt.Sprintf("%s%s-%s.json", historyPrefix, s.CreatedAt.UTC().Format("20060102T150405.000000000Z"), s.ID)
}

func (r *MinIORepository) Save(ctx context.Context, s rosterModel.Snapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.store.Upload(ctx, historyKey(s), raw, jsonType); err != nil {
		return err
	}
	return r.store.Upload(ctx, latestKey, raw, jsonType)
}

func (r *MinIORepository) LoadLatest(ctx context.Context) (*rosterModel.Snapshot, error) {
	raw, found, err := r.store.Download(ctx, latestKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoSnapshot
	}

	s := &rosterModel.Snapshot{}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

func (r *MinIORepository) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	keys, err := r.store.List(ctx, historyPrefix)
	if err != nil {
		return 0, err
	}
	if len(keys) <= keep {
		return 0, nil
	}

	stale := keys[:len(keys)-keep]
	if err := r.store.RemoveObjects(ctx, stale); err != nil {
		return 0, err
	}
	return len(stale), nil
}
