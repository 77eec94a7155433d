package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	rosterModel "lw-rpg-backend/internal/domains/roster/model"
)

// FileRepository ghi document ra file (dùng lại được làm ROSTER_SEED_PATH)
// và metadata vào file "<path>.meta.json" cạnh nó. Chỉ giữ bản mới nhất.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) metaPath() string {
	return r.path + ".meta.json"
}

func (r *FileRepository) Save(ctx context.Context, snapshot rosterModel.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	meta := snapshot
	meta.Document = ""
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot meta: %w", err)
	}

	// meta trước, document sau: LoadLatest dựa vào document để biết có snapshot
	if err := writeAtomic(r.metaPath(), raw); err != nil {
		return err
	}
	return writeAtomic(r.path, []byte(snapshot.Document))
}

func (r *FileRepository) LoadLatest(ctx context.Context) (*rosterModel.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	snapshot := &rosterModel.Snapshot{}
	raw, err := os.ReadFile(r.metaPath())
	switch {
	case errors.Is(err, os.ErrNotExist):
		// file được đặt tay (seed), không có metadata
	case err != nil:
		return nil, fmt.Errorf("read snapshot meta: %w", err)
	default:
		if err := json.Unmarshal(raw, snapshot); err != nil {
			return nil, fmt.Errorf("decode snapshot meta: %w", err)
		}
	}

	snapshot.Document = string(doc)
	return snapshot, nil
}

// Prune: file driver chỉ giữ một bản, không có gì để xóa
func (r *FileRepository) Prune(ctx context.Context, keep int) (int, error) {
	return 0, ctx.Err()
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
