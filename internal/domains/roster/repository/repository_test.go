package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rosterModel "lw-rpg-backend/internal/domains/roster/model"
)

func snapshotAt(ts time.Time, doc string) rosterModel.Snapshot {
	return rosterModel.Snapshot{
		ID:        uuid.NewString(),
		Document:  doc,
		Title:     "Add New Character: X",
		Message:   "Add new character: X",
		Body:      "## New Character Added",
		Count:     1,
		CreatedAt: ts.UTC(),
	}
}

// ========================================
// FILE
// ========================================

func TestFileRepository(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "lw.json")
	repo := NewFileRepository(path)

	_, err := repo.LoadLatest(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	first := snapshotAt(time.Now(), `[{"name":"A"}]`)
	require.NoError(t, repo.Save(ctx, first))
	second := snapshotAt(time.Now().Add(time.Second), `[{"name":"B"}]`)
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, second.Document, got.Document)
	assert.Equal(t, second.Message, got.Message)

	// document được ghi nguyên dạng, dùng lại được làm seed
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, second.Document, string(raw))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must be cleaned up")

	n, err := repo.Prune(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFileRepository_DocumentWithoutMeta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lw.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	got, err := NewFileRepository(path).LoadLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[]", got.Document)
	assert.Empty(t, got.ID)
}

// ========================================
// POSTGRES
// ========================================

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakeQuerier struct {
	execSQL  []string
	execArgs [][]any
	execTag  pgconn.CommandTag
	execErr  error
	row      pgx.Row
}

func (q *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.execSQL = append(q.execSQL, sql)
	q.execArgs = append(q.execArgs, args)
	return q.execTag, q.execErr
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.row
}

func TestPostgresRepository_Save(t *testing.T) {
	q := &fakeQuerier{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	repo := &PostgresRepository{db: q}
	s := snapshotAt(time.Now(), "[]")

	require.NoError(t, repo.Save(context.Background(), s))
	require.Len(t, q.execSQL, 1)
	assert.Contains(t, q.execSQL[0], "INSERT INTO roster_snapshots")
	assert.Equal(t, []any{s.ID, s.Document, s.Title, s.Message, s.Body, s.Count, s.CreatedAt}, q.execArgs[0])
}

func TestPostgresRepository_SaveError(t *testing.T) {
	q := &fakeQuerier{execErr: errors.New("connection refused")}
	err := (&PostgresRepository{db: q}).Save(context.Background(), snapshotAt(time.Now(), "[]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert snapshot")
}

func TestPostgresRepository_LoadLatest(t *testing.T) {
	want := snapshotAt(time.Now(), `[{"name":"A"}]`)
	q := &fakeQuerier{row: fakeRow{scan: func(dest ...any) error {
		*dest[0].(*string) = want.ID
		*dest[1].(*string) = want.Document
		*dest[2].(*string) = want.Title
		*dest[3].(*string) = want.Message
		*dest[4].(*string) = want.Body
		*dest[5].(*int) = want.Count
		*dest[6].(*time.Time) = want.CreatedAt
		return nil
	}}}

	got, err := (&PostgresRepository{db: q}).LoadLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestPostgresRepository_LoadLatestEmpty(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{scan: func(...any) error { return pgx.ErrNoRows }}}

	_, err := (&PostgresRepository{db: q}).LoadLatest(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestPostgresRepository_Prune(t *testing.T) {
	q := &fakeQuerier{execTag: pgconn.NewCommandTag("DELETE 3")}
	repo := &PostgresRepository{db: q}

	n, err := repo.Prune(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []any{1}, q.execArgs[0], "keep is clamped to at least one")
}

// ========================================
// MINIO
// ========================================

type memObjects struct {
	objects map[string][]byte
	fail    error
}

func newMemObjects() *memObjects {
	return &memObjects{objects: make(map[string][]byte)}
}

func (m *memObjects) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if m.fail != nil {
		return m.fail
	}
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memObjects) Download(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok := m.objects[key]
	return data, ok, nil
}

func (m *memObjects) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memObjects) RemoveObjects(ctx context.Context, keys []string) error {
	for _, k := range keys {
		delete(m.objects, k)
	}
	return nil
}

func TestMinIORepository(t *testing.T) {
	ctx := context.Background()
	objects := newMemObjects()
	repo := NewMinIORepository(objects)

	_, err := repo.LoadLatest(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	var saved []rosterModel.Snapshot
	for i := 0; i < 4; i++ {
		s := snapshotAt(base.Add(time.Duration(i)*time.Minute), "[]")
		require.NoError(t, repo.Save(ctx, s))
		saved = append(saved, s)
	}

	got, err := repo.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved[3].ID, got.ID)

	var stored rosterModel.Snapshot
	require.NoError(t, json.Unmarshal(objects.objects[historyKey(saved[0])], &stored))
	assert.Equal(t, saved[0].ID, stored.ID)

	n, err := repo.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, _ := objects.List(ctx, historyPrefix)
	assert.Equal(t, []string{historyKey(saved[2]), historyKey(saved[3])}, keys)
	assert.Contains(t, objects.objects, latestKey)

	n, err = repo.Prune(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMinIORepository_UploadError(t *testing.T) {
	objects := newMemObjects()
	objects.fail = errors.New("bucket gone")

	err := NewMinIORepository(objects).Save(context.Background(), snapshotAt(time.Now(), "[]"))
	assert.Error(t, err)
	assert.Empty(t, objects.objects)
}

// ========================================
// CACHE
// ========================================

type memCache struct {
	values map[string][]byte
	gets   int
}

func newMemCache() *memCache { return &memCache{values: make(map[string][]byte)} }

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.gets++
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *memCache) Ping(ctx context.Context) error { return nil }

type countingRepo struct {
	Repository
	loads int
}

func (r *countingRepo) LoadLatest(ctx context.Context) (*rosterModel.Snapshot, error) {
	r.loads++
	return r.Repository.LoadLatest(ctx)
}

func TestCachedRepository(t *testing.T) {
	ctx := context.Background()
	inner := &countingRepo{Repository: NewMinIORepository(newMemObjects())}
	c := newMemCache()
	repo := NewCachedRepository(inner, c, time.Minute)

	_, err := repo.LoadLatest(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)
	assert.Equal(t, 1, inner.loads)

	s := snapshotAt(time.Now(), `[{"name":"A"}]`)
	require.NoError(t, repo.Save(ctx, s))

	// Save đã warm cache
	got, err := repo.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, 1, inner.loads)

	// cache miss => đọc từ repository rồi set lại
	require.NoError(t, c.Delete(ctx, latestCacheKey))
	got, err = repo.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Document, got.Document)
	assert.Equal(t, 2, inner.loads)
	assert.Contains(t, c.values, latestCacheKey)
}
