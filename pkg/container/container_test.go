package container

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lw-rpg-backend/internal/config"
	"lw-rpg-backend/internal/domains/roster"
	rosterModel "lw-rpg-backend/internal/domains/roster/model"
	rosterRepo "lw-rpg-backend/internal/domains/roster/repository"
)

const seedJSON = `[{
	"name": "Seeded",
	"health": 10,
	"subclass": "Scout",
	"description": "from file",
	"attack": 1,
	"defense": 2,
	"will": 3,
	"speed": 4,
	"is_flying": true,
	"attacks": ["Poke - 1 - within 1 pace"]
}]`

type stubRepo struct {
	latest *rosterModel.Snapshot
	err    error
}

func (r stubRepo) Save(ctx context.Context, s rosterModel.Snapshot) error { return nil }

func (r stubRepo) LoadLatest(ctx context.Context) (*rosterModel.Snapshot, error) {
	return r.latest, r.err
}

func (r stubRepo) Prune(ctx context.Context, keep int) (int, error) { return 0, nil }

func TestBuildStore_EmbeddedSeed(t *testing.T) {
	store, err := buildStore(context.Background(), config.RosterConfig{Companions: true, TrackPending: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, roster.NewDefault().Count(), store.Count())
}

func TestBuildStore_SeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o644))

	store, err := buildStore(context.Background(), config.RosterConfig{SeedPath: path}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, store.Count())
	assert.Equal(t, "Seeded", store.Name(0))
}

func TestBuildStore_SeedErrors(t *testing.T) {
	_, err := buildStore(context.Background(), config.RosterConfig{SeedPath: filepath.Join(t.TempDir(), "missing.json")}, nil)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644))
	_, err = buildStore(context.Background(), config.RosterConfig{SeedPath: path}, nil)
	assert.Error(t, err)
}

func TestBuildStore_RestoreLatest(t *testing.T) {
	cfg := config.RosterConfig{RestoreLatest: true}

	repo := stubRepo{latest: &rosterModel.Snapshot{ID: "s1", Document: seedJSON, CreatedAt: time.Now()}}
	store, err := buildStore(context.Background(), cfg, repo)
	require.NoError(t, err)
	assert.Equal(t, "Seeded", store.Name(0))

	store, err = buildStore(context.Background(), cfg, stubRepo{err: rosterRepo.ErrNoSnapshot})
	require.NoError(t, err)
	assert.Equal(t, roster.NewDefault().Count(), store.Count())

	_, err = buildStore(context.Background(), cfg, stubRepo{err: errors.New("db down")})
	assert.Error(t, err)

	_, err = buildStore(context.Background(), cfg, stubRepo{latest: &rosterModel.Snapshot{ID: "bad", Document: "nope"}})
	assert.Error(t, err)
}

func TestNewContainerWithConfig_FileDriver(t *testing.T) {
	cfg := &config.Config{
		Roster:  config.RosterConfig{Companions: true, TrackPending: true},
		Storage: config.StorageConfig{Driver: config.DriverFile, FilePath: filepath.Join(t.TempDir(), "lw.json")},
		JWT:     config.JWTConfig{Secret: "test-secret", AccessTokenExpiry: 5},
	}

	c, err := NewContainerWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Cleanup()

	assert.IsType(t, &rosterRepo.FileRepository{}, c.RosterRepo)
	assert.NotNil(t, c.RosterService)
	assert.NotNil(t, c.AuthService)
	assert.NotNil(t, c.RosterHandler)
	assert.Nil(t, c.DB)
	assert.Nil(t, c.Redis)
	assert.Nil(t, c.Queue)

	status, healthy := c.HealthCheck(context.Background())
	assert.True(t, healthy)
	assert.Empty(t, status)
}

func TestRedisConnOpt(t *testing.T) {
	opt := RedisConnOpt(config.RedisConfig{Host: "redis:6379", Password: "pw", DB: 2})
	assert.Equal(t, "redis:6379", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 2, opt.DB)
}
