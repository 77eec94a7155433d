package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lw-rpg-backend/internal/config"
	"lw-rpg-backend/internal/domains/roster"
	rosterJob "lw-rpg-backend/internal/domains/roster/job"
	rosterModel "lw-rpg-backend/internal/domains/roster/model"
	"lw-rpg-backend/pkg/container"
)

func newWorkerContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverFile, FilePath: filepath.Join(t.TempDir(), "lw.json")},
		JWT:     config.JWTConfig{Secret: "worker-secret", AccessTokenExpiry: 5},
		Queue:   config.QueueConfig{PruneKeep: 3},
	}
	c, err := container.NewWorkerContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(c.Cleanup)
	return c
}

func TestHandlerRegistry_PersistSnapshot(t *testing.T) {
	c := newWorkerContainer(t)
	mux := asynq.NewServeMux()
	initializeHandlers(c).RegisterHandlers(mux)

	snapshot := rosterModel.Snapshot{
		ID:        "snap-1",
		Document:  roster.SeedDocument(),
		Message:   "Update roster: 2 changes",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	task, err := rosterJob.NewPersistSnapshotTask(snapshot)
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))

	latest, err := c.RosterRepo.LoadLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "snap-1", latest.ID)
	assert.Equal(t, snapshot.Document, latest.Document)
}

func TestHandlerRegistry_PruneSnapshots(t *testing.T) {
	c := newWorkerContainer(t)
	mux := asynq.NewServeMux()
	initializeHandlers(c).RegisterHandlers(mux)

	task, err := rosterJob.NewPruneSnapshotsTask(0)
	require.NoError(t, err)
	assert.NoError(t, mux.ProcessTask(context.Background(), task))
}

func TestHealthHandler(t *testing.T) {
	h := &HealthChecker{container: newWorkerContainer(t)}

	w := httptest.NewRecorder()
	h.routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "UP", body["status"])
}

func TestCheckStorage(t *testing.T) {
	h := &HealthChecker{container: newWorkerContainer(t)}
	assert.NoError(t, h.checkStorage())
}

func TestSetupScheduler_Disabled(t *testing.T) {
	s := setupScheduler(&config.Config{Queue: config.QueueConfig{}})
	assert.Nil(t, s.Scheduler)
	assert.NotPanics(t, s.Shutdown)
}
