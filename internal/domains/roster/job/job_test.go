package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rosterModel "lw-rpg-backend/internal/domains/roster/model"
	"lw-rpg-backend/internal/domains/roster/repository"
)

const validDocument = `[{"name": "A", "health": 1, "subclass": "s", "description": "d",
	"attack": 1, "defense": 1, "will": 1, "speed": 1, "is_flying": false, "attacks": []}]`

type memRepo struct {
	saved   []rosterModel.Snapshot
	keep    int
	saveErr error
}

func (r *memRepo) Save(ctx context.Context, s rosterModel.Snapshot) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, s)
	return nil
}

func (r *memRepo) LoadLatest(ctx context.Context) (*rosterModel.Snapshot, error) {
	return nil, repository.ErrNoSnapshot
}

func (r *memRepo) Prune(ctx context.Context, keep int) (int, error) {
	r.keep = keep
	return 2, nil
}

type captureEnqueuer struct {
	task *asynq.Task
	opts []asynq.Option
}

func (c *captureEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	c.task = task
	c.opts = opts
	return &asynq.TaskInfo{ID: "x"}, nil
}

func testSnapshot(doc string) rosterModel.Snapshot {
	return rosterModel.Snapshot{
		ID:        "7f1c2d3e-0000-4000-8000-000000000001",
		Document:  doc,
		Message:   "Add new character: A",
		Count:     1,
		CreatedAt: time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
	}
}

func TestClient_EnqueueSnapshot(t *testing.T) {
	capture := &captureEnqueuer{}
	c := &Client{client: capture}
	s := testSnapshot(validDocument)

	require.NoError(t, c.EnqueueSnapshot(context.Background(), s))
	require.NotNil(t, capture.task)
	assert.Equal(t, TypePersistSnapshot, capture.task.Type())

	var payload PersistSnapshotPayload
	require.NoError(t, json.Unmarshal(capture.task.Payload(), &payload))
	assert.Equal(t, s.ID, payload.Snapshot.ID)
	assert.Equal(t, s.Document, payload.Snapshot.Document)
	assert.NotEmpty(t, capture.opts)
}

func TestPersistSnapshotHandler(t *testing.T) {
	repo := &memRepo{}
	h := NewPersistSnapshotHandler(repo)

	task, err := NewPersistSnapshotTask(testSnapshot(validDocument))
	require.NoError(t, err)
	require.NoError(t, h.ProcessTask(context.Background(), task))
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "Add new character: A", repo.saved[0].Message)
}

func TestPersistSnapshotHandler_SkipsRetryOnBadInput(t *testing.T) {
	h := NewPersistSnapshotHandler(&memRepo{})

	err := h.ProcessTask(context.Background(), asynq.NewTask(TypePersistSnapshot, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	task, err := NewPersistSnapshotTask(testSnapshot(`[{"invalid": "json structure"}]`))
	require.NoError(t, err)
	err = h.ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestPersistSnapshotHandler_RetriesOnSaveError(t *testing.T) {
	h := NewPersistSnapshotHandler(&memRepo{saveErr: errors.New("db down")})

	task, err := NewPersistSnapshotTask(testSnapshot(validDocument))
	require.NoError(t, err)
	err = h.ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestPruneSnapshotsHandler(t *testing.T) {
	repo := &memRepo{}
	h := NewPruneSnapshotsHandler(repo, 10)

	task, err := NewPruneSnapshotsTask(3)
	require.NoError(t, err)
	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.Equal(t, 3, repo.keep)

	task, err = NewPruneSnapshotsTask(0)
	require.NoError(t, err)
	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.Equal(t, 10, repo.keep)
}
