package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	rosterModel "lw-rpg-backend/internal/domains/roster/model"
)

// Task types
const (
	TypePersistSnapshot = "roster:persist_snapshot"
	TypePruneSnapshots  = "roster:prune_snapshots"

	QueueRoster = "roster"
)

// PersistSnapshotPayload mang toàn bộ snapshot (document đã serialize sẵn)
type PersistSnapshotPayload struct {
	Snapshot rosterModel.Snapshot `json:"snapshot"`
}

type PruneSnapshotsPayload struct {
	Keep int `json:"keep"`
}

// taskEnqueuer là phần của *asynq.Client mà Client dùng
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Client implement service.Enqueuer trên asynq
type Client struct {
	client taskEnqueuer
}

func NewClient(client *asynq.Client) *Client {
	return &Client{client: client}
}

func (c *Client) EnqueueSnapshot(ctx context.Context, snapshot rosterModel.Snapshot) error {
	task, err := NewPersistSnapshotTask(snapshot)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueRoster),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
		asynq.TaskID(snapshot.ID), // submit trùng sẽ bị asynq từ chối
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TypePersistSnapshot, err)
	}
	return nil
}

func NewPersistSnapshotTask(snapshot rosterModel.Snapshot) (*asynq.Task, error) {
	payload, err := json.Marshal(PersistSnapshotPayload{Snapshot: snapshot})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TypePersistSnapshot, payload), nil
}

func NewPruneSnapshotsTask(keep int) (*asynq.Task, error) {
	payload, err := json.Marshal(PruneSnapshotsPayload{Keep: keep})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TypePruneSnapshots, payload), nil
}
