package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"lw-rpg-backend/internal/domains/character/model"
	"lw-rpg-backend/internal/domains/roster/repository"
)

// PersistSnapshotHandler ghi snapshot được submit async vào repository
type PersistSnapshotHandler struct {
	repo repository.Repository
}

func NewPersistSnapshotHandler(repo repository.Repository) *PersistSnapshotHandler {
	return &PersistSnapshotHandler{repo: repo}
}

func (h *PersistSnapshotHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload PersistSnapshotPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal PersistSnapshot payload")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	snapshot := payload.Snapshot

	// document hỏng thì retry cũng vô ích
	if _, err := model.Decode(snapshot.Document); err != nil {
		log.Error().Err(err).Str("snapshot_id", snapshot.ID).Msg("Snapshot document is malformed")
		return fmt.Errorf("validate document: %w: %w", err, asynq.SkipRetry)
	}

	if err := h.repo.Save(ctx, snapshot); err != nil {
		log.Error().Err(err).Str("snapshot_id", snapshot.ID).Msg("Failed to persist snapshot")
		return fmt.Errorf("persist snapshot: %w", err)
	}

	log.Info().
		Str("snapshot_id", snapshot.ID).
		Int("count", snapshot.Count).
		Str("message", snapshot.Message).
		Msg("Roster snapshot persisted")
	return nil
}
