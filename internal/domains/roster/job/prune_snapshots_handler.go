package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"lw-rpg-backend/internal/domains/roster/repository"
)

// PruneSnapshotsHandler xóa snapshot cũ, giữ lại Keep bản mới nhất
type PruneSnapshotsHandler struct {
	repo        repository.Repository
	defaultKeep int
}

func NewPruneSnapshotsHandler(repo repository.Repository, defaultKeep int) *PruneSnapshotsHandler {
	return &PruneSnapshotsHandler{repo: repo, defaultKeep: defaultKeep}
}

func (h *PruneSnapshotsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload PruneSnapshotsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	keep := payload.Keep
	if keep <= 0 {
		keep = h.defaultKeep
	}

	removed, err := h.repo.Prune(ctx, keep)
	if err != nil {
		log.Error().Err(err).Int("keep", keep).Msg("Failed to prune snapshots")
		return fmt.Errorf("prune snapshots: %w", err)
	}

	log.Info().Int("keep", keep).Int("removed", removed).Msg("Roster snapshots pruned")
	return nil
}
