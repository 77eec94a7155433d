package main

import (
	"github.com/hibiken/asynq"

	rosterJob "lw-rpg-backend/internal/domains/roster/job"
	"lw-rpg-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	persistSnapshot *rosterJob.PersistSnapshotHandler
	pruneSnapshots  *rosterJob.PruneSnapshotsHandler
}

// initializeHandlers tạo handler với repository từ container
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		persistSnapshot: rosterJob.NewPersistSnapshotHandler(c.RosterRepo),
		pruneSnapshots:  rosterJob.NewPruneSnapshotsHandler(c.RosterRepo, c.Config.Queue.PruneKeep),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.Handle(rosterJob.TypePersistSnapshot, h.persistSnapshot)
	mux.Handle(rosterJob.TypePruneSnapshots, h.pruneSnapshots)
}
