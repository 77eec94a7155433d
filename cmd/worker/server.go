package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	"lw-rpg-backend/internal/config"
	rosterJob "lw-rpg-backend/internal/domains/roster/job"
	"lw-rpg-backend/pkg/container"
)

// asynqServer wraps asynq.Server with additional functionality
type asynqServer struct {
	*asynq.Server
}

// setupAsynqServer creates and configures the Asynq server
func setupAsynqServer(cfg *config.Config, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		container.RedisConnOpt(cfg.Redis),
		asynq.Config{
			Queues: map[string]int{
				rosterJob.QueueRoster: 10,
				"default":             5,
			},
			Concurrency: cfg.Queue.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq] ❌ Task failed - Type: %s, Error: %v", task.Type(), err)
			}),
		},
	)

	go func() {
		log.Println("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[Worker] Failed: %v", err)
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown chờ task đang chạy xong (asynq dùng ShutdownTimeout, mặc định 8s)
func (s *asynqServer) Shutdown() {
	log.Println("[Worker] Shutting down...")
	s.Server.Shutdown()
	log.Println("[Worker] ✓ Gracefully stopped")
}
