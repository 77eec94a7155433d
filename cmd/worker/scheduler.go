package main

import (
	"log"

	"lw-rpg-backend/internal/config"
	"lw-rpg-backend/internal/infrastructure/queue"
	"lw-rpg-backend/pkg/container"
)

// asynqScheduler: nil Scheduler khi không có cron job nào được bật
type asynqScheduler struct {
	*queue.Scheduler
}

// setupScheduler đăng ký cron prune snapshot rồi start trong goroutine riêng
func setupScheduler(cfg *config.Config) *asynqScheduler {
	if cfg.Queue.PruneCron == "" {
		log.Println("[Scheduler] No cron jobs configured, skipping")
		return &asynqScheduler{}
	}

	scheduler := queue.NewScheduler(container.RedisConnOpt(cfg.Redis), cfg.Queue)
	if err := scheduler.RegisterJobs(); err != nil {
		log.Fatalf("[Scheduler] Failed to register: %v", err)
	}

	go func() {
		log.Printf("[Scheduler] Starting (prune %q, keep %d)...", cfg.Queue.PruneCron, cfg.Queue.PruneKeep)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("[Scheduler] Failed: %v", err)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	if s.Scheduler == nil {
		return
	}
	log.Println("[Scheduler] Shutting down...")
	s.Scheduler.Shutdown()
	log.Println("[Scheduler] ✓ Stopped")
}
