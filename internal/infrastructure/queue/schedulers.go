package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"lw-rpg-backend/internal/config"
	rosterJob "lw-rpg-backend/internal/domains/roster/job"
	"lw-rpg-backend/pkg/logger"
)

// registrar là phần của *asynq.Scheduler mà Scheduler dùng
type registrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

type Scheduler struct {
	scheduler *asynq.Scheduler
	registrar registrar
	cfg       config.QueueConfig
}

func NewScheduler(redis asynq.RedisConnOpt, cfg config.QueueConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redis,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		registrar: scheduler,
		cfg:       cfg,
	}
}

// RegisterJobs đăng ký các cron job của roster
func (s *Scheduler) RegisterJobs() error {
	return s.registerPruneSnapshotsJob()
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}

// ================================================
// Prune old snapshots (mặc định daily at 4 AM)
// ================================================
func (s *Scheduler) registerPruneSnapshotsJob() error {
	if s.cfg.PruneCron == "" {
		logger.Info("Prune snapshots job disabled", map[string]interface{}{})
		return nil
	}

	task, err := rosterJob.NewPruneSnapshotsTask(s.cfg.PruneKeep)
	if err != nil {
		return err
	}

	_, err = s.registrar.Register(
		s.cfg.PruneCron,
		task,
		asynq.Queue(rosterJob.QueueRoster),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register PruneSnapshots job", err)
		return err
	}

	logger.Info("✓ Registered PruneSnapshots", map[string]interface{}{
		"cron": s.cfg.PruneCron,
		"keep": s.cfg.PruneKeep,
	})
	return nil
}
