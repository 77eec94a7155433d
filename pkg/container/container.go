package container

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"lw-rpg-backend/internal/config"
	"lw-rpg-backend/internal/domains/character/model"
	"lw-rpg-backend/internal/domains/roster"
	rosterHandler "lw-rpg-backend/internal/domains/roster/handler"
	"lw-rpg-backend/internal/domains/roster/job"
	rosterRepo "lw-rpg-backend/internal/domains/roster/repository"
	rosterService "lw-rpg-backend/internal/domains/roster/service"
	infraCache "lw-rpg-backend/internal/infrastructure/cache"
	"lw-rpg-backend/internal/infrastructure/database"
	"lw-rpg-backend/internal/infrastructure/storage"
	"lw-rpg-backend/pkg/jwt"
	"lw-rpg-backend/pkg/logger"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa tất cả dependencies của application (root của dependency graph).
// Infrastructure chỉ được khởi tạo khi config thực sự cần tới nó.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config     *config.Config
	DB         *database.PostgresDB     // nil nếu driver != postgres
	Redis      *infraCache.RedisClient  // nil nếu không dùng cache lẫn queue
	MinIO      *storage.MinIOStorage    // nil nếu driver != minio
	Queue      *asynq.Client            // nil nếu submit đồng bộ
	JWTManager *jwt.Manager

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	RosterRepo rosterRepo.Repository

	// ========================================
	// SERVICE LAYER
	// ========================================
	Store         *roster.Store
	RosterService *rosterService.RosterService
	AuthService   *rosterService.AuthService

	// ========================================
	// HANDLER LAYER
	// ========================================
	RosterHandler *rosterHandler.Handler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer build toàn bộ dependency graph cho API server
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewContainerWithConfig(context.Background(), cfg)
}

// NewContainerWithConfig build container từ config có sẵn
func NewContainerWithConfig(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	// ----------------------------------------
	// STEP 1: INFRASTRUCTURE
	// ----------------------------------------
	log.Println("📦 [1/5] Initializing infrastructure...")
	if err := c.initInfrastructure(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	// ----------------------------------------
	// STEP 2: REPOSITORIES
	// ----------------------------------------
	log.Println("📦 [2/5] Initializing repositories...")
	if err := c.initRepositories(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	// ----------------------------------------
	// STEP 3: ROSTER STORE
	// ----------------------------------------
	log.Println("📦 [3/5] Loading roster...")
	store, err := buildStore(ctx, cfg.Roster, c.RosterRepo)
	if err != nil {
		c.Cleanup()
		return nil, err
	}
	c.Store = store
	log.Printf("✅ Roster loaded (%d characters)", store.Count())

	// ----------------------------------------
	// STEP 4: SERVICES
	// ----------------------------------------
	log.Println("📦 [4/5] Initializing services...")
	c.initServices()

	// ----------------------------------------
	// STEP 5: HANDLERS
	// ----------------------------------------
	log.Println("📦 [5/5] Initializing handlers...")
	c.RosterHandler = rosterHandler.NewHandler(c.RosterService, c.AuthService, c.Queue != nil)

	log.Println("✅ Container initialized successfully")
	return c, nil
}

// NewWorkerContainer chỉ build infrastructure + repository (đủ cho asynq worker)
func NewWorkerContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}
	if err := c.initInfrastructure(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initRepositories(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	log.Println("✅ Worker container initialized")
	return c, nil
}

// ========================================
// INITIALIZATION STEPS
// ========================================

func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.Config

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		c.DB = database.NewPostgresDB(cfg.Database)
		if err := c.DB.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		log.Println("✅ PostgreSQL connected")

	case config.DriverMinIO:
		minioStorage, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			return fmt.Errorf("failed to init minio: %w", err)
		}
		c.MinIO = minioStorage
		log.Println("✅ MinIO connected")
	}

	if cfg.Storage.UseCache || cfg.Queue.AsyncSubmit {
		c.Redis = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
		if err := c.Redis.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect redis: %w", err)
		}
		log.Println("✅ Redis connected")
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	return nil
}

func (c *Container) initRepositories(ctx context.Context) error {
	cfg := c.Config

	var repo rosterRepo.Repository
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pg := rosterRepo.NewPostgresRepository(c.DB.Pool)
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate roster_snapshots: %w", err)
		}
		repo = pg
	case config.DriverMinIO:
		repo = rosterRepo.NewMinIORepository(c.MinIO)
	default:
		repo = rosterRepo.NewFileRepository(cfg.Storage.FilePath)
	}

	if cfg.Storage.UseCache && c.Redis != nil {
		repo = rosterRepo.NewCachedRepository(repo, c.Redis, cfg.Storage.CacheTTL)
		log.Println("✅ Snapshot cache enabled")
	}

	c.RosterRepo = repo
	log.Printf("✅ Roster repository: %s", cfg.Storage.Driver)
	return nil
}

func (c *Container) initServices() {
	cfg := c.Config

	opts := []rosterService.Option{
		rosterService.WithLogger(logger.Component("roster")),
	}
	if cfg.Queue.AsyncSubmit {
		c.Queue = asynq.NewClient(RedisConnOpt(cfg.Redis))
		opts = append(opts, rosterService.WithEnqueuer(job.NewClient(c.Queue)))
		log.Println("✅ Async submit enabled")
	}

	c.RosterService = rosterService.NewRosterService(c.Store, c.RosterRepo, opts...)
	c.AuthService = rosterService.NewAuthService(cfg.Admin.PasswordHash, c.JWTManager)
}

// RedisConnOpt dùng chung cho asynq client, server và scheduler
func RedisConnOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// buildStore: snapshot gần nhất (nếu bật restore) > seed file > seed embedded
func buildStore(ctx context.Context, cfg config.RosterConfig, repo rosterRepo.Repository) (*roster.Store, error) {
	opts := []roster.Option{
		roster.WithSchema(model.Schema{Companions: cfg.Companions}),
		roster.WithPendingTracking(cfg.TrackPending),
	}

	if cfg.RestoreLatest && repo != nil {
		snapshot, err := repo.LoadLatest(ctx)
		switch {
		case err == nil:
			store, err := roster.New(snapshot.Document, opts...)
			if err != nil {
				return nil, fmt.Errorf("latest snapshot %s is invalid: %w", snapshot.ID, err)
			}
			log.Printf("✅ Restored roster from snapshot %s", snapshot.ID)
			return store, nil
		case errors.Is(err, rosterRepo.ErrNoSnapshot):
			log.Println("⚠️  No snapshot to restore, falling back to seed")
		default:
			return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
		}
	}

	if cfg.SeedPath != "" {
		data, err := os.ReadFile(cfg.SeedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed %s: %w", cfg.SeedPath, err)
		}
		store, err := roster.New(string(data), opts...)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %s: %w", cfg.SeedPath, err)
		}
		return store, nil
	}

	return roster.NewDefault(opts...), nil
}

// ========================================
// HELPER METHODS
// ========================================

// HealthCheck ping từng dependency đang bật; trả về status theo tên
func (c *Container) HealthCheck(ctx context.Context) (map[string]string, bool) {
	status := map[string]string{}
	healthy := true

	check := func(name string, ping func(context.Context) error) {
		if err := ping(ctx); err != nil {
			status[name] = "unhealthy: " + err.Error()
			healthy = false
			return
		}
		status[name] = "healthy"
	}

	if c.DB != nil {
		check("database", c.DB.Ping)
	}
	if c.Redis != nil {
		check("redis", c.Redis.Ping)
	}
	if c.MinIO != nil {
		check("minio", c.MinIO.HealthCheck)
	}
	return status, healthy
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			log.Printf("⚠️  Failed to close queue client: %v", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
