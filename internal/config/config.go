package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/robfig/cron/v3"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables (.env được cmd load qua godotenv)
type Config struct {
	App      AppConfig
	Roster   RosterConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	MinIO    MinIOConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Queue    QueueConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
}

// RosterConfig điều khiển cách store được construct
type RosterConfig struct {
	SeedPath      string // rỗng => dùng seed embedded
	Companions    bool   // bật field companions trong record schema
	TrackPending  bool
	RestoreLatest bool // khởi động từ snapshot đã submit gần nhất (nếu có)
}

// Storage drivers
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMinIO    = "minio"
)

type StorageConfig struct {
	Driver   string // file, postgres, minio
	FilePath string // dùng cho driver file
	CacheTTL time.Duration
	UseCache bool // bọc repository bằng redis cache
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Database          string
	SSLMode           string
	MaxConns          int
	MinConns          int
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	ConnectTimeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool // false cho local
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

// AdminConfig: bcrypt hash của admin password (tạo bằng `rosterctl hash-password`)
type AdminConfig struct {
	PasswordHash string
}

type QueueConfig struct {
	AsyncSubmit bool // true => submit đẩy task vào asynq thay vì persist trực tiếp
	Concurrency int
	PruneCron   string // rỗng => không đăng ký job prune
	PruneKeep   int
	HealthPort  string // health endpoint của worker
}

const defaultJWTSecret = "your-secret-key-change-in-production"

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "LW-RPG Roster API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Roster: RosterConfig{
			SeedPath:      getEnv("ROSTER_SEED_PATH", ""),
			Companions:    getEnvBool("ROSTER_COMPANIONS", true),
			TrackPending:  getEnvBool("ROSTER_TRACK_PENDING", true),
			RestoreLatest: getEnvBool("ROSTER_RESTORE_LATEST", false),
		},
		Storage: StorageConfig{
			Driver:   strings.ToLower(getEnv("STORAGE_DRIVER", DriverFile)),
			FilePath: getEnv("STORAGE_FILE_PATH", "data/lw.json"),
			CacheTTL: getEnvDuration("STORAGE_CACHE_TTL", 5*time.Minute),
			UseCache: getEnvBool("STORAGE_USE_CACHE", false),
		},
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Database:          getEnv("DB_NAME", "lw_rpg"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          getEnvInt("DB_MAX_CONNS", 10),
			MinConns:          getEnvInt("DB_MIN_CONNS", 2),
			MaxConnLifetime:   getEnvDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvDuration("DB_MAX_CONN_IDLE_TIME", time.Minute),
			HealthCheckPeriod: getEnvDuration("DB_HEALTH_CHECK_PERIOD", time.Minute),
			MaxRetries:        getEnvInt("DB_MAX_RETRIES", 5),
			RetryDelay:        getEnvDuration("DB_RETRY_DELAY", time.Second),
			ConnectTimeout:    getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "lw-rpg"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 60),
		},
		Admin: AdminConfig{
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Queue: QueueConfig{
			AsyncSubmit: getEnvBool("QUEUE_ASYNC_SUBMIT", false),
			Concurrency: getEnvInt("QUEUE_CONCURRENCY", 5),
			PruneCron:   getEnv("QUEUE_PRUNE_CRON", "0 4 * * *"),
			PruneKeep:   getEnvInt("QUEUE_PRUNE_KEEP", 20),
			HealthPort:  getEnv("WORKER_HEALTH_PORT", "9999"),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c.App,
		validation.Field(&c.App.Port, validation.Required),
		validation.Field(&c.App.LogLevel, validation.In("trace", "debug", "info", "warn", "error")),
	); err != nil {
		return fmt.Errorf("app: %w", err)
	}

	if err := validation.ValidateStruct(&c.Storage,
		validation.Field(&c.Storage.Driver, validation.Required, validation.In(DriverFile, DriverPostgres, DriverMinIO)),
		validation.Field(&c.Storage.FilePath, validation.When(c.Storage.Driver == DriverFile, validation.Required)),
	); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	if err := validation.ValidateStruct(&c.JWT,
		validation.Field(&c.JWT.Secret, validation.Required),
		validation.Field(&c.JWT.AccessTokenExpiry, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	if err := validation.ValidateStruct(&c.Queue,
		validation.Field(&c.Queue.Concurrency, validation.Min(1)),
		validation.Field(&c.Queue.PruneKeep, validation.Min(1)),
		validation.Field(&c.Queue.PruneCron, validation.By(validCronSpec)),
	); err != nil {
		return fmt.Errorf("queue: %w", err)
	}

	// Production environment phải có JWT secret và admin password
	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Admin.PasswordHash == "" {
			return fmt.Errorf("ADMIN_PASSWORD_HASH must be set in production")
		}
		if c.Storage.Driver == DriverPostgres && c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	return nil
}

// validCronSpec: cron 5 field giống asynq scheduler; rỗng = tắt job
func validCronSpec(value interface{}) error {
	spec, _ := value.(string)
	if spec == "" {
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q", spec)
	}
	return nil
}

// IsDevelopment dùng cho logger/gin mode
func (c AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
