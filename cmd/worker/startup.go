// cmd/worker/startup.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"lw-rpg-backend/internal/config"
	infraCache "lw-rpg-backend/internal/infrastructure/cache"
	"lw-rpg-backend/pkg/container"
)

// HealthChecker performs startup health checks
type HealthChecker struct {
	redis     *infraCache.RedisClient
	container *container.Container
	server    *http.Server
}

// startServices chạy health check rồi mở health endpoint
func startServices(cfg *config.Config, c *container.Container) (*HealthChecker, error) {
	log.Println("============================================")
	log.Println("🚀 LW-RPG Roster Worker Starting...")
	log.Println("============================================")

	checker := &HealthChecker{
		redis:     infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB),
		container: c,
	}

	if err := checker.checkAll(); err != nil {
		log.Printf("❌ Health check failed: %v\n", err)
		_ = checker.redis.Close()
		return nil, err
	}

	checker.server = &http.Server{
		Addr:              ":" + cfg.Queue.HealthPort,
		Handler:           checker.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("[Health] Starting health check server on :%s", cfg.Queue.HealthPort)
		if err := checker.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[Health] Failed to start: %v\n", err)
		}
	}()

	return checker, nil
}

// checkAll runs all health checks
func (h *HealthChecker) checkAll() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"Redis Connection", h.checkRedis},
		{"Snapshot Storage", h.checkStorage},
	}

	for _, check := range checks {
		log.Printf("⏳ Checking %s...\n", check.name)
		if err := check.fn(); err != nil {
			log.Printf("❌ %s: %v\n", check.name, err)
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		log.Printf("✓ %s: OK\n", check.name)
	}

	return nil
}

func (h *HealthChecker) checkRedis() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return h.redis.Ping(ctx)
}

func (h *HealthChecker) checkStorage() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, healthy := h.container.HealthCheck(ctx); !healthy {
		return fmt.Errorf("storage dependency unhealthy")
	}
	return nil
}

func (h *HealthChecker) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.healthHandler)
	mux.HandleFunc("/ready", h.readyHandler)
	return mux
}

// healthHandler: liveness
func (h *HealthChecker) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "UP", "service": "lw-rpg-worker"})
}

// readyHandler: readiness check, ping lại redis + storage
func (h *HealthChecker) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	services, healthy := h.container.HealthCheck(ctx)
	if err := h.redis.Ping(ctx); err != nil {
		services["queue"] = "unhealthy: " + err.Error()
		healthy = false
	} else {
		services["queue"] = "healthy"
	}

	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "NOT_READY", "services": services})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "READY", "services": services})
}

// Close tắt health server và redis client
func (h *HealthChecker) Close() {
	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.server.Shutdown(ctx)
	}
	_ = h.redis.Close()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
