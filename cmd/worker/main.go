// cmd/worker/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"lw-rpg-backend/internal/config"
	"lw-rpg-backend/pkg/container"
	"lw-rpg-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Config] %v", err)
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)

	// Initialize container (infrastructure + repository)
	c, err := container.NewWorkerContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("[Container] Failed to initialize: %v", err)
	}
	defer c.Cleanup()

	// Initialize handlers
	handlers := initializeHandlers(c)

	// Perform health checks before consuming
	health, err := startServices(cfg, c)
	if err != nil {
		log.Fatalf("[Startup] Health check failed: %v", err)
	}
	defer health.Close()

	// Setup Asynq server + scheduler
	srv := setupAsynqServer(cfg, handlers)
	scheduler := setupScheduler(cfg)

	// Wait for shutdown signal
	waitForShutdown(srv, scheduler)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("[Shutdown] Gracefully stopping...")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Println("[Shutdown] ✓ Stopped")
}
