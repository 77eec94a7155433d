package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lw-rpg-backend/internal/shared/middleware"
	"lw-rpg-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		c.RosterHandler.RegisterRoutes(v1,
			middleware.AuthMiddleware(c.JWTManager),
			middleware.AdminMiddleware(),
		)
	}

	return router
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		services, healthy := appCtx.HealthCheck(ctx)

		status, statusCode := "ok", http.StatusOK
		if !healthy {
			status, statusCode = "degraded", http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"storage":   appCtx.Config.Storage.Driver,
			"services":  services,
		})
	}
}
