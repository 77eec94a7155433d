package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lw-rpg-backend/internal/shared/response"
	"lw-rpg-backend/pkg/jwt"
)

// AdminMiddleware checks if user has admin role (chạy sau AuthMiddleware)
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextRole)
		if !ok || role != jwt.RoleAdmin {
			response.AbortWithError(c, http.StatusForbidden, response.CodeForbidden, "Access denied: admin role required")
			return
		}

		c.Next()
	}
}
