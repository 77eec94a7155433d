package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"lw-rpg-backend/internal/shared/response"
	"lw-rpg-backend/pkg/jwt"
)

// Context keys do AuthMiddleware set
const (
	ContextSubject = "subject"
	ContextRole    = "role"
)

// AuthMiddleware - Middleware xác thực JWT token
func AuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Lấy token từ Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		// 2. Extract token từ "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		// 3. Verify và parse JWT
		claims, err := manager.ValidateAccessToken(parts[1])
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString(ContextRequestID)).Msg("rejected token")
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}
