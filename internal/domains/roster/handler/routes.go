package handler

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes gắn route của roster vào group /api/v1.
// admin là middleware chain cho route cần quyền admin (auth + role).
func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup, admin ...gin.HandlerFunc) {
	v1.POST("/auth/login", h.Login)

	rosterGroup := v1.Group("/roster")
	{
		rosterGroup.GET("", h.GetRoster)
		rosterGroup.GET("/names", h.GetNameIndex)
		rosterGroup.GET("/subclasses", h.GetSubclasses)
		rosterGroup.GET("/export", h.ExportJSON)
		rosterGroup.GET("/export.xlsx", h.ExportXLSX)
	}

	characters := v1.Group("/characters")
	{
		characters.GET("/:index", h.GetCharacter)
		characters.GET("/:index/attacks", h.GetAttacks)
	}

	adminGroup := v1.Group("", admin...)
	{
		adminGroup.POST("/characters", h.CreateCharacter)
		adminGroup.PUT("/characters/:index", h.UpdateCharacter)
		adminGroup.DELETE("/characters/:index", h.DeleteCharacter)
		adminGroup.GET("/roster/changes", h.GetChanges)
		adminGroup.GET("/roster/snapshots/latest", h.GetLatestSnapshot)
		adminGroup.POST("/roster/submit", h.Submit)
	}
}
