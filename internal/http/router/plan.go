package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/http/handler"
)

func ProviderRouter(rg *gin.RouterGroup, h *handler.PlanHandler) {
	rg.GET("/status", h.ProviderStatus)
}

func PlanRouter(rg *gin.RouterGroup, h *handler.PlanHandler) {
	rg.POST("", h.Create)
	rg.POST("/dry-run", h.DryRun)
}

func RepoRouter(rg *gin.RouterGroup, h *handler.PlanHandler) {
	rg.GET("/:owner/:name/issues", h.RecentIssues)
}
