package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/http/handler"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service"
)

type RouterConfig struct {
	PlanTimeout time.Duration
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		planHandler := handler.NewPlanHandler(services.Planner(), cfg.PlanTimeout)
		ProviderRouter(v1.Group("/providers"), planHandler)
		PlanRouter(v1.Group("/plans"), planHandler)
		RepoRouter(v1.Group("/repos"), planHandler)

		sessionHandler := handler.NewSessionHandler(services.Sessions())
		SessionRouter(v1.Group("/sessions"), sessionHandler)
	}
}
