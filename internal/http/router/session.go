package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/http/handler"
)

func SessionRouter(rg *gin.RouterGroup, h *handler.SessionHandler) {
	rg.GET("", h.List)
}
