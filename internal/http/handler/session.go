package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/http/dto"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service"
)

type SessionHandler struct {
	sessions service.SessionService
}

func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.SessionHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	sessions, err := h.sessions.List(ctx, query.Limit, query.Offset)
	if err != nil {
		if errors.Is(err, service.ErrHistoryUnavailable) {
			c.JSON(http.StatusNotImplemented, dto.ErrorResponse{Error: err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to list sessions", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to list sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": dto.ToSessionResponses(sessions)})
}
