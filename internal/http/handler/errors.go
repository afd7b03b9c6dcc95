package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/domain"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/http/dto"
)

// statusFor maps pipeline failures onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProviderNotConfigured),
		errors.Is(err, domain.ErrTrackerNotConfigured):
		return http.StatusPreconditionFailed
	case errors.Is(err, domain.ErrRepoInaccessible):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrProviderRequestFailed),
		errors.Is(err, domain.ErrProviderResponseInvalid),
		errors.Is(err, domain.ErrTrackerRequestFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	stage := domain.StageOf(err)

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), msg, "error", err, "stage", stage, "status", status)
	} else {
		slog.WarnContext(c.Request.Context(), msg, "error", err, "stage", stage, "status", status)
	}

	c.JSON(status, dto.ErrorResponse{Error: err.Error(), Stage: string(stage)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Stage: string(domain.StageValidation)})
}
