package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/common/logger"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/http/dto"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service"
)

type PlanHandler struct {
	planner service.PlanService
	timeout time.Duration
}

// NewPlanHandler bounds every generation request by timeout; zero disables the bound.
func NewPlanHandler(planner service.PlanService, timeout time.Duration) *PlanHandler {
	return &PlanHandler{planner: planner, timeout: timeout}
}

func (h *PlanHandler) ProviderStatus(c *gin.Context) {
	status := h.planner.ProviderStatus(c.Request.Context())

	resp := dto.ProviderStatusResponse{
		Providers: make([]dto.AvailabilityResponse, 0, len(status.Providers)),
		Tracker: dto.AvailabilityResponse{
			ID:           status.Tracker.ID,
			IsConfigured: status.Tracker.IsConfigured,
		},
	}
	for _, p := range status.Providers {
		resp.Providers = append(resp.Providers, dto.AvailabilityResponse{
			ID:           string(p.ID),
			IsConfigured: p.IsConfigured,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PlanHandler) DryRun(c *gin.Context) {
	var req dto.DryRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	plan, err := h.planner.DryRunPlan(ctx, service.DryRunParams{
		Transcript:    req.Transcript,
		Provider:      model.ProviderID(req.Model),
		Repo:          toRepository(req.Repo),
		BranchContext: req.BranchContext,
	})
	if err != nil {
		writeError(c, "dry run failed", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDryRunResponse(plan))
}

func (h *PlanHandler) Create(c *gin.Context) {
	var req dto.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Labels.Null {
		badRequest(c, dto.ErrNullLabels)
		return
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	result, err := h.planner.PlanAndOpenIssues(ctx, service.PlanParams{
		Transcript:    req.Transcript,
		Provider:      model.ProviderID(req.Model),
		Repo:          toRepository(req.Repo),
		Verbosity:     req.Verbosity,
		DefaultLabels: req.Labels.Values,
		BranchContext: req.BranchContext,
	})
	if err != nil {
		writeError(c, "plan and create failed", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPlanResponse(result))
}

func (h *PlanHandler) RecentIssues(c *gin.Context) {
	var query dto.RecentIssuesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	var since *time.Time
	if query.Since != "" {
		t, err := time.Parse(time.RFC3339, query.Since)
		if err != nil {
			badRequest(c, fmt.Errorf("since must be an RFC3339 timestamp: %w", err))
			return
		}
		since = &t
	}

	repo := model.Repository{Owner: c.Param("owner"), Name: c.Param("name")}
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{Repo: logger.Ptr(repo.String())})

	issues, err := h.planner.RecentIssues(ctx, service.RecentIssuesParams{
		Repo:  repo,
		Since: since,
		Limit: query.Limit,
	})
	if err != nil {
		writeError(c, "listing recent issues failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": dto.ToRecentIssueResponses(issues)})
}

func (h *PlanHandler) withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func toRepository(ref *dto.RepoRef) model.Repository {
	if ref == nil {
		return model.Repository{}
	}
	return model.Repository{Owner: ref.Owner, Name: ref.Name}
}
