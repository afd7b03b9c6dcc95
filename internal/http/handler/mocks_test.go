package handler_test

import (
	"context"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service"
)

type mockPlanService struct {
	providerStatusFn func(ctx context.Context) service.ProviderStatusResult
	dryRunFn         func(ctx context.Context, params service.DryRunParams) (*model.Plan, error)
	planFn           func(ctx context.Context, params service.PlanParams) (*model.PlanResult, error)
	recentFn         func(ctx context.Context, params service.RecentIssuesParams) ([]model.RecentIssue, error)
}

func (m *mockPlanService) ProviderStatus(ctx context.Context) service.ProviderStatusResult {
	if m.providerStatusFn != nil {
		return m.providerStatusFn(ctx)
	}
	return service.ProviderStatusResult{}
}

func (m *mockPlanService) DryRunPlan(ctx context.Context, params service.DryRunParams) (*model.Plan, error) {
	if m.dryRunFn != nil {
		return m.dryRunFn(ctx, params)
	}
	return &model.Plan{}, nil
}

func (m *mockPlanService) PlanAndOpenIssues(ctx context.Context, params service.PlanParams) (*model.PlanResult, error) {
	if m.planFn != nil {
		return m.planFn(ctx, params)
	}
	return &model.PlanResult{}, nil
}

func (m *mockPlanService) RecentIssues(ctx context.Context, params service.RecentIssuesParams) ([]model.RecentIssue, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, params)
	}
	return []model.RecentIssue{}, nil
}

type mockSessionService struct {
	listFn func(ctx context.Context, limit, offset int) ([]model.Session, error)
}

func (m *mockSessionService) List(ctx context.Context, limit, offset int) ([]model.Session, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return []model.Session{}, nil
}
