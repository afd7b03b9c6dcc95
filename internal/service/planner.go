package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/common/id"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/common/logger"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/core/config"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/domain"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/provider"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service/issue_tracker"
)

// ProviderRegistry resolves provider identities to adapters.
type ProviderRegistry interface {
	Resolve(id model.ProviderID) (provider.Planner, error)
	ListAvailability() []model.ProviderStatus
}

type DryRunParams struct {
	Transcript    string
	Provider      model.ProviderID
	Repo          model.Repository
	BranchContext string
}

type PlanParams struct {
	Transcript string
	Provider   model.ProviderID
	Repo       model.Repository
	// Verbosity is passed through for narration; the pipeline itself ignores it.
	Verbosity string
	// DefaultLabels are appended to every draft. nil means use the configured defaults.
	DefaultLabels []string
	BranchContext string
}

type RecentIssuesParams struct {
	Repo  model.Repository
	Since *time.Time
	Limit int
}

type ProviderStatusResult struct {
	Providers []model.ProviderStatus
	Tracker   TrackerStatus
}

type TrackerStatus struct {
	ID           string
	IsConfigured bool
}

type PlanService interface {
	ProviderStatus(ctx context.Context) ProviderStatusResult
	DryRunPlan(ctx context.Context, params DryRunParams) (*model.Plan, error)
	PlanAndOpenIssues(ctx context.Context, params PlanParams) (*model.PlanResult, error)
	RecentIssues(ctx context.Context, params RecentIssuesParams) ([]model.RecentIssue, error)
}

type planService struct {
	registry ProviderRegistry
	tracker  issue_tracker.IssueTrackerService
	recorder OutcomeRecorder
	defaults config.DefaultsConfig
}

// NewPlanService wires the pipeline. recorder may be nil.
func NewPlanService(
	registry ProviderRegistry,
	tracker issue_tracker.IssueTrackerService,
	recorder OutcomeRecorder,
	defaults config.DefaultsConfig,
) PlanService {
	return &planService{
		registry: registry,
		tracker:  tracker,
		recorder: recorder,
		defaults: defaults,
	}
}

func (s *planService) ProviderStatus(ctx context.Context) ProviderStatusResult {
	return ProviderStatusResult{
		Providers: s.registry.ListAvailability(),
		Tracker: TrackerStatus{
			ID:           s.tracker.Name(),
			IsConfigured: s.tracker.IsConfigured(),
		},
	}
}

func (s *planService) DryRunPlan(ctx context.Context, params DryRunParams) (*model.Plan, error) {
	providerID := s.providerOrDefault(params.Provider)
	repo := s.repoOrDefault(params.Repo)
	ctx = withRequestFields(ctx, providerID, repo)

	planner, err := s.configuredProvider(providerID)
	if err != nil {
		return nil, err
	}

	plan, err := planner.PlanIssues(ctx, params.Transcript, repo, params.BranchContext)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "dry run plan generated", "issues", len(plan.Issues))
	return plan, nil
}

// PlanAndOpenIssues checks provider, tracker and repository access before the model is called,
// so a request that cannot complete never spends a generation.
func (s *planService) PlanAndOpenIssues(ctx context.Context, params PlanParams) (*model.PlanResult, error) {
	providerID := s.providerOrDefault(params.Provider)
	repo := s.repoOrDefault(params.Repo)
	sessionID := id.New()
	ctx = withRequestFields(ctx, providerID, repo)
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: logger.Ptr(sessionID)})

	planner, err := s.configuredProvider(providerID)
	if err != nil {
		return nil, err
	}

	if !s.tracker.IsConfigured() {
		return nil, fmt.Errorf("%w: %s", domain.ErrTrackerNotConfigured, s.tracker.Name())
	}

	if !s.tracker.ValidateRepoAccess(ctx, repo) {
		if err := ctx.Err(); err != nil {
			return nil, &domain.StageError{
				Stage: domain.StageAccess,
				Err:   fmt.Errorf("validating repository access: %w", err),
			}
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrRepoInaccessible, repo)
	}

	plan, err := planner.PlanIssues(ctx, params.Transcript, repo, params.BranchContext)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, &domain.StageError{
			Stage: domain.StageTracker,
			Err:   fmt.Errorf("request cancelled before issue creation: %w", err),
		}
	}

	labels := params.DefaultLabels
	if labels == nil {
		labels = s.defaults.Labels
	}
	mergeLabels(plan, labels)

	created := s.tracker.CreateIssues(ctx, repo, plan.Issues)

	result := &model.PlanResult{
		SessionID:            sessionID,
		PlanSummary:          plan.Summary,
		Rationale:            plan.Rationale,
		CreatedIssues:        created.Created,
		FailedIssues:         created.Failed,
		TotalIssuesCreated:   len(created.Created),
		TotalIssuesRequested: len(plan.Issues),
	}

	if result.TotalIssuesCreated < result.TotalIssuesRequested {
		slog.WarnContext(ctx, "plan partially applied",
			"created", result.TotalIssuesCreated,
			"requested", result.TotalIssuesRequested)
	} else {
		slog.InfoContext(ctx, "plan applied", "created", result.TotalIssuesCreated)
	}

	s.record(ctx, model.PlanOutcome{
		SessionID:     sessionID,
		Transcript:    params.Transcript,
		Provider:      providerID,
		Repo:          repo,
		Plan:          *plan,
		CreatedIssues: created.Created,
		RecordedAt:    time.Now().UTC(),
	})

	return result, nil
}

func (s *planService) RecentIssues(ctx context.Context, params RecentIssuesParams) ([]model.RecentIssue, error) {
	repo := s.repoOrDefault(params.Repo)
	if !s.tracker.IsConfigured() {
		return nil, fmt.Errorf("%w: %s", domain.ErrTrackerNotConfigured, s.tracker.Name())
	}
	return s.tracker.GetRecentIssues(ctx, repo, params.Since, issue_tracker.ClampLimit(params.Limit))
}

func (s *planService) configuredProvider(providerID model.ProviderID) (provider.Planner, error) {
	planner, err := s.registry.Resolve(providerID)
	if err != nil {
		return nil, err
	}
	if !planner.IsConfigured() {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotConfigured, providerID)
	}
	return planner, nil
}

// record hands the outcome to the recording hook. Issues already exist remotely,
// so a recording failure is logged rather than failing the request.
func (s *planService) record(ctx context.Context, outcome model.PlanOutcome) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordOutcome(context.WithoutCancel(ctx), outcome); err != nil {
		slog.ErrorContext(ctx, "failed to record plan outcome", "error", err)
	}
}

func (s *planService) providerOrDefault(p model.ProviderID) model.ProviderID {
	if p == "" {
		return model.ProviderID(s.defaults.Provider)
	}
	return p
}

func (s *planService) repoOrDefault(r model.Repository) model.Repository {
	if r.Owner == "" && r.Name == "" {
		return model.Repository{Owner: s.defaults.RepoOwner, Name: s.defaults.RepoName}
	}
	return r
}

// mergeLabels appends labels to every draft. Duplicates are kept on purpose:
// a caller may force a label the provider already suggested.
func mergeLabels(plan *model.Plan, labels []string) {
	if len(labels) == 0 {
		return
	}
	for i := range plan.Issues {
		merged := make([]string, 0, len(plan.Issues[i].Labels)+len(labels))
		merged = append(merged, plan.Issues[i].Labels...)
		merged = append(merged, labels...)
		plan.Issues[i].Labels = merged
	}
}

func withRequestFields(ctx context.Context, providerID model.ProviderID, repo model.Repository) context.Context {
	return logger.WithLogFields(ctx, logger.LogFields{
		Provider:  logger.Ptr(string(providerID)),
		Repo:      logger.Ptr(repo.String()),
		Component: "voiceplan.service.planner",
	})
}
