package issue_tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/common/logger"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/core/config"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/domain"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100

	defaultCreateConcurrency = 3
)

// CreateResult separates created issues from drafts the tracker rejected.
// Both slices keep the relative input order.
type CreateResult struct {
	Created []model.CreatedIssue
	Failed  []model.FailedIssue
}

// IssueTrackerService is the gateway to the remote issue tracker.
type IssueTrackerService interface {
	Name() string
	IsConfigured() bool
	// ValidateRepoAccess reports false for any failure: missing repository, no access or network error.
	ValidateRepoAccess(ctx context.Context, repo model.Repository) bool
	// CreateIssues never fails as a whole; rejected drafts end up in CreateResult.Failed.
	CreateIssues(ctx context.Context, repo model.Repository, drafts []model.IssueDraft) *CreateResult
	GetRecentIssues(ctx context.Context, repo model.Repository, since *time.Time, limit int) ([]model.RecentIssue, error)
}

// New builds the gateway for cfg.Provider. Without a token the gateway reports itself unconfigured.
func New(cfg config.TrackerConfig) (IssueTrackerService, error) {
	switch cfg.Provider {
	case config.TrackerGitHub, "":
		return NewGitHubIssueTrackerService(cfg.GitHubToken, cfg.GitHubBaseURL, cfg.CreateConcurrency)
	case config.TrackerGitLab:
		return NewGitLabIssueTrackerService(cfg.GitLabToken, cfg.GitLabBaseURL, cfg.CreateConcurrency)
	default:
		return nil, fmt.Errorf("unsupported issue tracker: %s", cfg.Provider)
	}
}

// ClampLimit bounds a recent-issue listing size to 1..MaxRecentLimit, defaulting non-positive values.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultRecentLimit
	case limit > MaxRecentLimit:
		return MaxRecentLimit
	default:
		return limit
	}
}

type createFunc func(ctx context.Context, draft model.IssueDraft) (model.CreatedIssue, error)

type createOutcome struct {
	issue model.CreatedIssue
	err   error
}

// createAll runs create for every draft with at most concurrency requests in flight.
// Cancellation stops dispatching; a create already dispatched runs to completion on a
// context detached from cancellation, so a started issue is never abandoned half way.
func createAll(ctx context.Context, tracker string, drafts []model.IssueDraft, concurrency int, create createFunc) *CreateResult {
	if concurrency <= 0 {
		concurrency = defaultCreateConcurrency
	}

	sc := logger.StartSpan(ctx, "issue_tracker.create_issues")
	defer sc.End()
	ctx = sc.Context()

	start := time.Now()
	outcomes := make([]createOutcome, len(drafts))
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, draft := range drafts {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			outcomes[i] = createOutcome{err: fmt.Errorf("not dispatched: %w", ctx.Err())}
			continue
		}
		if err := ctx.Err(); err != nil {
			<-sem
			outcomes[i] = createOutcome{err: fmt.Errorf("not dispatched: %w", err)}
			continue
		}

		wg.Add(1)
		go func(idx int, d model.IssueDraft) {
			defer wg.Done()
			defer func() { <-sem }()

			issue, err := create(context.WithoutCancel(ctx), d)
			outcomes[idx] = createOutcome{issue: issue, err: err}
		}(i, draft)
	}

	wg.Wait()

	result := &CreateResult{
		Created: make([]model.CreatedIssue, 0, len(drafts)),
		Failed:  []model.FailedIssue{},
	}
	for i, o := range outcomes {
		if o.err != nil {
			slog.WarnContext(ctx, "failed to create issue",
				"tracker", tracker,
				"index", i,
				"title", logger.Truncate(drafts[i].Title, 100),
				"error", o.err)
			result.Failed = append(result.Failed, model.FailedIssue{
				Index:  i,
				Title:  drafts[i].Title,
				Reason: o.err.Error(),
			})
			continue
		}
		result.Created = append(result.Created, o.issue)
	}

	slog.InfoContext(ctx, "issue creation completed",
		"tracker", tracker,
		"requested", len(drafts),
		"created", len(result.Created),
		"failed", len(result.Failed),
		"duration_ms", time.Since(start).Milliseconds())

	return result
}

// unconfigured fails every draft without touching the network.
func unconfigured(tracker string, drafts []model.IssueDraft) *CreateResult {
	result := &CreateResult{Created: []model.CreatedIssue{}, Failed: make([]model.FailedIssue, 0, len(drafts))}
	for i, d := range drafts {
		result.Failed = append(result.Failed, model.FailedIssue{
			Index:  i,
			Title:  d.Title,
			Reason: fmt.Sprintf("%s: %s", domain.ErrTrackerNotConfigured, tracker),
		})
	}
	return result
}
