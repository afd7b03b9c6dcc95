package issue_tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/go-github/v72/github"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/domain"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
)

const trackerGitHub = "github"

type gitHubIssueTrackerService struct {
	client      *github.Client
	concurrency int
}

// NewGitHubIssueTrackerService authenticates with a bearer token.
// baseURL targets GitHub Enterprise; empty means github.com.
func NewGitHubIssueTrackerService(token, baseURL string, concurrency int) (IssueTrackerService, error) {
	if token == "" {
		return &gitHubIssueTrackerService{concurrency: concurrency}, nil
	}

	client := github.NewClient(nil).WithAuthToken(token)
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("configuring github base url: %w", err)
		}
	}

	return &gitHubIssueTrackerService{
		client:      client,
		concurrency: concurrency,
	}, nil
}

func (s *gitHubIssueTrackerService) Name() string {
	return trackerGitHub
}

func (s *gitHubIssueTrackerService) IsConfigured() bool {
	return s.client != nil
}

func (s *gitHubIssueTrackerService) ValidateRepoAccess(ctx context.Context, repo model.Repository) bool {
	if !s.IsConfigured() {
		return false
	}

	if _, _, err := s.client.Repositories.Get(ctx, repo.Owner, repo.Name); err != nil {
		slog.WarnContext(ctx, "repository access check failed",
			"tracker", trackerGitHub,
			"repo", repo.String(),
			"error", err)
		return false
	}
	return true
}

func (s *gitHubIssueTrackerService) CreateIssues(ctx context.Context, repo model.Repository, drafts []model.IssueDraft) *CreateResult {
	if !s.IsConfigured() {
		return unconfigured(trackerGitHub, drafts)
	}

	return createAll(ctx, trackerGitHub, drafts, s.concurrency, func(ctx context.Context, draft model.IssueDraft) (model.CreatedIssue, error) {
		labels := draft.Labels
		if labels == nil {
			labels = []string{}
		}

		issue, _, err := s.client.Issues.Create(ctx, repo.Owner, repo.Name, &github.IssueRequest{
			Title:  github.Ptr(draft.Title),
			Body:   github.Ptr(draft.Body),
			Labels: &labels,
		})
		if err != nil {
			return model.CreatedIssue{}, fmt.Errorf("creating issue on github: %w", err)
		}

		return model.CreatedIssue{
			Number: int64(issue.GetNumber()),
			URL:    issue.GetHTMLURL(),
			Title:  issue.GetTitle(),
		}, nil
	})
}

// GetRecentIssues lists issues newest first. Pull requests share the issues endpoint and are skipped.
func (s *gitHubIssueTrackerService) GetRecentIssues(ctx context.Context, repo model.Repository, since *time.Time, limit int) ([]model.RecentIssue, error) {
	if !s.IsConfigured() {
		return nil, fmt.Errorf("%w: %s", domain.ErrTrackerNotConfigured, trackerGitHub)
	}

	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: ClampLimit(limit)},
	}
	if since != nil {
		opts.Since = *since
	}

	issues, _, err := s.client.Issues.ListByRepo(ctx, repo.Owner, repo.Name, opts)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch recent issues",
			"tracker", trackerGitHub,
			"repo", repo.String(),
			"error", err)
		return nil, fmt.Errorf("%w: listing github issues: %w", domain.ErrTrackerRequestFailed, err)
	}

	recent := make([]model.RecentIssue, 0, len(issues))
	for _, issue := range issues {
		if issue == nil || issue.IsPullRequest() {
			continue
		}
		recent = append(recent, model.RecentIssue{
			Number:    int64(issue.GetNumber()),
			Title:     issue.GetTitle(),
			URL:       issue.GetHTMLURL(),
			CreatedAt: issue.GetCreatedAt().Time,
			State:     issue.GetState(),
		})
	}
	return recent, nil
}
