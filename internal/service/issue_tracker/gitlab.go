package issue_tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/domain"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const trackerGitLab = "gitlab"

type gitLabIssueTrackerService struct {
	client      *gitlab.Client
	concurrency int
}

// NewGitLabIssueTrackerService targets gitlab.com, or a self-hosted instance when baseURL is set.
// Repositories map to projects by their "owner/name" path.
func NewGitLabIssueTrackerService(token, baseURL string, concurrency int) (IssueTrackerService, error) {
	if token == "" {
		return &gitLabIssueTrackerService{concurrency: concurrency}, nil
	}

	client, err := newGitLabClient(baseURL, token)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}

	return &gitLabIssueTrackerService{
		client:      client,
		concurrency: concurrency,
	}, nil
}

func (s *gitLabIssueTrackerService) Name() string {
	return trackerGitLab
}

func (s *gitLabIssueTrackerService) IsConfigured() bool {
	return s.client != nil
}

func (s *gitLabIssueTrackerService) ValidateRepoAccess(ctx context.Context, repo model.Repository) bool {
	if !s.IsConfigured() {
		return false
	}

	if _, _, err := s.client.Projects.GetProject(repo.String(), nil, gitlab.WithContext(ctx)); err != nil {
		slog.WarnContext(ctx, "repository access check failed",
			"tracker", trackerGitLab,
			"repo", repo.String(),
			"error", err)
		return false
	}
	return true
}

func (s *gitLabIssueTrackerService) CreateIssues(ctx context.Context, repo model.Repository, drafts []model.IssueDraft) *CreateResult {
	if !s.IsConfigured() {
		return unconfigured(trackerGitLab, drafts)
	}

	return createAll(ctx, trackerGitLab, drafts, s.concurrency, func(ctx context.Context, draft model.IssueDraft) (model.CreatedIssue, error) {
		opts := &gitlab.CreateIssueOptions{
			Title:       gitlab.Ptr(draft.Title),
			Description: gitlab.Ptr(draft.Body),
		}
		if len(draft.Labels) > 0 {
			labels := gitlab.LabelOptions(draft.Labels)
			opts.Labels = &labels
		}

		issue, _, err := s.client.Issues.CreateIssue(repo.String(), opts, gitlab.WithContext(ctx))
		if err != nil {
			return model.CreatedIssue{}, fmt.Errorf("creating issue on gitlab: %w", err)
		}

		return model.CreatedIssue{
			Number: int64(issue.IID),
			URL:    issue.WebURL,
			Title:  issue.Title,
		}, nil
	})
}

func (s *gitLabIssueTrackerService) GetRecentIssues(ctx context.Context, repo model.Repository, since *time.Time, limit int) ([]model.RecentIssue, error) {
	if !s.IsConfigured() {
		return nil, fmt.Errorf("%w: %s", domain.ErrTrackerNotConfigured, trackerGitLab)
	}

	opts := &gitlab.ListProjectIssuesOptions{
		ListOptions:  gitlab.ListOptions{PerPage: int64(ClampLimit(limit))},
		OrderBy:      gitlab.Ptr("created_at"),
		Sort:         gitlab.Ptr("desc"),
		CreatedAfter: since,
	}

	issues, _, err := s.client.Issues.ListProjectIssues(repo.String(), opts, gitlab.WithContext(ctx))
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch recent issues",
			"tracker", trackerGitLab,
			"repo", repo.String(),
			"error", err)
		return nil, fmt.Errorf("%w: listing gitlab issues: %w", domain.ErrTrackerRequestFailed, err)
	}

	recent := make([]model.RecentIssue, 0, len(issues))
	for _, issue := range issues {
		if issue == nil {
			continue
		}
		r := model.RecentIssue{
			Number: int64(issue.IID),
			Title:  issue.Title,
			URL:    issue.WebURL,
			State:  issue.State,
		}
		if issue.CreatedAt != nil {
			r.CreatedAt = *issue.CreatedAt
		}
		recent = append(recent, r)
	}
	return recent, nil
}

func newGitLabClient(baseURL, token string) (*gitlab.Client, error) {
	if baseURL == "" {
		return gitlab.NewClient(token)
	}
	apiURL := strings.TrimSuffix(baseURL, "/") + "/api/v4"
	return gitlab.NewClient(token, gitlab.WithBaseURL(apiURL))
}
