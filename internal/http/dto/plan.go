package dto

import (
	"encoding/json"
	"errors"
	"time"
)

type RepoRef struct {
	Owner string `json:"owner" binding:"required"`
	Name  string `json:"name" binding:"required"`
}

type DryRunRequest struct {
	Transcript    string   `json:"transcript" binding:"required,min=5"`
	Model         string   `json:"model"`
	Repo          *RepoRef `json:"repo"`
	BranchContext string   `json:"branch_context,omitempty"`
}

type PlanRequest struct {
	Transcript    string    `json:"transcript" binding:"required,min=5"`
	Model         string    `json:"model"`
	Repo          *RepoRef  `json:"repo"`
	Verbosity     string    `json:"verbosity" binding:"omitempty,oneof=brief verbose"`
	Labels        LabelList `json:"labels"`
	BranchContext string    `json:"branch_context,omitempty"`
}

var ErrNullLabels = errors.New("labels must be an array of strings, not null")

// LabelList tells an absent labels field apart from an explicit null.
type LabelList struct {
	Values []string
	Null   bool
}

func (l *LabelList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		l.Null = true
		return nil
	}
	values := []string{}
	if err := json.Unmarshal(b, &values); err != nil {
		return err
	}
	l.Values = values
	return nil
}

type IssueDraftResponse struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

type DryRunResponse struct {
	Summary     string               `json:"summary"`
	Rationale   string               `json:"rationale"`
	Issues      []IssueDraftResponse `json:"issues"`
	TotalIssues int                  `json:"total_issues"`
}

type CreatedIssueResponse struct {
	Number int64  `json:"number"`
	URL    string `json:"url"`
	Title  string `json:"title"`
}

type FailedIssueResponse struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

type PlanResponse struct {
	SessionID            string                 `json:"session_id"`
	PlanSummary          string                 `json:"plan_summary"`
	Rationale            string                 `json:"rationale"`
	CreatedIssues        []CreatedIssueResponse `json:"created_issues"`
	FailedIssues         []FailedIssueResponse  `json:"failed_issues"`
	TotalIssuesCreated   int                    `json:"total_issues_created"`
	TotalIssuesRequested int                    `json:"total_issues_requested"`
}

type AvailabilityResponse struct {
	ID           string `json:"id"`
	IsConfigured bool   `json:"is_configured"`
}

type ProviderStatusResponse struct {
	Providers []AvailabilityResponse `json:"providers"`
	Tracker   AvailabilityResponse   `json:"tracker"`
}

type RecentIssuesQuery struct {
	Since string `form:"since"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type RecentIssueResponse struct {
	Number    int64     `json:"number"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	State     string    `json:"state"`
}

type SessionHistoryQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

type SessionResponse struct {
	ID              string                 `json:"id"`
	Transcript      string                 `json:"transcript"`
	Provider        string                 `json:"provider"`
	Repo            string                 `json:"repo"`
	Summary         string                 `json:"summary"`
	Rationale       string                 `json:"rationale"`
	Issues          []IssueDraftResponse   `json:"issues"`
	IssuesRequested int                    `json:"issues_requested"`
	CreatedIssues   []CreatedIssueResponse `json:"created_issues"`
	CreatedAt       time.Time              `json:"created_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}
