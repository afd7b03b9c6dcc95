package model

import (
	"fmt"
	"time"
)

// ProviderID identifies a model backend in the closed provider set.
type ProviderID string

const (
	ProviderOpenAI ProviderID = "openai"
	ProviderClaude ProviderID = "claude"
	ProviderGemini ProviderID = "gemini"
)

// Providers lists every supported backend in display order.
var Providers = []ProviderID{ProviderOpenAI, ProviderClaude, ProviderGemini}

func (p ProviderID) Valid() bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}

// Repository identifies the remote issue tracker target.
type Repository struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

func (r Repository) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

type IssueDraft struct {
	Title  string   `json:"title" jsonschema:"minLength=6"`
	Body   string   `json:"body" jsonschema:"minLength=20"`
	Labels []string `json:"labels,omitempty"`
}

type Plan struct {
	Summary   string       `json:"summary"`
	Rationale string       `json:"rationale"`
	Issues    []IssueDraft `json:"issues" jsonschema:"minItems=1"`
}

type CreatedIssue struct {
	Number int64  `json:"number"`
	URL    string `json:"url"`
	Title  string `json:"title"`
}

// FailedIssue records why a draft could not be created.
type FailedIssue struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// PlanResult is the outcome of plan-and-create. It is never stored by the pipeline itself.
type PlanResult struct {
	SessionID            int64          `json:"session_id,string"`
	PlanSummary          string         `json:"plan_summary"`
	Rationale            string         `json:"rationale"`
	CreatedIssues        []CreatedIssue `json:"created_issues"`
	FailedIssues         []FailedIssue  `json:"failed_issues"`
	TotalIssuesCreated   int            `json:"total_issues_created"`
	TotalIssuesRequested int            `json:"total_issues_requested"`
}

type RecentIssue struct {
	Number    int64     `json:"number"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	State     string    `json:"state"`
}

type ProviderStatus struct {
	ID           ProviderID `json:"id"`
	IsConfigured bool       `json:"is_configured"`
}
