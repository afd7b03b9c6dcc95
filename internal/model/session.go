package model

import "time"

// PlanOutcome is handed to the recording hook after issues were created.
type PlanOutcome struct {
	SessionID     int64
	Transcript    string
	Provider      ProviderID
	Repo          Repository
	Plan          Plan
	CreatedIssues []CreatedIssue
	RecordedAt    time.Time
}

// Session is a persisted PlanOutcome as read back from history.
type Session struct {
	ID              int64          `json:"id,string"`
	Transcript      string         `json:"transcript"`
	Provider        ProviderID     `json:"provider"`
	Repo            string         `json:"repo"`
	Summary         string         `json:"summary"`
	Rationale       string         `json:"rationale"`
	Issues          []IssueDraft   `json:"issues"`
	IssuesRequested int            `json:"issues_requested"`
	CreatedIssues   []CreatedIssue `json:"created_issues"`
	CreatedAt       time.Time      `json:"created_at"`
}
