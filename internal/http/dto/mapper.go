package dto

import (
	"strconv"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
)

func ToDryRunResponse(plan *model.Plan) DryRunResponse {
	return DryRunResponse{
		Summary:     plan.Summary,
		Rationale:   plan.Rationale,
		Issues:      toDraftResponses(plan.Issues),
		TotalIssues: len(plan.Issues),
	}
}

func ToPlanResponse(result *model.PlanResult) PlanResponse {
	created := toCreatedResponses(result.CreatedIssues)
	failed := make([]FailedIssueResponse, 0, len(result.FailedIssues))
	for _, f := range result.FailedIssues {
		failed = append(failed, FailedIssueResponse{Index: f.Index, Title: f.Title, Reason: f.Reason})
	}

	return PlanResponse{
		SessionID:            strconv.FormatInt(result.SessionID, 10),
		PlanSummary:          result.PlanSummary,
		Rationale:            result.Rationale,
		CreatedIssues:        created,
		FailedIssues:         failed,
		TotalIssuesCreated:   result.TotalIssuesCreated,
		TotalIssuesRequested: result.TotalIssuesRequested,
	}
}

func ToRecentIssueResponses(issues []model.RecentIssue) []RecentIssueResponse {
	resp := make([]RecentIssueResponse, 0, len(issues))
	for _, i := range issues {
		resp = append(resp, RecentIssueResponse{
			Number:    i.Number,
			Title:     i.Title,
			URL:       i.URL,
			CreatedAt: i.CreatedAt,
			State:     i.State,
		})
	}
	return resp
}

func ToSessionResponses(sessions []model.Session) []SessionResponse {
	resp := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, SessionResponse{
			ID:              strconv.FormatInt(s.ID, 10),
			Transcript:      s.Transcript,
			Provider:        string(s.Provider),
			Repo:            s.Repo,
			Summary:         s.Summary,
			Rationale:       s.Rationale,
			Issues:          toDraftResponses(s.Issues),
			IssuesRequested: s.IssuesRequested,
			CreatedIssues:   toCreatedResponses(s.CreatedIssues),
			CreatedAt:       s.CreatedAt,
		})
	}
	return resp
}

func toDraftResponses(drafts []model.IssueDraft) []IssueDraftResponse {
	resp := make([]IssueDraftResponse, 0, len(drafts))
	for _, d := range drafts {
		labels := d.Labels
		if labels == nil {
			labels = []string{}
		}
		resp = append(resp, IssueDraftResponse{Title: d.Title, Body: d.Body, Labels: labels})
	}
	return resp
}

func toCreatedResponses(issues []model.CreatedIssue) []CreatedIssueResponse {
	resp := make([]CreatedIssueResponse, 0, len(issues))
	for _, i := range issues {
		resp = append(resp, CreatedIssueResponse{Number: i.Number, URL: i.URL, Title: i.Title})
	}
	return resp
}
