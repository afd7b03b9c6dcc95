package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/core/db"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
)

type sessionStore struct {
	db Database
}

func NewSessionStore(database Database) SessionStore {
	return &sessionStore{db: database}
}

func (s *sessionStore) RecordOutcome(ctx context.Context, outcome model.PlanOutcome) error {
	planJSON, err := json.Marshal(outcome.Plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}

	return s.db.WithTx(ctx, func(q db.Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO voice_sessions
				(id, transcript, provider, repo, summary, rationale, plan_json, issues_requested, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			outcome.SessionID,
			outcome.Transcript,
			string(outcome.Provider),
			outcome.Repo.String(),
			outcome.Plan.Summary,
			outcome.Plan.Rationale,
			planJSON,
			len(outcome.Plan.Issues),
			outcome.RecordedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting voice session: %w", err)
		}

		for i, issue := range outcome.CreatedIssues {
			_, err := q.Exec(ctx, `
				INSERT INTO voice_issue_refs (session_id, position, issue_number, url, title)
				VALUES ($1, $2, $3, $4, $5)`,
				outcome.SessionID, i, issue.Number, issue.URL, issue.Title,
			)
			if err != nil {
				return fmt.Errorf("inserting issue ref: %w", err)
			}
		}
		return nil
	})
}

func (s *sessionStore) ListRecent(ctx context.Context, limit, offset int) ([]model.Session, error) {
	rows, err := s.db.Pool().Query(ctx, `
		SELECT id, transcript, provider, repo, summary, rationale, plan_json, issues_requested, created_at
		FROM voice_sessions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing voice sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	index := make(map[int64]int)
	for rows.Next() {
		var (
			session  model.Session
			provider string
			planJSON []byte
			created  time.Time
		)
		if err := rows.Scan(
			&session.ID,
			&session.Transcript,
			&provider,
			&session.Repo,
			&session.Summary,
			&session.Rationale,
			&planJSON,
			&session.IssuesRequested,
			&created,
		); err != nil {
			return nil, fmt.Errorf("scanning voice session: %w", err)
		}

		var plan model.Plan
		if err := json.Unmarshal(planJSON, &plan); err != nil {
			return nil, fmt.Errorf("decoding plan for session %d: %w", session.ID, err)
		}
		session.Provider = model.ProviderID(provider)
		session.Issues = plan.Issues
		session.CreatedAt = created
		session.CreatedIssues = []model.CreatedIssue{}

		index[session.ID] = len(sessions)
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating voice sessions: %w", err)
	}

	if len(sessions) == 0 {
		return []model.Session{}, nil
	}

	ids := make([]int64, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.ID)
	}

	refs, err := s.db.Pool().Query(ctx, `
		SELECT session_id, issue_number, url, title
		FROM voice_issue_refs
		WHERE session_id = ANY($1)
		ORDER BY session_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("listing issue refs: %w", err)
	}
	defer refs.Close()

	for refs.Next() {
		var (
			sessionID int64
			issue     model.CreatedIssue
		)
		if err := refs.Scan(&sessionID, &issue.Number, &issue.URL, &issue.Title); err != nil {
			return nil, fmt.Errorf("scanning issue ref: %w", err)
		}
		if i, ok := index[sessionID]; ok {
			sessions[i].CreatedIssues = append(sessions[i].CreatedIssues, issue)
		}
	}
	if err := refs.Err(); err != nil {
		return nil, fmt.Errorf("iterating issue refs: %w", err)
	}

	return sessions, nil
}
