package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
	"github.com/redis/go-redis/v9"
)

// OutcomePublisher appends every plan outcome to a Redis stream so downstream
// consumers (narration, analytics) can react without coupling to the pipeline.
type OutcomePublisher interface {
	RecordOutcome(ctx context.Context, outcome model.PlanOutcome) error
	Close() error
}

// StreamClient is the part of *redis.Client the publisher uses.
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

type redisOutcomePublisher struct {
	client StreamClient
	stream string
	logger *slog.Logger
}

func NewRedisOutcomePublisher(client StreamClient, stream string, logger *slog.Logger) OutcomePublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisOutcomePublisher{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisOutcomePublisher) RecordOutcome(ctx context.Context, outcome model.PlanOutcome) error {
	created, err := json.Marshal(outcome.CreatedIssues)
	if err != nil {
		return fmt.Errorf("encoding created issues: %w", err)
	}

	fields := map[string]any{
		"session_id":       outcome.SessionID,
		"provider":         string(outcome.Provider),
		"repo":             outcome.Repo.String(),
		"summary":          outcome.Plan.Summary,
		"issues_requested": len(outcome.Plan.Issues),
		"issues_created":   len(outcome.CreatedIssues),
		"created_issues":   string(created),
		"recorded_at":      outcome.RecordedAt.Unix(),
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("publish outcome: %w", err)
	}

	p.logger.InfoContext(ctx, "published plan outcome", "session_id", outcome.SessionID, "stream", p.stream, "issues_created", len(outcome.CreatedIssues))
	return nil
}

func (p *redisOutcomePublisher) Close() error {
	return p.client.Close()
}
