package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/common/llm"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/common/logger"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/domain"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const schemaName = "issue_plan"

var planSchema = llm.GenerateSchema[model.Plan]()

// Settings are the per-backend sampling parameters.
type Settings struct {
	Temperature float64
	MaxTokens   int
}

// Adapter turns a transcript into a validated Plan through one backend transport.
// Prompt construction, JSON extraction and validation are shared; only the transport differs.
type Adapter struct {
	id        model.ProviderID
	transport llm.Transport
	settings  Settings
}

// NewAdapter wraps transport for provider id. A nil transport yields an unconfigured adapter.
func NewAdapter(id model.ProviderID, transport llm.Transport, settings Settings) *Adapter {
	return &Adapter{
		id:        id,
		transport: transport,
		settings:  settings,
	}
}

func (a *Adapter) ID() model.ProviderID {
	return a.id
}

func (a *Adapter) IsConfigured() bool {
	return a.transport != nil
}

func (a *Adapter) PlanIssues(ctx context.Context, transcript string, repo model.Repository, branchContext string) (*model.Plan, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotConfigured, a.id)
	}

	sc := logger.StartSpan(ctx, "plan.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider", string(a.id)),
			attribute.String("model", a.transport.Model()),
		))
	defer sc.End()
	ctx = sc.Context()

	start := time.Now()
	raw, err := a.transport.Complete(ctx, llm.Request{
		SystemPrompt: SystemPrompt(repo),
		UserPrompt:   UserPrompt(transcript, branchContext),
		SchemaName:   schemaName,
		Schema:       planSchema,
		MaxTokens:    a.settings.MaxTokens,
		Temperature:  llm.Temp(a.settings.Temperature),
	})
	if err != nil {
		sc.RecordError(err)
		slog.WarnContext(ctx, "provider request failed",
			"provider", a.id,
			"retryable", llm.IsRetryable(ctx, err),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrProviderRequestFailed, a.id, err)
	}

	plan, err := a.parse(raw)
	if err != nil {
		sc.RecordError(err)
		slog.WarnContext(ctx, "provider response rejected",
			"provider", a.id,
			"error", err,
			"raw", logger.Truncate(raw, 500))
		return nil, err
	}

	slog.InfoContext(ctx, "plan generated",
		"provider", a.id,
		"model", a.transport.Model(),
		"issues", len(plan.Issues),
		"duration_ms", time.Since(start).Milliseconds())

	return plan, nil
}

func (a *Adapter) parse(raw string) (*model.Plan, error) {
	object, ok := ExtractJSONObject(raw)
	if !ok {
		return nil, a.responseError(raw, errors.New("no JSON object found in response"))
	}

	var decoded any
	if err := json.Unmarshal([]byte(object), &decoded); err != nil {
		return nil, a.responseError(raw, fmt.Errorf("decoding JSON: %w", err))
	}

	plan, err := Validate(decoded)
	if err != nil {
		return nil, a.responseError(raw, err)
	}
	return plan, nil
}

func (a *Adapter) responseError(raw string, err error) error {
	return &domain.ResponseError{Provider: string(a.id), Raw: raw, Err: err}
}
