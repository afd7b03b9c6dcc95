package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/common/llm"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/core/config"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/domain"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/plan"
)

// Planner is the contract every provider adapter satisfies.
type Planner interface {
	ID() model.ProviderID
	IsConfigured() bool
	PlanIssues(ctx context.Context, transcript string, repo model.Repository, branchContext string) (*model.Plan, error)
}

// Source returns current backend credentials. It is consulted on every lookup.
type Source func() config.ProvidersConfig

// TransportFactory builds a transport; tests substitute fakes here.
type TransportFactory func(cfg llm.Config) (llm.Transport, error)

// backend is the static, per-provider data: which transport to use and how to sample.
type backend struct {
	transport string
	settings  plan.Settings
	config    func(config.ProvidersConfig) config.LLMConfig
}

var backends = map[model.ProviderID]backend{
	model.ProviderOpenAI: {
		transport: llm.BackendOpenAI,
		settings:  plan.Settings{Temperature: 0.1, MaxTokens: 4000},
		config:    func(c config.ProvidersConfig) config.LLMConfig { return c.OpenAI },
	},
	model.ProviderClaude: {
		transport: llm.BackendAnthropic,
		settings:  plan.Settings{Temperature: 0.1, MaxTokens: 4000},
		config:    func(c config.ProvidersConfig) config.LLMConfig { return c.Anthropic },
	},
	model.ProviderGemini: {
		transport: llm.BackendGemini,
		settings:  plan.Settings{Temperature: 0.1, MaxTokens: 4000},
		config:    func(c config.ProvidersConfig) config.LLMConfig { return c.Gemini },
	},
}

// Registry maps provider identities to freshly built adapters. Nothing is cached.
type Registry struct {
	source  Source
	factory TransportFactory
}

func NewRegistry(source Source, factory TransportFactory) *Registry {
	if factory == nil {
		factory = llm.NewTransport
	}
	return &Registry{source: source, factory: factory}
}

// Resolve builds the adapter for id. Missing credentials produce an unconfigured adapter,
// not an error; only identities outside the closed set fail.
func (r *Registry) Resolve(id model.ProviderID) (Planner, error) {
	b, ok := backends[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, id)
	}
	return r.build(id, b, r.source()), nil
}

// ListAvailability reports every provider in display order without invoking any backend.
func (r *Registry) ListAvailability() []model.ProviderStatus {
	cfg := r.source()
	statuses := make([]model.ProviderStatus, 0, len(model.Providers))
	for _, id := range model.Providers {
		adapter := r.build(id, backends[id], cfg)
		statuses = append(statuses, model.ProviderStatus{
			ID:           id,
			IsConfigured: adapter.IsConfigured(),
		})
	}
	return statuses
}

func (r *Registry) build(id model.ProviderID, b backend, cfg config.ProvidersConfig) *plan.Adapter {
	llmCfg := b.config(cfg)
	if !llmCfg.Enabled() {
		return plan.NewAdapter(id, nil, b.settings)
	}

	settings := b.settings
	if llmCfg.MaxTokens > 0 {
		settings.MaxTokens = llmCfg.MaxTokens
	}

	transport, err := r.factory(llm.Config{
		Backend:   b.transport,
		APIKey:    llmCfg.APIKey,
		BaseURL:   llmCfg.BaseURL,
		Model:     llmCfg.Model,
		MaxTokens: settings.MaxTokens,
	})
	if err != nil {
		slog.Warn("provider transport unavailable", "provider", id, "error", err)
		return plan.NewAdapter(id, nil, settings)
	}
	return plan.NewAdapter(id, transport, settings)
}
