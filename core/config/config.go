package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/core/db"
)

type Config struct {
	OTel     OTelConfig
	Tracker  TrackerConfig
	Defaults DefaultsConfig
	Outcomes OutcomeStreamConfig
	Env      string
	Port     string
	DB       db.Config
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// ProvidersConfig holds one LLMConfig per model backend.
type ProvidersConfig struct {
	OpenAI    LLMConfig
	Anthropic LLMConfig
	Gemini    LLMConfig
}

type LLMConfig struct {
	APIKey    string
	BaseURL   string // Optional: for custom endpoints
	Model     string
	MaxTokens int
}

type TrackerConfig struct {
	Provider          string // "github" or "gitlab"
	GitHubToken       string
	GitHubBaseURL     string // Optional: GitHub Enterprise
	GitLabToken       string
	GitLabBaseURL     string // Optional: self-hosted GitLab
	CreateConcurrency int
}

// DefaultsConfig carries the request defaults a caller may omit.
type DefaultsConfig struct {
	Provider    string
	RepoOwner   string
	RepoName    string
	Labels      []string
	PlanTimeout time.Duration
}

type OutcomeStreamConfig struct {
	RedisURL string
	Stream   string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

const (
	TrackerGitHub = "github"
	TrackerGitLab = "gitlab"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the API server
//   - .env.cli for the voiceplan command
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("APP_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "voiceplan"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Tracker: loadTracker(),
		Defaults: DefaultsConfig{
			Provider:    getEnv("DEFAULT_PROVIDER", "openai"),
			RepoOwner:   getEnv("DEFAULT_REPO_OWNER", ""),
			RepoName:    getEnv("DEFAULT_REPO_NAME", ""),
			Labels:      getEnvList("DEFAULT_LABELS", []string{"voice-created"}),
			PlanTimeout: getEnvDuration("PLAN_TIMEOUT", 90*time.Second),
		},
		Outcomes: OutcomeStreamConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			Stream:   getEnv("REDIS_OUTCOME_STREAM", "voiceplan_outcomes"),
		},
	}

	switch cfg.Tracker.Provider {
	case TrackerGitHub, TrackerGitLab:
	default:
		return Config{}, fmt.Errorf("TRACKER_PROVIDER must be %q or %q, got %q", TrackerGitHub, TrackerGitLab, cfg.Tracker.Provider)
	}

	if cfg.Defaults.PlanTimeout <= 0 {
		return Config{}, fmt.Errorf("PLAN_TIMEOUT must be positive")
	}

	return cfg, nil
}

// LoadProviders reads backend credentials from the environment.
// It is called on every registry lookup so rotated keys are picked up without a restart.
func LoadProviders() ProvidersConfig {
	return ProvidersConfig{
		OpenAI: LLMConfig{
			APIKey:    getEnv("OPENAI_API_KEY", ""),
			BaseURL:   getEnv("OPENAI_BASE_URL", ""),
			Model:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			MaxTokens: getEnvInt("OPENAI_MAX_TOKENS", 4000),
		},
		Anthropic: LLMConfig{
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			BaseURL:   getEnv("ANTHROPIC_BASE_URL", ""),
			Model:     getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-20241022"),
			MaxTokens: getEnvInt("ANTHROPIC_MAX_TOKENS", 4000),
		},
		Gemini: LLMConfig{
			APIKey:    getEnv("GOOGLE_API_KEY", ""),
			BaseURL:   getEnv("GEMINI_BASE_URL", ""),
			Model:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			MaxTokens: getEnvInt("GEMINI_MAX_TOKENS", 4000),
		},
	}
}

func loadTracker() TrackerConfig {
	return TrackerConfig{
		Provider:          strings.ToLower(getEnv("TRACKER_PROVIDER", TrackerGitHub)),
		GitHubToken:       getEnv("GITHUB_TOKEN", ""),
		GitHubBaseURL:     getEnv("GITHUB_BASE_URL", ""),
		GitLabToken:       getEnv("GITLAB_TOKEN", ""),
		GitLabBaseURL:     getEnv("GITLAB_BASE_URL", ""),
		CreateConcurrency: getEnvInt("TRACKER_CREATE_CONCURRENCY", 3),
	}
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// Token returns the credential for the selected tracker.
func (c TrackerConfig) Token() string {
	if c.Provider == TrackerGitLab {
		return c.GitLabToken
	}
	return c.GitHubToken
}

func (c TrackerConfig) Enabled() bool {
	return c.Token() != ""
}

func (c OutcomeStreamConfig) Enabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping empty entries.
// An explicitly empty variable yields an empty list.
func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	items := []string{}
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			items = append(items, p)
		}
	}
	return items
}
