package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"google.golang.org/genai"
)

// Backend constants for transport selection.
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendGemini    = "gemini"
)

// Config holds transport configuration for one backend.
type Config struct {
	Backend   string // "openai", "anthropic" or "gemini"
	APIKey    string // Required: API key for the backend
	BaseURL   string // Optional: custom API endpoint
	Model     string // Model name (e.g., "gpt-4o-mini", "claude-3-5-haiku-20241022")
	MaxTokens int
}

// Transport sends one system + user instruction pair and returns the raw text reply.
// Implementations never retry; retry policy belongs to the caller.
type Transport interface {
	Complete(ctx context.Context, req Request) (string, error)
	Model() string
}

type Request struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       any      // Optional: response-format hint for backends that accept one
	MaxTokens    int      // 0 = transport default
	Temperature  *float64 // nil = model default, explicit 0 = deterministic
}

// NewTransport creates the Transport for cfg.Backend.
func NewTransport(cfg Config) (Transport, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch cfg.Backend {
	case BackendOpenAI:
		return newOpenAITransport(cfg), nil
	case BackendAnthropic:
		return newAnthropicTransport(cfg), nil
	case BackendGemini:
		return newGeminiTransport(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM backend: %s", cfg.Backend)
	}
}

func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func Temp(t float64) *float64 {
	return &t
}

// IsRetryable classifies a transport error. The transports themselves never retry;
// callers use this to decide whether offering a retry makes sense.
func IsRetryable(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		slog.DebugContext(ctx, "llm error not retryable: context cancelled or deadline exceeded")
		return false
	}

	status := 0
	var openaiErr *openai.Error
	var anthropicErr *anthropic.Error
	var geminiErr genai.APIError
	switch {
	case errors.As(err, &openaiErr):
		status = openaiErr.StatusCode
	case errors.As(err, &anthropicErr):
		status = anthropicErr.StatusCode
	case errors.As(err, &geminiErr):
		status = geminiErr.Code
	default:
		// Network errors (no API response) are generally retryable
		slog.WarnContext(ctx, "llm network error", "error", err)
		return true
	}

	switch {
	case status == 429:
		slog.WarnContext(ctx, "llm rate limited", "status_code", status)
		return true
	case status >= 500:
		slog.WarnContext(ctx, "llm server error", "status_code", status)
		return true
	default:
		slog.ErrorContext(ctx, "llm client error, not retryable", "status_code", status)
		return false
	}
}
