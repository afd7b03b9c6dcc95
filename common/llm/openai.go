package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

type openaiTransport struct {
	client    openai.Client
	model     string
	maxTokens int
}

func newOpenAITransport(cfg Config) *openaiTransport {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &openaiTransport{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: cfg.MaxTokens,
	}
}

func (t *openaiTransport) Complete(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = t.maxTokens
	}
	if maxTokens == 0 {
		maxTokens = 4000
	}

	params := openai.ChatCompletionNewParams{
		Model: t.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		MaxTokens:      openai.Int(int64(maxTokens)),
		ResponseFormat: t.responseFormat(req),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	start := time.Now()
	resp, err := t.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	slog.DebugContext(ctx, "llm chat completed",
		"backend", BackendOpenAI,
		"model", t.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason)

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response from openai")
	}
	return content, nil
}

func (t *openaiTransport) Model() string {
	return t.model
}

// responseFormat prefers a (non-strict) JSON schema hint and falls back to plain JSON mode.
// Strict mode is off because optional fields such as labels cannot be expressed under it.
func (t *openaiTransport) responseFormat(req Request) openai.ChatCompletionNewParamsResponseFormatUnion {
	if req.Schema == nil {
		return openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	name := req.SchemaName
	if name == "" {
		name = "response"
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        name,
				Description: openai.String("Structured response schema"),
				Schema:      req.Schema,
				Strict:      openai.Bool(false),
			},
		},
	}
}
