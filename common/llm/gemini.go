package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

type geminiTransport struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
}

// newGeminiTransport defers client construction to Complete because genai.NewClient needs a context.
func newGeminiTransport(cfg Config) *geminiTransport {
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}

	return &geminiTransport{
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		model:     model,
		maxTokens: cfg.MaxTokens,
	}
}

func (t *geminiTransport) Complete(ctx context.Context, req Request) (string, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  t.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if t.baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: t.baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return "", fmt.Errorf("creating gemini client: %w", err)
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = t.maxTokens
	}
	if maxTokens == 0 {
		maxTokens = 4000
	}

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		MaxOutputTokens:   int32(maxTokens),
		ResponseMIMEType:  "application/json",
	}
	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		genCfg.Temperature = &temp
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, t.model, genai.Text(req.UserPrompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	attrs := []any{
		"backend", BackendGemini,
		"model", t.model,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if resp.UsageMetadata != nil {
		attrs = append(attrs,
			"prompt_tokens", resp.UsageMetadata.PromptTokenCount,
			"completion_tokens", resp.UsageMetadata.CandidatesTokenCount)
	}
	slog.DebugContext(ctx, "llm chat completed", attrs...)

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return text, nil
}

func (t *geminiTransport) Model() string {
	return t.model
}
