package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/common/llm"
)

type planShape struct {
	Summary string `json:"summary"`
}

var _ = Describe("NewTransport", func() {
	It("requires an API key", func() {
		_, err := llm.NewTransport(llm.Config{Backend: llm.BackendOpenAI})
		Expect(err).To(MatchError(ContainSubstring("API key is required")))
	})

	It("rejects unknown backends", func() {
		_, err := llm.NewTransport(llm.Config{Backend: "cohere", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported LLM backend")))
	})

	DescribeTable("falls back to the default model",
		func(backend, model string) {
			t, err := llm.NewTransport(llm.Config{Backend: backend, APIKey: "k"})
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Model()).To(Equal(model))
		},
		Entry("openai", llm.BackendOpenAI, "gpt-4o-mini"),
		Entry("anthropic", llm.BackendAnthropic, "claude-3-5-haiku-20241022"),
		Entry("gemini", llm.BackendGemini, "gemini-1.5-flash"),
	)
})

var _ = Describe("Transports", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		captured map[string]any
		path     string
		respond  func(w http.ResponseWriter)
		req      llm.Request
	)

	BeforeEach(func() {
		ctx = context.Background()
		captured = nil
		path = ""
		req = llm.Request{
			SystemPrompt: "system instructions",
			UserPrompt:   "user instructions",
			SchemaName:   "issue_plan",
			Schema:       llm.GenerateSchema[planShape](),
			MaxTokens:    1234,
			Temperature:  llm.Temp(0.1),
		}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			path = r.URL.Path
			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(body, &captured)).To(Succeed())
			w.Header().Set("Content-Type", "application/json")
			respond(w)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	Context("openai", func() {
		It("sends both prompts with a schema response format", func() {
			respond = func(w http.ResponseWriter) {
				fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
					"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"summary\":\"s\"}"}}],
					"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`)
			}
			t, err := llm.NewTransport(llm.Config{Backend: llm.BackendOpenAI, APIKey: "k", BaseURL: server.URL + "/"})
			Expect(err).NotTo(HaveOccurred())

			out, err := t.Complete(ctx, req)

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(`{"summary":"s"}`))
			Expect(path).To(HaveSuffix("/chat/completions"))
			Expect(captured["max_tokens"]).To(BeNumerically("==", 1234))
			Expect(captured["temperature"]).To(BeNumerically("~", 0.1))
			messages := captured["messages"].([]any)
			Expect(messages).To(HaveLen(2))
			Expect(messages[0].(map[string]any)["role"]).To(Equal("system"))
			Expect(messages[1].(map[string]any)["role"]).To(Equal("user"))
			format := captured["response_format"].(map[string]any)
			Expect(format["type"]).To(Equal("json_schema"))
		})

		It("surfaces rate limiting as a retryable error", func() {
			respond = func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"error":{"message":"slow down","type":"rate_limit"}}`)
			}
			t, err := llm.NewTransport(llm.Config{Backend: llm.BackendOpenAI, APIKey: "k", BaseURL: server.URL + "/"})
			Expect(err).NotTo(HaveOccurred())

			_, err = t.Complete(ctx, req)

			Expect(err).To(HaveOccurred())
			Expect(llm.IsRetryable(ctx, err)).To(BeTrue())
		})

		It("does not retry client errors", func() {
			respond = func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
			}
			t, err := llm.NewTransport(llm.Config{Backend: llm.BackendOpenAI, APIKey: "k", BaseURL: server.URL + "/"})
			Expect(err).NotTo(HaveOccurred())

			_, err = t.Complete(ctx, req)

			Expect(err).To(HaveOccurred())
			Expect(llm.IsRetryable(ctx, err)).To(BeFalse())
		})
	})

	Context("anthropic", func() {
		It("sends the system prompt separately and joins text blocks", func() {
			respond = func(w http.ResponseWriter) {
				fmt.Fprint(w, `{"id":"m1","type":"message","role":"assistant","model":"claude-3-5-haiku-20241022",
					"content":[{"type":"text","text":"{\"summary\":"},{"type":"text","text":"\"s\"}"}],
					"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`)
			}
			t, err := llm.NewTransport(llm.Config{Backend: llm.BackendAnthropic, APIKey: "k", BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())

			out, err := t.Complete(ctx, req)

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(`{"summary":"s"}`))
			Expect(path).To(Equal("/v1/messages"))
			Expect(captured["max_tokens"]).To(BeNumerically("==", 1234))
			system := captured["system"].([]any)
			Expect(system[0].(map[string]any)["text"]).To(Equal("system instructions"))
			Expect(captured["messages"]).To(HaveLen(1))
		})

		It("fails when the reply has no text", func() {
			respond = func(w http.ResponseWriter) {
				fmt.Fprint(w, `{"id":"m1","type":"message","role":"assistant","model":"m","content":[],
					"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`)
			}
			t, err := llm.NewTransport(llm.Config{Backend: llm.BackendAnthropic, APIKey: "k", BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())

			_, err = t.Complete(ctx, req)

			Expect(err).To(MatchError(ContainSubstring("no text content")))
		})
	})

	Context("gemini", func() {
		It("asks for JSON output and returns the candidate text", func() {
			respond = func(w http.ResponseWriter) {
				fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"summary\":\"s\"}"}]},"finishReason":"STOP"}],
					"usageMetadata":{"promptTokenCount":1,"candidatesTokenCount":1}}`)
			}
			t, err := llm.NewTransport(llm.Config{Backend: llm.BackendGemini, APIKey: "k", BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())

			out, err := t.Complete(ctx, req)

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(`{"summary":"s"}`))
			Expect(strings.HasSuffix(path, "gemini-1.5-flash:generateContent")).To(BeTrue(), path)
			genCfg := captured["generationConfig"].(map[string]any)
			Expect(genCfg["responseMimeType"]).To(Equal("application/json"))
			Expect(genCfg["maxOutputTokens"]).To(BeNumerically("==", 1234))
		})
	})
})

var _ = Describe("IsRetryable", func() {
	ctx := context.Background()

	It("never retries cancellation", func() {
		Expect(llm.IsRetryable(ctx, context.Canceled)).To(BeFalse())
		Expect(llm.IsRetryable(ctx, fmt.Errorf("wrapped: %w", context.DeadlineExceeded))).To(BeFalse())
	})

	It("retries errors without an API response", func() {
		Expect(llm.IsRetryable(ctx, errors.New("connection refused"))).To(BeTrue())
	})

	It("ignores nil", func() {
		Expect(llm.IsRetryable(ctx, nil)).To(BeFalse())
	})
})
