package logger

import (
	"context"
	"unicode/utf8"
)

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Handlers set them once per request so every log line of the pipeline carries
// the session, provider and target repository without threading them by hand.
type LogFields struct {
	SessionID *int64  // Outcome/session ID assigned when the request starts
	Provider  *string // Model backend identity (e.g., "openai", "claude")
	Repo      *string // Target repository as "owner/name"
	RequestID *string // Inbound request ID when served over HTTP
	Component string  // Component name (OTel semantic convention style, e.g., "voiceplan.service.planner")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.SessionID != nil {
		result.SessionID = new.SessionID
	}
	if new.Provider != nil {
		result.Provider = new.Provider
	}
	if new.Repo != nil {
		result.Repo = new.Repo
	}
	if new.RequestID != nil {
		result.RequestID = new.RequestID
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{Provider: logger.Ptr("openai")})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate cuts s to at most maxLen bytes on a rune boundary, appending "..." if truncated.
// Useful for logging potentially long strings like transcripts or raw model replies.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
