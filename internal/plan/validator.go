package plan

import (
	"fmt"
	"unicode/utf8"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/domain"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/model"
)

const (
	MinTitleLength = 6
	MinBodyLength  = 20
)

// Validate turns a decoded JSON value into a Plan, or returns a *domain.SchemaViolation
// naming the first failing field. Values are taken as-is: nothing is trimmed or truncated.
// Lengths count characters (runes), not bytes.
func Validate(v any) (*model.Plan, error) {
	root, ok := v.(map[string]any)
	if !ok {
		return nil, violation("plan", "must be a JSON object")
	}

	summary, err := requireString(root, "summary", "summary")
	if err != nil {
		return nil, err
	}
	rationale, err := requireString(root, "rationale", "rationale")
	if err != nil {
		return nil, err
	}

	rawIssues, ok := root["issues"].([]any)
	if !ok {
		return nil, violation("issues", "must be an array")
	}
	if len(rawIssues) == 0 {
		return nil, violation("issues", "must contain at least one issue")
	}

	issues := make([]model.IssueDraft, 0, len(rawIssues))
	for i, raw := range rawIssues {
		draft, err := validateDraft(i, raw)
		if err != nil {
			return nil, err
		}
		issues = append(issues, draft)
	}

	return &model.Plan{
		Summary:   summary,
		Rationale: rationale,
		Issues:    issues,
	}, nil
}

func validateDraft(i int, raw any) (model.IssueDraft, error) {
	prefix := fmt.Sprintf("issues[%d]", i)

	obj, ok := raw.(map[string]any)
	if !ok {
		return model.IssueDraft{}, violation(prefix, "must be a JSON object")
	}

	title, err := requireString(obj, "title", prefix+".title")
	if err != nil {
		return model.IssueDraft{}, err
	}
	if utf8.RuneCountInString(title) < MinTitleLength {
		return model.IssueDraft{}, violation(prefix+".title", fmt.Sprintf("must be at least %d characters", MinTitleLength))
	}

	body, err := requireString(obj, "body", prefix+".body")
	if err != nil {
		return model.IssueDraft{}, err
	}
	if utf8.RuneCountInString(body) < MinBodyLength {
		return model.IssueDraft{}, violation(prefix+".body", fmt.Sprintf("must be at least %d characters", MinBodyLength))
	}

	draft := model.IssueDraft{Title: title, Body: body}

	rawLabels, present := obj["labels"]
	if !present {
		return draft, nil
	}
	labels, ok := rawLabels.([]any)
	if !ok {
		return model.IssueDraft{}, violation(prefix+".labels", "must be an array of strings")
	}
	draft.Labels = make([]string, 0, len(labels))
	for j, l := range labels {
		s, ok := l.(string)
		if !ok {
			return model.IssueDraft{}, violation(fmt.Sprintf("%s.labels[%d]", prefix, j), "must be a string")
		}
		draft.Labels = append(draft.Labels, s)
	}

	return draft, nil
}

func requireString(obj map[string]any, key, field string) (string, error) {
	raw, present := obj[key]
	if !present {
		return "", violation(field, "is required")
	}
	s, ok := raw.(string)
	if !ok {
		return "", violation(field, "must be a string")
	}
	return s, nil
}

func violation(field, reason string) error {
	return &domain.SchemaViolation{Field: field, Reason: reason}
}
