package render

import (
	"strings"

	"github.com/goliatone/go-formrelay/pkg/model"
	"github.com/goliatone/go-formrelay/pkg/validation"
)

// ErrorsFromResults collects the messages of failed results keyed by field.
func ErrorsFromResults(results []validation.Result) map[string][]string {
	out := make(map[string][]string)
	for _, result := range results {
		if result.Valid {
			continue
		}
		out[result.Field] = append(out[result.Field], result.Message)
	}
	return normalizeErrors(out)
}

// ErrorMapping splits an error payload into messages for known fields and
// form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrorPayload assigns messages to the form's fields. Keys that name no
// field (and the empty key) become form-level messages so nothing is lost.
func MapErrorPayload(form model.FormModel, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	for rawKey, messages := range payload {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		key := strings.TrimSpace(rawKey)
		if _, ok := form.Field(key); !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[key] = append(mapping.Fields[key], messages...)
	}
	mapping.Fields = normalizeErrors(mapping.Fields)
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeErrors(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for key, messages := range in {
		if cleaned := normalizeMessages(messages); len(cleaned) > 0 {
			out[key] = cleaned
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
