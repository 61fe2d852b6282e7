package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FormTokenField names the hidden input that identifies one rendered form
// instance. The relay keys its per-form submission state by this value.
const FormTokenField = "_form_token"

// HiddenField is a hidden input emitted alongside the visible fields.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying token under name ("_csrf",
// "csrf_token", whatever the backend expects).
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// FormToken returns the form-instance hidden field. An empty token mints a
// fresh random one.
func FormToken(token string) HiddenField {
	token = strings.TrimSpace(token)
	if token == "" {
		token = uuid.NewString()
	}
	return Hidden(FormTokenField, token)
}

// ValidFormToken reports whether token looks like one FormToken minted.
func ValidFormToken(token string) bool {
	_, err := uuid.Parse(strings.TrimSpace(token))
	return err == nil
}

// MergeHiddenFields returns a copy of base with fields applied. Empty names
// are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		out[field.Name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields returns fields in name order for deterministic output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	result := make([]HiddenField, 0, len(fields))
	for name, value := range fields {
		if key := strings.TrimSpace(name); key != "" {
			result = append(result, HiddenField{Name: key, Value: value})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	if len(result) == 0 {
		return nil
	}
	return result
}
