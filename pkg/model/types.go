package model

import "strings"

// FieldType enumerates the input kinds a contact form can carry.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
)

const (
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
)

// ValidationRule represents a single validation constraint applied to a field.
// Length limits encode their threshold in Params["value"] while pattern rules
// keep the original expression in Params["pattern"].
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Field models an individual input inside a contact form.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Options     []string          `json:"options,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// FormModel is the top-level representation renderers and the controller
// consume.
type FormModel struct {
	ID          string            `json:"id"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Fields      []Field           `json:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Field returns the field with the supplied name.
func (f FormModel) Field(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// FieldNames lists field names in declaration order.
func (f FormModel) FieldNames() []string {
	names := make([]string, 0, len(f.Fields))
	for _, field := range f.Fields {
		names = append(names, field.Name)
	}
	return names
}

// RequiredFields returns the fields marked as required, in declaration order.
func (f FormModel) RequiredFields() []Field {
	var out []Field
	for _, field := range f.Fields {
		if field.Required {
			out = append(out, field)
		}
	}
	return out
}

// ParseFieldType maps HTML-ish input type names onto a FieldType. Unknown
// names fall back to FieldTypeText.
func ParseFieldType(raw string) FieldType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "email":
		return FieldTypeEmail
	case "tel", "phone", "telephone":
		return FieldTypeTel
	case "textarea", "multiline":
		return FieldTypeTextarea
	case "select", "enum":
		return FieldTypeSelect
	default:
		return FieldTypeText
	}
}
