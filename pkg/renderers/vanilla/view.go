package vanilla

import (
	"strconv"

	"github.com/goliatone/go-formrelay/pkg/model"
	"github.com/goliatone/go-formrelay/pkg/render"
)

type fieldView struct {
	Name        string
	ID          string
	ErrorID     string
	Label       string
	Type        string
	Control     string
	InputType   string
	Required    bool
	Placeholder string
	Description string
	Value       string
	MaxLength   int
	Options     []optionView
	Errors      []string
	Invalid     bool
}

type optionView struct {
	Value    string
	Selected bool
}

func buildFieldViews(form model.FormModel, options render.RenderOptions) []fieldView {
	views := make([]fieldView, 0, len(form.Fields))
	for _, field := range form.Fields {
		value := options.Values[field.Name]
		errs := options.Errors[field.Name]

		view := fieldView{
			Name:        field.Name,
			ID:          controlID(field.Name),
			ErrorID:     controlID(field.Name) + "-error",
			Label:       model.LabelFor(field),
			Type:        string(field.Type),
			Control:     controlFor(field.Type),
			InputType:   inputTypeFor(field.Type),
			Required:    field.Required,
			Placeholder: field.Placeholder,
			Description: field.Description,
			Value:       value,
			MaxLength:   maxLength(field),
			Errors:      errs,
			Invalid:     len(errs) > 0,
		}
		for _, option := range field.Options {
			view.Options = append(view.Options, optionView{Value: option, Selected: option == value})
		}
		views = append(views, view)
	}
	return views
}

func controlID(name string) string {
	return "fr-" + name
}

func controlFor(t model.FieldType) string {
	switch t {
	case model.FieldTypeTextarea:
		return "textarea"
	case model.FieldTypeSelect:
		return "select"
	default:
		return "input"
	}
}

func inputTypeFor(t model.FieldType) string {
	switch t {
	case model.FieldTypeEmail:
		return "email"
	case model.FieldTypeTel:
		return "tel"
	default:
		return "text"
	}
}

func maxLength(field model.Field) int {
	for _, rule := range field.Validations {
		if rule.Kind != model.ValidationRuleMaxLength {
			continue
		}
		if n, err := strconv.Atoi(rule.Params["value"]); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
