package model

import "strings"

// Decorator adjusts a form model after it was loaded, before any controller
// or renderer sees it.
type Decorator interface {
	Decorate(*FormModel) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormModel) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(form *FormModel) error {
	return fn(form)
}

// Decorate applies decorators in order to a copy of form. Nil decorators
// are skipped; the first error stops the chain.
func Decorate(form FormModel, decorators ...Decorator) (FormModel, error) {
	out := form
	out.Fields = append([]Field(nil), form.Fields...)
	for _, d := range decorators {
		if d == nil {
			continue
		}
		if err := d.Decorate(&out); err != nil {
			return FormModel{}, err
		}
	}
	return out, nil
}

// WithEndpoint replaces the submit target when endpoint is not blank.
func WithEndpoint(endpoint string) Decorator {
	return DecoratorFunc(func(form *FormModel) error {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			form.Endpoint = trimmed
		}
		return nil
	})
}

// WithLabels overrides field labels by field name. Unknown names are
// ignored.
func WithLabels(labels map[string]string) Decorator {
	return DecoratorFunc(func(form *FormModel) error {
		for i := range form.Fields {
			if label, ok := labels[form.Fields[i].Name]; ok && strings.TrimSpace(label) != "" {
				form.Fields[i].Label = label
			}
		}
		return nil
	})
}
