package template

import (
	"io"
)

// TemplateRenderer is the engine contract renderers rely on.
type TemplateRenderer interface {
	// RenderTemplate executes the named template from the engine's bundle.
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	// RenderString parses and executes an ad-hoc template.
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
