package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formrelay/pkg/status"
)

// RenderOptions carry the per-request view state. Renderers must not mutate
// the maps they receive.
type RenderOptions struct {
	// Action overrides the form endpoint as the submit target. The relay
	// points it at its own POST route.
	Action string
	// Values pre-populates controls, keyed by field name.
	Values map[string]string
	// Errors holds inline messages keyed by field name. Fields listed here
	// are flagged invalid for assistive technology.
	Errors map[string][]string
	// Status is the message shown in the status region. The zero value
	// renders an empty, hidden region.
	Status status.Message
	// Busy disables the submit control and swaps its label.
	Busy bool
	// Hidden inputs are emitted in name order, after the visible fields.
	Hidden map[string]string
	// Locale selects the catalog for button labels and the page language.
	Locale string
	// Theme is the resolved go-theme configuration. Nil means the built-in
	// stylesheet with no token overrides.
	Theme *theme.RendererConfig
}

// HasErrors reports whether any field carries an inline message.
func (o RenderOptions) HasErrors() bool {
	for _, messages := range o.Errors {
		if len(messages) > 0 {
			return true
		}
	}
	return false
}
