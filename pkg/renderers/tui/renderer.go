package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-formrelay/pkg/model"
	"github.com/goliatone/go-formrelay/pkg/render"
)

// Renderer implements render.Renderer for terminal sessions: Render prompts
// for every field and returns the answers serialized in the output format.
type Renderer struct {
	options []Option
	format  OutputFormat
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer (survey driver, JSON output by default).
func New(options ...Option) (*Renderer, error) {
	s := newSettings(options)
	return &Renderer{options: options, format: s.outputFormat}, nil
}

func (r *Renderer) Name() string {
	return "tui"
}

func (r *Renderer) ContentType() string {
	switch r.format {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render runs a session seeded with opts.Values and prints opts.Errors and
// opts.Status before prompting.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session := NewSession(form, r.options...)
	for key, value := range opts.Values {
		session.SetValue(key, value)
	}
	for _, field := range form.Fields {
		if messages := opts.Errors[field.Name]; len(messages) > 0 {
			session.SetFieldError(field.Name, strings.Join(messages, " "))
		}
	}
	if !opts.Status.IsZero() {
		session.ShowStatus(opts.Status)
	}

	values, err := session.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return r.serialize(form, values)
}

func (r *Renderer) serialize(form model.FormModel, values map[string]string) ([]byte, error) {
	switch r.format {
	case OutputFormatFormURLEncoded:
		encoded := url.Values{}
		for _, name := range form.FieldNames() {
			encoded.Set(name, values[name])
		}
		return []byte(encoded.Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		for _, field := range form.Fields {
			fmt.Fprintf(&b, "%s: %s\n", model.LabelFor(field), values[field.Name])
		}
		return []byte(b.String()), nil
	default:
		ordered := make(map[string]string, len(form.Fields))
		for _, name := range form.FieldNames() {
			ordered[name] = values[name]
		}
		return json.MarshalIndent(ordered, "", "  ")
	}
}
