package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-formrelay/pkg/locale"
	"github.com/goliatone/go-formrelay/pkg/model"
	"github.com/goliatone/go-formrelay/pkg/render"
	rendertemplate "github.com/goliatone/go-formrelay/pkg/render/template"
	"github.com/goliatone/go-formrelay/pkg/render/template/pongo"
)

const formTemplate = "templates/form.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	stylesheets      []string
	inlineStyles     bool
	now              func() time.Time
}

// WithTemplatesFS supplies an alternate template bundle. It must contain
// templates/form.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStylesheet links an external stylesheet. Repeatable.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(href); trimmed != "" {
			cfg.stylesheets = append(cfg.stylesheets, trimmed)
		}
	}
}

// WithDefaultStyles inlines the embedded stylesheet into the page.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// WithClock overrides the time source used for the footer year.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// Renderer produces a standalone HTML contact page.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	stylesheets  []string
	inlineStyles string
	now          func() time.Time
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), now: time.Now}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	engine := cfg.templateRenderer
	if engine == nil {
		e, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		engine = e
	}

	r := &Renderer{
		templates:   engine,
		stylesheets: cfg.stylesheets,
		now:         cfg.now,
	}
	if cfg.inlineStyles {
		r.inlineStyles = defaultStylesheet()
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the page for form with the per-request state in options.
func (r *Renderer) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	result, err := r.templates.RenderTemplate(formTemplate, r.pageData(form, options))
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) pageData(form model.FormModel, options render.RenderOptions) map[string]any {
	lang := locale.Normalize(options.Locale)
	catalog := locale.For(lang)

	action := strings.TrimSpace(options.Action)
	if action == "" {
		action = form.Endpoint
	}
	title := form.Title
	if title == "" {
		title = model.DefaultLabeler(form.ID)
	}

	stylesheets := append([]string(nil), r.stylesheets...)
	data := map[string]any{
		"lang":          lang,
		"title":         title,
		"description":   form.Description,
		"form_id":       form.ID,
		"action":        action,
		"fields":        buildFieldViews(form, options),
		"hidden_fields": render.SortedHiddenFields(options.Hidden),
		"busy":          options.Busy,
		"submit_label":  catalog.SubmitLabel,
		"busy_label":    catalog.BusyLabel,
		"inline_styles": r.inlineStyles,
		"year":          r.now().Year(),
	}

	msg := options.Status
	data["status_role"] = "status"
	if !msg.IsZero() {
		data["status_text"] = msg.Text
		data["status_kind"] = string(msg.Kind)
		data["status_icon"] = msg.Icon()
		if !msg.AutoDismiss() {
			data["status_role"] = "alert"
		}
	}

	if cfg := options.Theme; cfg != nil {
		data["theme_name"] = cfg.Theme
		data["theme_variant"] = cfg.Variant
		data["theme_style"] = render.CSSVarsStyle(cfg.CSSVars)
		if cfg.AssetURL != nil {
			if href := cfg.AssetURL("stylesheet"); href != "" {
				stylesheets = append(stylesheets, href)
			}
		}
	}
	data["stylesheets"] = stylesheets
	return data
}
