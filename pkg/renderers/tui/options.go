package tui

import (
	"github.com/goliatone/go-formrelay/pkg/locale"
	"github.com/goliatone/go-formrelay/pkg/validation"
)

// OutputFormat controls how Renderer serializes collected values.
type OutputFormat string

const (
	OutputFormatJSON           OutputFormat = "json"
	OutputFormatFormURLEncoded OutputFormat = "form"
	OutputFormatPrettyText     OutputFormat = "pretty"
)

// Theme holds the prefixes printed ahead of status lines and field errors.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// DefaultTheme uses the status icons for prefixes.
func DefaultTheme() Theme {
	return Theme{
		PromptPrefix: "?",
		InfoPrefix:   "ℹ️",
		ErrorPrefix:  "❌",
	}
}

// Option configures a Session or Renderer.
type Option func(*settings)

type settings struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	validator    *validation.Validator
	catalog      locale.Catalog
	catalogSet   bool
	confirm      bool
}

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *settings) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutputFormat selects how Renderer serializes the collected values.
func WithOutputFormat(format OutputFormat) Option {
	return func(s *settings) {
		if format != "" {
			s.outputFormat = format
		}
	}
}

// WithTheme overrides the message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *settings) {
		s.theme = theme
	}
}

// WithValidator validates answers as they are typed. Without one, answers
// are only checked when the controller validates the form.
func WithValidator(v *validation.Validator) Option {
	return func(s *settings) {
		s.validator = v
	}
}

// WithCatalog sets the strings used for the busy line and confirmation.
func WithCatalog(catalog locale.Catalog) Option {
	return func(s *settings) {
		s.catalog = catalog
		s.catalogSet = true
	}
}

// WithConfirm asks for confirmation before Collect returns.
func WithConfirm(enabled bool) Option {
	return func(s *settings) {
		s.confirm = enabled
	}
}

func newSettings(options []Option) settings {
	s := settings{
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	if !s.catalogSet {
		s.catalog = locale.For(locale.English)
	}
	return s
}
