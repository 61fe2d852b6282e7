package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-formrelay/pkg/locale"
	"github.com/goliatone/go-formrelay/pkg/model"
)

const (
	// DefaultEmailPattern accepts a simple local-part@domain.tld shape.
	DefaultEmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
	// DefaultPhonePattern accepts Brazilian style numbers: an optional
	// parenthesised two digit area code, then 4-5 and 4 digit groups with
	// optional space or dash separators.
	DefaultPhonePattern = `^\(?\d{2}\)?[\s-]?\d{4,5}[\s-]?\d{4}$`
)

// Result is the outcome of validating one field value.
type Result struct {
	Field   string `json:"field"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Option configures a Validator.
type Option func(*config)

type config struct {
	emailPattern string
	phonePattern string
	catalog      locale.Catalog
	catalogSet   bool
}

// WithPhonePattern overrides the digit-grouping expression used for tel
// fields.
func WithPhonePattern(pattern string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(pattern); trimmed != "" {
			cfg.phonePattern = trimmed
		}
	}
}

// WithEmailPattern overrides the expression used for email fields.
func WithEmailPattern(pattern string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(pattern); trimmed != "" {
			cfg.emailPattern = trimmed
		}
	}
}

// WithCatalog selects the message catalog used for error text.
func WithCatalog(catalog locale.Catalog) Option {
	return func(cfg *config) {
		cfg.catalog = catalog
		cfg.catalogSet = true
	}
}

// Validator checks field values against their type constraints and the
// rules declared on the model.
type Validator struct {
	email    *regexp.Regexp
	phone    *regexp.Regexp
	catalog  locale.Catalog
	mu       sync.Mutex
	rulesets map[string]rules
}

// New constructs a Validator. It fails when a configured pattern does not
// compile.
func New(options ...Option) (*Validator, error) {
	cfg := config{
		emailPattern: DefaultEmailPattern,
		phonePattern: DefaultPhonePattern,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if !cfg.catalogSet {
		cfg.catalog = locale.For(locale.English)
	}

	email, err := regexp.Compile(cfg.emailPattern)
	if err != nil {
		return nil, fmt.Errorf("validation: email pattern: %w", err)
	}
	phone, err := regexp.Compile(cfg.phonePattern)
	if err != nil {
		return nil, fmt.Errorf("validation: phone pattern: %w", err)
	}

	return &Validator{
		email:    email,
		phone:    phone,
		catalog:  cfg.catalog,
		rulesets: make(map[string]rules),
	}, nil
}

// Must panics when New fails. Useful for package-level defaults in tests.
func Must(v *Validator, err error) *Validator {
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateField checks a single value. Empty optional fields are always
// valid; type and model rules only apply to non-empty values.
func (v *Validator) ValidateField(field model.Field, value string) Result {
	result := Result{Field: field.Name, Valid: true}
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		if field.Required {
			return v.fail(result, v.catalog.Required)
		}
		return result
	}

	switch field.Type {
	case model.FieldTypeEmail:
		if !v.email.MatchString(trimmed) {
			return v.fail(result, v.catalog.InvalidEmail)
		}
	case model.FieldTypeTel:
		if !v.phone.MatchString(trimmed) {
			return v.fail(result, v.catalog.InvalidPhone)
		}
	case model.FieldTypeSelect:
		if len(field.Options) > 0 && !containsOption(field.Options, trimmed) {
			return v.fail(result, v.catalog.InvalidOption)
		}
	}

	if msg := v.rulesFor(field).check(trimmed, v.catalog); msg != "" {
		return v.fail(result, msg)
	}
	return result
}

// ValidateValues checks every field of form against values and returns one
// result per field, in declaration order.
func (v *Validator) ValidateValues(form model.FormModel, values map[string]string) []Result {
	results := make([]Result, 0, len(form.Fields))
	for _, field := range form.Fields {
		results = append(results, v.ValidateField(field, values[field.Name]))
	}
	return results
}

// Invalid filters results down to the failures.
func Invalid(results []Result) []Result {
	var out []Result
	for _, result := range results {
		if !result.Valid {
			out = append(out, result)
		}
	}
	return out
}

// PromptValidator adapts ValidateField to the func(string) error shape that
// terminal prompt libraries expect.
func (v *Validator) PromptValidator(field model.Field) func(string) error {
	return func(value string) error {
		if result := v.ValidateField(field, value); !result.Valid {
			return fmt.Errorf("%s", result.Message)
		}
		return nil
	}
}

func (v *Validator) fail(result Result, message string) Result {
	result.Valid = false
	result.Message = message
	return result
}

func (v *Validator) rulesFor(field model.Field) rules {
	v.mu.Lock()
	defer v.mu.Unlock()

	key := rulesKey(field)
	if cached, ok := v.rulesets[key]; ok {
		return cached
	}
	compiled := collectRules(field)
	v.rulesets[key] = compiled
	return compiled
}

func rulesKey(field model.Field) string {
	var b strings.Builder
	b.WriteString(field.Name)
	for _, rule := range field.Validations {
		b.WriteString("|")
		b.WriteString(rule.Kind)
		b.WriteString("=")
		b.WriteString(rule.Params["value"])
		b.WriteString(rule.Params["pattern"])
	}
	return b.String()
}

type rules struct {
	minLen  *int
	maxLen  *int
	pattern *regexp.Regexp
}

func collectRules(field model.Field) rules {
	var r rules
	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRuleMinLength:
			if val, ok := parseInt(rule.Params["value"]); ok {
				r.minLen = &val
			}
		case model.ValidationRuleMaxLength:
			if val, ok := parseInt(rule.Params["value"]); ok {
				r.maxLen = &val
			}
		case model.ValidationRulePattern:
			if expr := rule.Params["pattern"]; expr != "" {
				if re, err := regexp.Compile(expr); err == nil {
					r.pattern = re
				}
			}
		}
	}
	return r
}

func (r rules) check(value string, catalog locale.Catalog) string {
	length := utf8.RuneCountInString(value)
	if r.minLen != nil && length < *r.minLen {
		return catalog.TooShortFor(*r.minLen)
	}
	if r.maxLen != nil && length > *r.maxLen {
		return catalog.TooLongFor(*r.maxLen)
	}
	if r.pattern != nil && !r.pattern.MatchString(value) {
		return catalog.PatternMismatch
	}
	return ""
}

func containsOption(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}

func parseInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(strings.TrimSpace(raw))
	return val, err == nil
}
