package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-formrelay/pkg/model"
	"github.com/goliatone/go-formrelay/pkg/status"
	"github.com/goliatone/go-formrelay/pkg/surface"
)

// Session is a terminal surface for one form: Collect fills the values
// through prompts, and the controller's feedback prints as lines.
type Session struct {
	settings settings
	form     model.FormModel

	mu     sync.Mutex
	values map[string]string
	errors map[string]string
	status status.Message
	busy   bool
}

var _ surface.Surface = (*Session)(nil)

// NewSession builds a session for form.
func NewSession(form model.FormModel, options ...Option) *Session {
	return &Session{
		settings: newSettings(options),
		form:     form,
		values:   make(map[string]string),
		errors:   make(map[string]string),
	}
}

// Collect prompts for every field, offering previous answers as defaults.
func (s *Session) Collect(ctx context.Context) (map[string]string, error) {
	return s.collect(ctx, s.form.Fields)
}

// CollectInvalid prompts again only for fields currently flagged invalid.
func (s *Session) CollectInvalid(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	var fields []model.Field
	for _, field := range s.form.Fields {
		if _, bad := s.errors[field.Name]; bad {
			fields = append(fields, field)
		}
	}
	s.mu.Unlock()
	return s.collect(ctx, fields)
}

func (s *Session) collect(ctx context.Context, fields []model.Field) (map[string]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, field := range fields {
		value, err := s.ask(ctx, field)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.values[field.Name] = strings.TrimSpace(value)
		s.mu.Unlock()
	}

	if s.settings.confirm {
		ok, err := s.settings.driver.Confirm(ctx, ConfirmConfig{
			Message: s.settings.catalog.SubmitLabel + "?",
			Default: true,
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDeclined
		}
	}
	return s.Values(), nil
}

func (s *Session) ask(ctx context.Context, field model.Field) (string, error) {
	s.mu.Lock()
	current := s.values[field.Name]
	s.mu.Unlock()

	message := model.LabelFor(field)
	if field.Required {
		message += " *"
	}
	var validate func(string) error
	if s.settings.validator != nil {
		validate = s.settings.validator.PromptValidator(field)
	}

	switch field.Type {
	case model.FieldTypeSelect:
		options := field.Options
		offset := 0
		if !field.Required {
			options = append([]string{""}, field.Options...)
			offset = 1
		}
		defaultIndex := -1
		for i, option := range field.Options {
			if option == current {
				defaultIndex = i + offset
			}
		}
		idx, err := s.settings.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: defaultIndex,
			Help:         field.Description,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(options) {
			return "", nil
		}
		return options[idx], nil
	case model.FieldTypeTextarea:
		return s.settings.driver.TextArea(ctx, TextAreaConfig{
			Message:   message,
			Default:   current,
			Help:      field.Description,
			Validator: validate,
		})
	default:
		return s.settings.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   current,
			Help:      field.Description,
			Validator: validate,
		})
	}
}

// Values returns a copy of the collected answers.
func (s *Session) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.values))
	for key, value := range s.values {
		out[key] = value
	}
	return out
}

// SetValue seeds an answer, used as the prompt default.
func (s *Session) SetValue(field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[field] = value
}

func (s *Session) SetFieldError(field, message string) {
	s.mu.Lock()
	s.errors[field] = message
	s.mu.Unlock()

	label := field
	if f, ok := s.form.Field(field); ok {
		label = model.LabelFor(f)
	}
	s.print(fmt.Sprintf("%s %s: %s", s.settings.theme.ErrorPrefix, label, message))
}

func (s *Session) ClearFieldError(field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.errors, field)
}

// FieldErrors returns the current inline errors.
func (s *Session) FieldErrors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.errors))
	for key, value := range s.errors {
		out[key] = value
	}
	return out
}

func (s *Session) SetSubmitBusy(busy bool) {
	s.mu.Lock()
	changed := s.busy != busy
	s.busy = busy
	s.mu.Unlock()
	if busy && changed {
		s.print(fmt.Sprintf("%s %s", s.settings.theme.PromptPrefix, s.settings.catalog.BusyLabel))
	}
}

func (s *Session) ShowStatus(msg status.Message) {
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
	if msg.IsZero() {
		return
	}
	s.print(fmt.Sprintf("%s %s", msg.Icon(), msg.Text))
}

func (s *Session) ClearStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status.Message{}
}

// Status returns the last status shown.
func (s *Session) Status() status.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Reset forgets every answer.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
}

// ScrollIntoView is a no-op in a terminal; output already follows the
// cursor.
func (s *Session) ScrollIntoView(surface.Target) {}

func (s *Session) print(line string) {
	_ = s.settings.driver.Info(context.Background(), strings.TrimSpace(line))
}
