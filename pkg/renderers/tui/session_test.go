package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrelay/pkg/locale"
	"github.com/goliatone/go-formrelay/pkg/model"
	"github.com/goliatone/go-formrelay/pkg/render"
	"github.com/goliatone/go-formrelay/pkg/status"
	"github.com/goliatone/go-formrelay/pkg/validation"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int

	inputConfigs  []InputConfig
	selectConfigs []SelectConfig
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputConfigs = append(s.inputConfigs, cfg)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectConfigs = append(s.selectConfigs, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func scriptedContactDriver() *stubDriver {
	return &stubDriver{
		inputs:    []string{" Maria ", "maria@example.com", "11987654321"},
		selectIdx: []int{1},
		textAreas: []string{"Olá"},
	}
}

func TestSession_CollectPromptsEveryField(t *testing.T) {
	driver := scriptedContactDriver()
	v := validation.Must(validation.New())
	session := NewSession(model.DefaultContactForm(), WithPromptDriver(driver), WithValidator(v))

	values, err := session.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := map[string]string{
		"nome":     "Maria",
		"email":    "maria@example.com",
		"telefone": "11987654321",
		"servico":  "Consultoria",
		"mensagem": "Olá",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	if len(driver.inputConfigs) != 3 || driver.inputConfigs[0].Message != "Nome *" {
		t.Fatalf("unexpected input prompts %+v", driver.inputConfigs)
	}
	if driver.inputConfigs[1].Validator == nil {
		t.Fatalf("expected validator wired into prompts")
	}
	if err := driver.inputConfigs[1].Validator("nope"); err == nil {
		t.Fatalf("expected email validator to reject garbage")
	}
	if got := driver.selectConfigs[0].Options[0]; got != "" {
		t.Fatalf("optional select should offer an empty choice first, got %q", got)
	}
}

func TestSession_CollectInvalidOnlyReasksFlagged(t *testing.T) {
	driver := &stubDriver{inputs: []string{"a@b.com"}}
	session := NewSession(model.DefaultContactForm(), WithPromptDriver(driver))
	session.SetValue("nome", "Maria")
	session.SetValue("email", "bad")
	session.SetFieldError("email", "invalid")

	values, err := session.CollectInvalid(context.Background())
	if err != nil {
		t.Fatalf("collect invalid: %v", err)
	}
	if values["email"] != "a@b.com" || values["nome"] != "Maria" {
		t.Fatalf("unexpected values %v", values)
	}
	if driver.inputConfigs[0].Default != "bad" {
		t.Fatalf("expected previous answer as default, got %q", driver.inputConfigs[0].Default)
	}
}

func TestSession_ConfirmDeclined(t *testing.T) {
	driver := scriptedContactDriver()
	driver.confirm = []bool{false}
	session := NewSession(model.DefaultContactForm(), WithPromptDriver(driver), WithConfirm(true))

	if _, err := session.Collect(context.Background()); !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
}

func TestSession_SurfaceOutput(t *testing.T) {
	driver := &stubDriver{}
	session := NewSession(model.DefaultContactForm(),
		WithPromptDriver(driver),
		WithCatalog(locale.For(locale.Portuguese)),
	)

	session.SetFieldError("telefone", "Por favor, insira um telefone válido")
	session.SetSubmitBusy(true)
	session.SetSubmitBusy(true)
	session.ShowStatus(status.Success("Mensagem enviada"))
	session.SetValue("nome", "x")
	session.Reset()

	want := []string{
		"❌ Telefone: Por favor, insira um telefone válido",
		"? Enviando...",
		"✅ Mensagem enviada",
	}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if len(session.Values()) != 0 {
		t.Fatalf("expected reset to clear values")
	}
	if session.Status().Kind != status.KindSuccess {
		t.Fatalf("expected status retained until cleared")
	}
	session.ClearStatus()
	if !session.Status().IsZero() {
		t.Fatalf("expected status cleared")
	}
}

func TestRenderer_RenderSerializesAnswers(t *testing.T) {
	driver := scriptedContactDriver()
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if r.ContentType() != "application/json" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}

	out, err := r.Render(context.Background(), model.DefaultContactForm(), render.RenderOptions{
		Status: status.Warning("Configure a URL do Google Script"),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["email"] != "maria@example.com" {
		t.Fatalf("unexpected payload %v", decoded)
	}
	if len(driver.infoMessages) == 0 || !strings.Contains(driver.infoMessages[0], "Google Script") {
		t.Fatalf("expected status printed before prompting, got %v", driver.infoMessages)
	}
}

func TestRenderer_PrettyFormat(t *testing.T) {
	r, err := New(WithPromptDriver(scriptedContactDriver()), WithOutputFormat(OutputFormatPrettyText))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), model.DefaultContactForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(string(out), "Nome: Maria\nE-mail: maria@example.com\n") {
		t.Fatalf("unexpected pretty output %q", out)
	}
}
