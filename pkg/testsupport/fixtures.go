package testsupport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrelay/pkg/model"
	"github.com/goliatone/go-formrelay/pkg/openapi"
)

// ContactValues returns a submission that passes validation for the
// default contact form.
func ContactValues() map[string]string {
	return map[string]string{
		"nome":     "Maria Silva",
		"email":    "maria@example.com",
		"telefone": "11987654321",
		"servico":  "Consultoria",
		"mensagem": "Gostaria de um orçamento.",
	}
}

// LoadDocument reads an OpenAPI fixture from disk.
func LoadDocument(t *testing.T, path string) openapi.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T.
func LoadDocumentFromPath(path string) (openapi.Document, error) {
	if path == "" {
		return openapi.Document{}, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return openapi.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := openapi.NewDocument(openapi.SourceFromFile(path), data)
	if err != nil {
		return openapi.Document{}, fmt.Errorf("testsupport: new document: %w", err)
	}
	return doc, nil
}

// MustFormFromFile loads path and converts operationID into a form model.
func MustFormFromFile(t *testing.T, path, operationID string) model.FormModel {
	t.Helper()

	doc := LoadDocument(t, path)
	form, err := openapi.FormFromDocument(context.Background(), doc, operationID)
	if err != nil {
		t.Fatalf("form from %s: %v", path, err)
	}
	return form
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGoldenString reads a golden file.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
