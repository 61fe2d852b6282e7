package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-formrelay/pkg/model"
	"github.com/goliatone/go-formrelay/pkg/validation"
)

const leadsDocument = `openapi: 3.0.0
info:
  title: Leads
  version: "1"
paths:
  /leads:
    post:
      operationId: createLead
      requestBody:
        content:
          application/x-www-form-urlencoded:
            schema:
              type: object
              required: [email]
              properties:
                email:
                  type: string
                  format: email
      responses:
        "200":
          description: ok
`

func TestMustFormFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.yaml")
	if err := os.WriteFile(path, []byte(leadsDocument), 0o600); err != nil {
		t.Fatal(err)
	}

	form := MustFormFromFile(t, path, "createLead")
	field, ok := form.Field("email")
	if !ok || field.Type != model.FieldTypeEmail || !field.Required {
		t.Fatalf("unexpected email field %+v", field)
	}
}

func TestLoadDocumentFromPath_Errors(t *testing.T) {
	if _, err := LoadDocumentFromPath(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := LoadDocumentFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestContactValuesAreValid(t *testing.T) {
	v := validation.Must(validation.New())
	invalid := validation.Invalid(v.ValidateValues(model.DefaultContactForm(), ContactValues()))
	if len(invalid) != 0 {
		t.Fatalf("fixture values are invalid: %+v", invalid)
	}
}

func TestWriteMaybeGolden_SkipsWithoutFlag(t *testing.T) {
	t.Setenv("UPDATE_GOLDENS", "")
	path := filepath.Join(t.TempDir(), "out.golden")
	if WriteMaybeGolden(t, path, []byte("x")) {
		t.Fatal("golden written without UPDATE_GOLDENS")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("golden file should not exist: %v", err)
	}
}
