package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrelay/pkg/locale"
	"github.com/goliatone/go-formrelay/pkg/model"
)

func newValidator(t *testing.T, opts ...Option) *Validator {
	t.Helper()
	v, err := New(opts...)
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	return v
}

func TestValidateField_TypeConstraints(t *testing.T) {
	v := newValidator(t)

	email := model.Field{Name: "email", Type: model.FieldTypeEmail, Required: true}
	phone := model.Field{Name: "telefone", Type: model.FieldTypeTel, Required: true}

	cases := []struct {
		name  string
		field model.Field
		value string
		valid bool
	}{
		{"email rejects missing at", email, "not-an-email", false},
		{"email accepts simple", email, "a@b.com", true},
		{"email rejects spaces", email, "a b@c.com", false},
		{"phone accepts bare digits", phone, "11987654321", true},
		{"phone accepts grouped", phone, "(11) 98765-4321", true},
		{"phone accepts landline", phone, "11 3456-7890", true},
		{"phone rejects letters", phone, "abc", false},
		{"phone rejects short", phone, "12345", false},
		{"required empty", email, "   ", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := v.ValidateField(tc.field, tc.value)
			if got.Valid != tc.valid {
				t.Fatalf("ValidateField(%q) valid = %v, want %v (%q)", tc.value, got.Valid, tc.valid, got.Message)
			}
			if !got.Valid && got.Message == "" {
				t.Fatalf("expected a message for invalid value")
			}
		})
	}
}

func TestValidateField_OptionalEmptyIsValid(t *testing.T) {
	v := newValidator(t)
	field := model.Field{Name: "telefone", Type: model.FieldTypeTel}

	if got := v.ValidateField(field, ""); !got.Valid {
		t.Fatalf("expected optional empty phone to pass, got %q", got.Message)
	}
	if got := v.ValidateField(field, "abc"); got.Valid {
		t.Fatalf("expected optional non-empty phone to be checked")
	}
}

func TestValidateField_ModelRules(t *testing.T) {
	v := newValidator(t)
	field := model.Field{
		Name: "codigo",
		Type: model.FieldTypeText,
		Validations: []model.ValidationRule{
			{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "3"}},
			{Kind: model.ValidationRuleMaxLength, Params: map[string]string{"value": "5"}},
			{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": `^[a-z]+$`}},
		},
	}

	cases := map[string]string{
		"ab":     "Must be at least 3 characters",
		"abcdef": "Must be at most 5 characters",
		"ab12":   "Please match the requested format",
		"abcd":   "",
	}
	for value, want := range cases {
		if got := v.ValidateField(field, value).Message; got != want {
			t.Errorf("ValidateField(%q) message = %q, want %q", value, got, want)
		}
	}
}

func TestValidateField_SelectOptions(t *testing.T) {
	v := newValidator(t)
	field := model.Field{Name: "servico", Type: model.FieldTypeSelect, Options: []string{"A", "B"}}

	if got := v.ValidateField(field, "B"); !got.Valid {
		t.Fatalf("expected listed option to pass")
	}
	if got := v.ValidateField(field, "C"); got.Valid {
		t.Fatalf("expected unlisted option to fail")
	}
}

func TestValidateField_CustomPhonePattern(t *testing.T) {
	v := newValidator(t, WithPhonePattern(`^\+\d{11,13}$`))
	field := model.Field{Name: "phone", Type: model.FieldTypeTel}

	if got := v.ValidateField(field, "+5511987654321"); !got.Valid {
		t.Fatalf("expected custom pattern to accept E.164 number")
	}
	if got := v.ValidateField(field, "11987654321"); got.Valid {
		t.Fatalf("expected custom pattern to reject bare digits")
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	if _, err := New(WithPhonePattern("(")); err == nil {
		t.Fatalf("expected compile error for invalid phone pattern")
	}
}

func TestValidateValues_AllRequiredEmpty(t *testing.T) {
	v := newValidator(t, WithCatalog(locale.For(locale.Portuguese)))
	form := model.DefaultContactForm()

	invalid := Invalid(v.ValidateValues(form, map[string]string{}))

	want := []Result{
		{Field: "nome", Valid: false, Message: "Este campo é obrigatório"},
		{Field: "email", Valid: false, Message: "Este campo é obrigatório"},
		{Field: "telefone", Valid: false, Message: "Este campo é obrigatório"},
	}
	if diff := cmp.Diff(want, invalid); diff != "" {
		t.Fatalf("invalid results mismatch (-want +got):\n%s", diff)
	}
}

func TestPromptValidator(t *testing.T) {
	v := newValidator(t)
	check := v.PromptValidator(model.Field{Name: "email", Type: model.FieldTypeEmail, Required: true})

	if err := check("a@b.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := check("nope"); err == nil {
		t.Fatalf("expected error for invalid email")
	}
}
