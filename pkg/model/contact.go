package model

import "net/http"

// PlaceholderEndpoint is the unconfigured Apps Script URL shipped with the
// site templates. Controllers warn when they see it.
const PlaceholderEndpoint = "https://script.google.com/macros/s/YOUR_SCRIPT_ID/exec"

// DefaultContactForm returns the quote-request form the brochure sites ship
// with: name, email and phone are required, service and message are not.
func DefaultContactForm() FormModel {
	return FormModel{
		ID:       "orcamentoForm",
		Endpoint: PlaceholderEndpoint,
		Method:   http.MethodPost,
		Title:    "Solicite um orçamento",
		Fields: []Field{
			{
				Name:        "nome",
				Type:        FieldTypeText,
				Required:    true,
				Label:       "Nome",
				Placeholder: "Seu nome completo",
				Validations: []ValidationRule{
					{Kind: ValidationRuleMaxLength, Params: map[string]string{"value": "120"}},
				},
			},
			{
				Name:        "email",
				Type:        FieldTypeEmail,
				Required:    true,
				Label:       "E-mail",
				Placeholder: "voce@exemplo.com",
			},
			{
				Name:        "telefone",
				Type:        FieldTypeTel,
				Required:    true,
				Label:       "Telefone",
				Placeholder: "(11) 98765-4321",
			},
			{
				Name:    "servico",
				Type:    FieldTypeSelect,
				Label:   "Serviço",
				Options: []string{"Consultoria", "Desenvolvimento", "Manutenção", "Outro"},
			},
			{
				Name:        "mensagem",
				Type:        FieldTypeTextarea,
				Label:       "Mensagem",
				Placeholder: "Conte um pouco sobre o seu projeto",
				Validations: []ValidationRule{
					{Kind: ValidationRuleMaxLength, Params: map[string]string{"value": "2000"}},
				},
			},
		},
	}
}
