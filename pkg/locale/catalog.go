// Package locale holds the user-facing strings for field errors and status
// messages. The brochure sites are Portuguese; English is the default.
package locale

import (
	"fmt"
	"strings"
)

const (
	English    = "en"
	Portuguese = "pt-BR"
)

// Catalog is the set of strings a controller and its validators show.
// TooShort and TooLong take the limit as their only verb.
type Catalog struct {
	Required        string
	InvalidEmail    string
	InvalidPhone    string
	TooShort        string
	TooLong         string
	PatternMismatch string
	InvalidOption   string

	Sending        string
	Sent           string
	FixErrors      string
	GenericFailure string
	NetworkFailure string
	NotConfigured  string
	InFlight       string
	RateLimited    string
	SubmitLabel    string
	BusyLabel      string
}

var catalogs = map[string]Catalog{
	English: {
		Required:        "This field is required",
		InvalidEmail:    "Please enter a valid email address",
		InvalidPhone:    "Please enter a valid phone number",
		TooShort:        "Must be at least %d characters",
		TooLong:         "Must be at most %d characters",
		PatternMismatch: "Please match the requested format",
		InvalidOption:   "Please choose one of the listed options",
		Sending:         "Sending your message...",
		Sent:            "Message sent! We will get back to you soon.",
		FixErrors:       "Please fill in all required fields",
		GenericFailure:  "Something went wrong while sending the form. Please try again.",
		NetworkFailure:  "Connection error. Check your network and try again.",
		NotConfigured:   "The form endpoint is not configured",
		InFlight:        "Your message is already being sent",
		RateLimited:     "Too many attempts. Please wait a moment and try again.",
		SubmitLabel:     "Send",
		BusyLabel:       "Sending...",
	},
	Portuguese: {
		Required:        "Este campo é obrigatório",
		InvalidEmail:    "Por favor, insira um e-mail válido",
		InvalidPhone:    "Por favor, insira um telefone válido",
		TooShort:        "Use pelo menos %d caracteres",
		TooLong:         "Use no máximo %d caracteres",
		PatternMismatch: "Por favor, siga o formato solicitado",
		InvalidOption:   "Por favor, escolha uma das opções",
		Sending:         "Enviando sua mensagem...",
		Sent:            "Mensagem enviada com sucesso! Entrarei em contato em breve.",
		FixErrors:       "Por favor, preencha todos os campos obrigatórios",
		GenericFailure:  "Ocorreu um erro ao enviar o formulário. Por favor, tente novamente.",
		NetworkFailure:  "Erro de conexão. Verifique sua internet e tente novamente.",
		NotConfigured:   "Configure a URL do Google Script",
		InFlight:        "Sua mensagem já está sendo enviada",
		RateLimited:     "Muitas tentativas. Aguarde um momento e tente novamente.",
		SubmitLabel:     "Enviar",
		BusyLabel:       "Enviando...",
	},
}

// For returns the catalog for locale. Lookups are case-insensitive and fall
// back from "pt" or "pt_BR" to Portuguese; anything unknown gets English.
func For(locale string) Catalog {
	return catalogs[Normalize(locale)]
}

// Normalize maps a locale tag onto one of the supported catalogs.
func Normalize(locale string) string {
	tag := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	if tag == "pt" || strings.HasPrefix(tag, "pt-") {
		return Portuguese
	}
	return English
}

// Supported lists the available locales.
func Supported() []string {
	return []string{English, Portuguese}
}

// TooShortFor formats the minimum length message.
func (c Catalog) TooShortFor(limit int) string {
	return fmt.Sprintf(c.TooShort, limit)
}

// TooLongFor formats the maximum length message.
func (c Catalog) TooLongFor(limit int) string {
	return fmt.Sprintf(c.TooLong, limit)
}
