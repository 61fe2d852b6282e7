// Package status models the transient messages shown in a form's status
// region.
package status

import (
	"strings"
	"time"
)

// Kind classifies a status message.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// DefaultDismissAfter is how long non-error messages stay visible.
const DefaultDismissAfter = 5 * time.Second

// Message is a user-facing status projection.
type Message struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
}

// Info, Success, Warning and Error build messages of the matching kind.
func Info(text string) Message    { return Message{Text: text, Kind: KindInfo} }
func Success(text string) Message { return Message{Text: text, Kind: KindSuccess} }
func Warning(text string) Message { return Message{Text: text, Kind: KindWarning} }
func Error(text string) Message   { return Message{Text: text, Kind: KindError} }

// AutoDismiss reports whether the message should clear itself. Errors stay
// until replaced.
func (m Message) AutoDismiss() bool {
	return m.Kind != KindError
}

// IsZero reports whether the message carries no text.
func (m Message) IsZero() bool {
	return strings.TrimSpace(m.Text) == ""
}

// Icon returns the glyph rendered ahead of the message text.
func (m Message) Icon() string {
	switch m.Kind {
	case KindSuccess:
		return "✅"
	case KindError:
		return "❌"
	case KindWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// ParseKind normalises a kind name, defaulting to KindInfo.
func ParseKind(raw string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindSuccess:
		return KindSuccess
	case KindWarning:
		return KindWarning
	case KindError:
		return KindError
	default:
		return KindInfo
	}
}
