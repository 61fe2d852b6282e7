// Package surface describes the UI collaborator a form controller drives:
// where values are read from, and where field errors, the submit affordance
// and status messages are written to. Hosts (an HTML page, a terminal
// session, a test) implement Surface; the controller never owns layout.
package surface

import "github.com/goliatone/go-formrelay/pkg/status"

// Target names an element the controller may bring into view.
type Target string

const (
	TargetForm   Target = "form"
	TargetStatus Target = "status"
)

// Surface is the set of UI operations a controller needs.
type Surface interface {
	// Values returns the current field values keyed by field name.
	Values() map[string]string
	// SetFieldError renders an inline error next to the field and flags it
	// as invalid for assistive technology.
	SetFieldError(field, message string)
	// ClearFieldError removes the inline error and the invalid flag.
	ClearFieldError(field string)
	// SetSubmitBusy disables (busy) or re-enables the submit affordance.
	SetSubmitBusy(busy bool)
	ShowStatus(msg status.Message)
	ClearStatus()
	// Reset clears every field value.
	Reset()
	ScrollIntoView(target Target)
}

// EventKind enumerates the UI events a controller reacts to.
type EventKind string

const (
	EventInput  EventKind = "input"
	EventBlur   EventKind = "blur"
	EventSubmit EventKind = "submit"
)

// Event is a single UI interaction. Field is empty for submit events.
type Event struct {
	Kind  EventKind
	Field string
}

// Events is implemented by surfaces that can push UI events to a
// subscriber.
type Events interface {
	Subscribe(fn func(Event)) (unsubscribe func())
}
