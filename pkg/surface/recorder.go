package surface

import (
	"sort"
	"sync"

	"github.com/goliatone/go-formrelay/pkg/status"
)

// Recorder is an in-memory Surface and Events source. The HTTP host fills
// one per request and renders from it; tests use it to observe what a
// controller did.
type Recorder struct {
	mu          sync.Mutex
	values      map[string]string
	errors      map[string]string
	invalid     map[string]bool
	busy        bool
	busyChanges []bool
	current     status.Message
	history     []status.Message
	scrolls     []Target
	resets      int

	subMu       sync.Mutex
	nextID      int
	subscribers map[int]func(Event)
}

var (
	_ Surface = (*Recorder)(nil)
	_ Events  = (*Recorder)(nil)
)

// NewRecorder seeds a recorder with field values.
func NewRecorder(values map[string]string) *Recorder {
	r := &Recorder{
		values:      make(map[string]string, len(values)),
		errors:      make(map[string]string),
		invalid:     make(map[string]bool),
		subscribers: make(map[int]func(Event)),
	}
	for key, value := range values {
		r.values[key] = value
	}
	return r
}

// Values returns a copy of the current values.
func (r *Recorder) Values() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyStrings(r.values)
}

// SetValue updates one field value, as typing would.
func (r *Recorder) SetValue(field, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[field] = value
}

func (r *Recorder) SetFieldError(field, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[field] = message
	r.invalid[field] = true
}

func (r *Recorder) ClearFieldError(field string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.errors, field)
	delete(r.invalid, field)
}

func (r *Recorder) SetSubmitBusy(busy bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.busy = busy
	r.busyChanges = append(r.busyChanges, busy)
}

func (r *Recorder) ShowStatus(msg status.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = msg
	r.history = append(r.history, msg)
}

func (r *Recorder) ClearStatus() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = status.Message{}
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
	for key := range r.values {
		r.values[key] = ""
	}
}

func (r *Recorder) ScrollIntoView(target Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrolls = append(r.scrolls, target)
}

// FieldErrors returns a copy of the inline errors currently shown.
func (r *Recorder) FieldErrors() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyStrings(r.errors)
}

// FieldErrorList returns the inline errors as map[string][]string, the shape
// renderers consume.
func (r *Recorder) FieldErrorList() map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errors) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.errors))
	for field, message := range r.errors {
		out[field] = []string{message}
	}
	return out
}

// Invalid reports whether the field carries the invalid flag.
func (r *Recorder) Invalid(field string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invalid[field]
}

// InvalidFields lists flagged fields in sorted order.
func (r *Recorder) InvalidFields() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.invalid))
	for field := range r.invalid {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Busy reports whether the submit affordance is currently disabled.
func (r *Recorder) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy
}

// BusyChanges returns every SetSubmitBusy call in order.
func (r *Recorder) BusyChanges() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.busyChanges...)
}

// Status returns the message currently displayed (zero when cleared).
func (r *Recorder) Status() status.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// StatusHistory returns every message shown, oldest first.
func (r *Recorder) StatusHistory() []status.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]status.Message(nil), r.history...)
}

// Scrolls returns every ScrollIntoView target in order.
func (r *Recorder) Scrolls() []Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Target(nil), r.scrolls...)
}

// Resets counts Reset calls.
func (r *Recorder) Resets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resets
}

// Subscribe registers fn for events emitted through Emit.
func (r *Recorder) Subscribe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	r.subMu.Lock()
	id := r.nextID
	r.nextID++
	r.subscribers[id] = fn
	r.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.subMu.Lock()
			delete(r.subscribers, id)
			r.subMu.Unlock()
		})
	}
}

// Emit delivers an event to every subscriber synchronously.
func (r *Recorder) Emit(event Event) {
	r.subMu.Lock()
	subs := make([]func(Event), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		subs = append(subs, fn)
	}
	r.subMu.Unlock()

	for _, fn := range subs {
		fn(event)
	}
}

func copyStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
