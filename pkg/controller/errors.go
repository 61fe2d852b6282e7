package controller

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formrelay/pkg/transport"
	"github.com/goliatone/go-formrelay/pkg/validation"
)

var (
	// ErrSubmissionInFlight is returned by Submit when a cycle is already
	// running. Nothing was changed and nothing was sent.
	ErrSubmissionInFlight = errors.New("controller: submission already in flight")
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("controller: closed")
)

// ValidationError lists the fields that failed validation. It never reaches
// the transport.
type ValidationError struct {
	Fields []validation.Result
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "controller: form is invalid"
	}
	names := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		names = append(names, field.Field)
	}
	return fmt.Sprintf("controller: %d invalid field(s): %s", len(e.Fields), strings.Join(names, ", "))
}

// FieldErrors maps field names to their messages.
func (e *ValidationError) FieldErrors() map[string][]string {
	if e == nil {
		return nil
	}
	out := make(map[string][]string, len(e.Fields))
	for _, field := range e.Fields {
		out[field.Field] = append(out[field.Field], field.Message)
	}
	return out
}

// TransportError is one failed delivery attempt. Attempts are numbered from 1.
type TransportError struct {
	Attempt    int
	Network    bool
	StatusCode int
	Err        error
}

func newTransportError(attempt int, err error) *TransportError {
	return &TransportError{
		Attempt:    attempt,
		Network:    transport.IsNetwork(err),
		StatusCode: transport.StatusCode(err),
		Err:        err,
	}
}

func (e *TransportError) Error() string {
	if e == nil {
		return "controller: transport error"
	}
	return fmt.Sprintf("controller: attempt %d failed: %v", e.Attempt, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExhaustedRetriesError ends a cycle whose attempts all failed. The user can
// resubmit. Cause is set when the context ended the cycle before the retry
// budget ran out.
type ExhaustedRetriesError struct {
	Attempts int
	Last     *TransportError
	Cause    error
}

func (e *ExhaustedRetriesError) Error() string {
	if e == nil {
		return "controller: retries exhausted"
	}
	msg := fmt.Sprintf("controller: retries exhausted after %d attempt(s)", e.Attempts)
	if e.Last != nil {
		msg += fmt.Sprintf(": %v", e.Last.Err)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (%v)", e.Cause)
	}
	return msg
}

func (e *ExhaustedRetriesError) Unwrap() []error {
	if e == nil {
		return nil
	}
	var errs []error
	if e.Last != nil {
		errs = append(errs, e.Last)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Network reports whether the final failure was a connectivity problem.
func (e *ExhaustedRetriesError) Network() bool {
	return e != nil && e.Last != nil && e.Last.Network
}
