// Package controller owns the lifecycle of a contact-form submission:
// field validation, the submitting flag that keeps cycles from
// overlapping, delivery with bounded retry, and the status messages shown
// to the user.
//
// A Controller is bound to one form instance. It reads values from and
// writes feedback to a surface.Surface, and hands serialized payloads to a
// transport.Transport. Hosts wire UI events either by calling ValidateField,
// ValidateForm and Submit directly, or by passing a surface.Events source to
// Bind.
//
// One submission cycle moves through these phases:
//
//	Idle -> Validating -> Invalid -> Idle
//	                   -> Submitting -> Success -> Idle
//	                                 -> Retrying* -> Success -> Idle
//	                                              -> Failed  -> Idle
//
// Submit while a cycle is in flight returns ErrSubmissionInFlight without
// touching state or the network.
package controller
