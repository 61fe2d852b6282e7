package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrDeclined is returned when the user answers no to the send prompt.
	ErrDeclined = errors.New("tui: submission declined")
)
