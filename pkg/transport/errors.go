package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var (
	// ErrEndpointMissing is returned when no endpoint URL was configured.
	ErrEndpointMissing = errors.New("transport: endpoint is required")
	// ErrUnexpectedStatus marks non-2xx responses in strict mode.
	ErrUnexpectedStatus = errors.New("transport: unexpected response status")
)

// Error describes a failed delivery attempt.
type Error struct {
	Network    bool
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "transport: <nil>"
	}
	switch {
	case e.StatusCode > 0:
		return fmt.Sprintf("transport: endpoint responded %d: %v", e.StatusCode, e.Err)
	case e.Network:
		return fmt.Sprintf("transport: network error: %v", e.Err)
	default:
		return fmt.Sprintf("transport: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsNetwork reports whether err should be presented to users as a
// connectivity problem: dial, DNS and timeout failures, client-level URL
// errors, and any error whose text mentions the network.
func IsNetwork(err error) bool {
	if err == nil {
		return false
	}
	var transportErr *Error
	if errors.As(err, &transportErr) && transportErr.Network {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "network")
}

// StatusCode extracts the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var transportErr *Error
	if errors.As(err, &transportErr) {
		return transportErr.StatusCode
	}
	return 0
}
