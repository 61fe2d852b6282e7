// Package transport delivers serialized form payloads to the remote form
// handler. The handler is opaque: a deployed Google Apps Script web app that
// appends rows to a spreadsheet.
package transport

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
)

// TimestampField is the payload key carrying the submission time.
const TimestampField = "timestamp"

// Payload is the flat name/value body sent to the endpoint.
type Payload map[string]string

// Clone returns an independent copy.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for key, value := range p {
		out[key] = value
	}
	return out
}

// Keys lists payload keys in sorted order.
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// FormEncode serializes the payload as application/x-www-form-urlencoded.
func (p Payload) FormEncode() string {
	values := url.Values{}
	for key, value := range p {
		if strings.TrimSpace(key) == "" {
			continue
		}
		values.Set(key, value)
	}
	return values.Encode()
}

// JSON serializes the payload as a JSON object with sorted keys.
func (p Payload) JSON() ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(p))
}

// Transport sends one payload. Implementations return nil once the payload
// is considered delivered.
type Transport interface {
	Send(ctx context.Context, payload Payload) error
}

// Func adapts a plain function to Transport.
type Func func(ctx context.Context, payload Payload) error

// Send calls f.
func (f Func) Send(ctx context.Context, payload Payload) error {
	return f(ctx, payload)
}
