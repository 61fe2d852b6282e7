package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Encoding selects the request body format.
type Encoding string

const (
	EncodingForm Encoding = "form"
	EncodingJSON Encoding = "json"
)

// Mode controls how responses are interpreted.
type Mode string

const (
	// ModeOpaque treats any HTTP response as delivered without looking at
	// the status or body, matching a browser no-cors request.
	ModeOpaque Mode = "opaque"
	// ModeStrict requires a 2xx status.
	ModeStrict Mode = "strict"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 10 * time.Second

// Option configures an AppsScript transport.
type Option func(*AppsScript)

// WithHTTPClient overrides the client. A zero client Timeout is replaced by
// the configured attempt timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(a *AppsScript) {
		if client != nil {
			a.client = client
		}
	}
}

// WithEncoding selects form or JSON bodies.
func WithEncoding(encoding Encoding) Option {
	return func(a *AppsScript) {
		if encoding != "" {
			a.encoding = encoding
		}
	}
}

// WithMode selects opaque or strict response handling.
func WithMode(mode Mode) Option {
	return func(a *AppsScript) {
		if mode != "" {
			a.mode = mode
		}
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(a *AppsScript) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// WithSanitize toggles markup stripping of payload values (on by default).
func WithSanitize(enabled bool) Option {
	return func(a *AppsScript) {
		a.sanitize = enabled
	}
}

// WithLogger attaches a logger for per-attempt diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(a *AppsScript) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// AppsScript posts payloads to a Google Apps Script web app.
type AppsScript struct {
	endpoint string
	client   *http.Client
	encoding Encoding
	mode     Mode
	timeout  time.Duration
	sanitize bool
	logger   *zap.Logger
}

var _ Transport = (*AppsScript)(nil)

// NewAppsScript validates the endpoint and applies options.
func NewAppsScript(endpoint string, options ...Option) (*AppsScript, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrEndpointMissing
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("transport: parse endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("transport: endpoint scheme %q not supported", parsed.Scheme)
	}

	a := &AppsScript{
		endpoint: endpoint,
		encoding: EncodingForm,
		mode:     ModeOpaque,
		timeout:  DefaultTimeout,
		sanitize: true,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}

	switch {
	case a.client == nil:
		a.client = &http.Client{Timeout: a.timeout}
	case a.client.Timeout == 0:
		clone := *a.client
		clone.Timeout = a.timeout
		a.client = &clone
	}
	return a, nil
}

// Endpoint returns the configured URL.
func (a *AppsScript) Endpoint() string {
	return a.endpoint
}

// Send performs one POST.
func (a *AppsScript) Send(ctx context.Context, payload Payload) error {
	if a.sanitize {
		payload = SanitizePayload(payload)
	}

	body, contentType, err := a.encode(payload)
	if err != nil {
		return &Error{Err: fmt.Errorf("encode payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, strings.NewReader(body))
	if err != nil {
		return &Error{Err: fmt.Errorf("request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := a.client.Do(req)
	if err != nil {
		return &Error{Network: IsNetwork(err), Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	a.logger.Debug("form endpoint responded",
		zap.Int("status", resp.StatusCode),
		zap.String("mode", string(a.mode)),
	)

	if a.mode == ModeStrict && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return &Error{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode),
		}
	}
	return nil
}

func (a *AppsScript) encode(payload Payload) (string, string, error) {
	switch a.encoding {
	case EncodingJSON:
		data, err := payload.JSON()
		if err != nil {
			return "", "", err
		}
		return string(data), "application/json", nil
	default:
		return payload.FormEncode(), "application/x-www-form-urlencoded", nil
	}
}

// ParseEncoding normalises a config value; unknown values map to form.
func ParseEncoding(raw string) Encoding {
	if strings.EqualFold(strings.TrimSpace(raw), string(EncodingJSON)) {
		return EncodingJSON
	}
	return EncodingForm
}

// ParseMode normalises a config value; unknown values map to opaque.
func ParseMode(raw string) Mode {
	if strings.EqualFold(strings.TrimSpace(raw), string(ModeStrict)) {
		return ModeStrict
	}
	return ModeOpaque
}
