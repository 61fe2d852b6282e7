package controller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrelay/pkg/locale"
	"github.com/goliatone/go-formrelay/pkg/status"
	"github.com/goliatone/go-formrelay/pkg/validation"
)

const (
	DefaultMaxRetries = 2
	DefaultRetryDelay = time.Second
	DefaultDebounce   = 300 * time.Millisecond
)

// Config holds the tunables injected at construction.
type Config struct {
	// Endpoint is only used to warn about an unconfigured form; delivery is
	// the transport's business.
	Endpoint string
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// RetryDelay is the fixed wait between attempts.
	RetryDelay time.Duration
	// DismissAfter is how long non-error statuses stay visible. Zero
	// disables auto-dismiss.
	DismissAfter time.Duration
	// Debounce delays validation after input events.
	Debounce time.Duration
	Locale   string
}

// DefaultConfig returns the observed production values: two retries one
// second apart, statuses dismissed after five seconds.
func DefaultConfig() Config {
	return Config{
		MaxRetries:   DefaultMaxRetries,
		RetryDelay:   DefaultRetryDelay,
		DismissAfter: status.DefaultDismissAfter,
		Debounce:     DefaultDebounce,
		Locale:       locale.English,
	}
}

func (c Config) normalized() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = 0
	}
	if c.DismissAfter < 0 {
		c.DismissAfter = 0
	}
	if c.Debounce < 0 {
		c.Debounce = 0
	}
	return c
}

// Option customises a Controller.
type Option func(*Controller)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

// WithLogger sets the operator-facing diagnostic channel.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithValidator injects a preconfigured validator (custom phone pattern,
// locale). When omitted one is built from the config locale.
func WithValidator(v *validation.Validator) Option {
	return func(c *Controller) {
		if v != nil {
			c.validator = v
		}
	}
}

// WithCatalog overrides the status and error strings.
func WithCatalog(catalog locale.Catalog) Option {
	return func(c *Controller) {
		c.catalog = catalog
		c.catalogSet = true
	}
}

// WithClock overrides the time source used for payload timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithWait overrides how the controller waits between retries.
func WithWait(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Controller) {
		if wait != nil {
			c.wait = wait
		}
	}
}

// WithIDGenerator overrides how submission ids are minted for log
// correlation.
func WithIDGenerator(next func() string) Option {
	return func(c *Controller) {
		if next != nil {
			c.newID = next
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
