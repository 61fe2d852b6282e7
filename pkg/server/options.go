package server

import (
	"io/fs"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-formrelay/pkg/controller"
	"github.com/goliatone/go-formrelay/pkg/model"
	"github.com/goliatone/go-formrelay/pkg/render"
	"github.com/goliatone/go-formrelay/pkg/transport"
	"github.com/goliatone/go-formrelay/pkg/validation"
)

const (
	DefaultSubmitPath = "/contact"
	DefaultRateLimit  = rate.Limit(1)
	DefaultBurst      = 3
	DefaultIdleTTL    = 3 * time.Minute
)

type Options struct {
	Form      model.FormModel
	Transport transport.Transport
	Renderer  render.Renderer
	Validator *validation.Validator
	// ValidatorOptions apply to the per-locale validators built when no
	// Validator is set.
	ValidatorOptions []validation.Option
	Theme     *theme.RendererConfig
	Logger    *zap.Logger

	// Controller carries retry tunables. Auto-dismiss does not apply to
	// request/response pages and is forced off.
	Controller        controller.Config
	ControllerOptions []controller.Option

	// Locale fixes the page language. Empty picks it from Accept-Language.
	Locale string

	SubmitPath string
	Assets     fs.FS

	// RateLimit and Burst bound submits per client address. A zero
	// RateLimit disables limiting.
	RateLimit rate.Limit
	Burst     int
	IdleTTL   time.Duration

	Now func() time.Time
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		Form:       model.DefaultContactForm(),
		Controller: controller.DefaultConfig(),
		SubmitPath: DefaultSubmitPath,
		RateLimit:  DefaultRateLimit,
		Burst:      DefaultBurst,
		IdleTTL:    DefaultIdleTTL,
		Now:        time.Now,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.SubmitPath == "" {
		opts.SubmitPath = DefaultSubmitPath
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultBurst
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Controller.DismissAfter = 0
	return opts
}

func WithForm(form model.FormModel) OptionFn {
	return func(o *Options) { o.Form = form }
}

func WithTransport(tr transport.Transport) OptionFn {
	return func(o *Options) { o.Transport = tr }
}

func WithRenderer(r render.Renderer) OptionFn {
	return func(o *Options) { o.Renderer = r }
}

func WithValidator(v *validation.Validator) OptionFn {
	return func(o *Options) { o.Validator = v }
}

func WithValidatorOptions(opts ...validation.Option) OptionFn {
	return func(o *Options) { o.ValidatorOptions = append(o.ValidatorOptions, opts...) }
}

func WithTheme(cfg *theme.RendererConfig) OptionFn {
	return func(o *Options) { o.Theme = cfg }
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) { o.Logger = logger }
}

func WithControllerConfig(cfg controller.Config) OptionFn {
	return func(o *Options) { o.Controller = cfg }
}

// WithControllerOptions appends options applied to every per-form
// controller (custom waits in tests, for instance).
func WithControllerOptions(opts ...controller.Option) OptionFn {
	return func(o *Options) { o.ControllerOptions = append(o.ControllerOptions, opts...) }
}

func WithLocale(locale string) OptionFn {
	return func(o *Options) { o.Locale = locale }
}

func WithSubmitPath(path string) OptionFn {
	return func(o *Options) { o.SubmitPath = path }
}

func WithAssets(files fs.FS) OptionFn {
	return func(o *Options) { o.Assets = files }
}

func WithRateLimit(limit rate.Limit, burst int) OptionFn {
	return func(o *Options) {
		o.RateLimit = limit
		o.Burst = burst
	}
}

func WithClock(now func() time.Time) OptionFn {
	return func(o *Options) { o.Now = now }
}
