// Package config loads the relay configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formrelay/pkg/controller"
	"github.com/goliatone/go-formrelay/pkg/locale"
	"github.com/goliatone/go-formrelay/pkg/model"
	"github.com/goliatone/go-formrelay/pkg/transport"
)

const (
	DefaultListen    = ":8080"
	DefaultRateEvery = time.Second
	DefaultRateBurst = 3
	EnvPrefix        = "FORMRELAY_"
)

// Duration is a time.Duration written as a Go duration string ("1s",
// "250ms") in YAML.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("config: line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

type RateLimit struct {
	// Every is the minimum spacing between submits from one client. Zero
	// disables limiting.
	Every Duration `yaml:"every"`
	Burst int      `yaml:"burst"`
}

type Assets struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

type Variant struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
	Assets    Assets            `yaml:"assets"`
}

type Manifest struct {
	Name      string             `yaml:"name"`
	Version   string             `yaml:"version"`
	Tokens    map[string]string  `yaml:"tokens"`
	Templates map[string]string  `yaml:"templates"`
	Assets    Assets             `yaml:"assets"`
	Variants  map[string]Variant `yaml:"variants"`
}

type Theme struct {
	Name      string     `yaml:"name"`
	Variant   string     `yaml:"variant"`
	Manifests []Manifest `yaml:"manifests"`
}

type Config struct {
	Endpoint     string    `yaml:"endpoint"`
	Encoding     string    `yaml:"encoding"`
	Mode         string    `yaml:"mode"`
	Timeout      Duration  `yaml:"timeout"`
	Sanitize     bool      `yaml:"sanitize"`
	MaxRetries   int       `yaml:"max_retries"`
	RetryDelay   Duration  `yaml:"retry_delay"`
	DismissAfter Duration  `yaml:"dismiss_after"`
	Debounce     Duration  `yaml:"debounce"`
	PhonePattern string    `yaml:"phone_pattern"`
	Locale       string    `yaml:"locale"`
	Listen       string    `yaml:"listen"`
	RateLimit    RateLimit `yaml:"rate_limit"`
	Schema       string    `yaml:"schema"`
	Operation    string    `yaml:"operation"`
	Theme        Theme     `yaml:"theme"`
	// Labels override field labels by field name.
	Labels map[string]string `yaml:"labels"`
}

// Default mirrors the production form: placeholder endpoint, opaque form
// posts, two retries one second apart.
func Default() Config {
	ctrl := controller.DefaultConfig()
	return Config{
		Endpoint:     model.PlaceholderEndpoint,
		Encoding:     string(transport.EncodingForm),
		Mode:         string(transport.ModeOpaque),
		Timeout:      Duration(transport.DefaultTimeout),
		Sanitize:     true,
		MaxRetries:   ctrl.MaxRetries,
		RetryDelay:   Duration(ctrl.RetryDelay),
		DismissAfter: Duration(ctrl.DismissAfter),
		Debounce:     Duration(ctrl.Debounce),
		Locale:       locale.Portuguese,
		Listen:       DefaultListen,
		RateLimit: RateLimit{
			Every: Duration(DefaultRateEvery),
			Burst: DefaultRateBurst,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides the endpoint, listen address and locale from
// FORMRELAY_ENDPOINT, FORMRELAY_LISTEN and FORMRELAY_LOCALE.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvPrefix + "ENDPOINT"); ok && v != "" {
		c.Endpoint = v
	}
	if v, ok := lookup(EnvPrefix + "LISTEN"); ok && v != "" {
		c.Listen = v
	}
	if v, ok := lookup(EnvPrefix + "LOCALE"); ok && v != "" {
		c.Locale = v
	}
}

// Validate reports every problem found, not just the first.
func (c Config) Validate() error {
	var err error
	if c.Endpoint != "" {
		u, parseErr := url.Parse(c.Endpoint)
		if parseErr != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			err = multierr.Append(err, fmt.Errorf("config: endpoint %q must be an absolute http(s) URL", c.Endpoint))
		}
	}
	switch strings.ToLower(c.Encoding) {
	case "", string(transport.EncodingForm), string(transport.EncodingJSON):
	default:
		err = multierr.Append(err, fmt.Errorf("config: unknown encoding %q", c.Encoding))
	}
	switch strings.ToLower(c.Mode) {
	case "", string(transport.ModeOpaque), string(transport.ModeStrict):
	default:
		err = multierr.Append(err, fmt.Errorf("config: unknown mode %q", c.Mode))
	}
	if pattern := strings.TrimSpace(c.PhonePattern); pattern != "" {
		if _, reErr := regexp.Compile(pattern); reErr != nil {
			err = multierr.Append(err, fmt.Errorf("config: phone_pattern: %w", reErr))
		}
	}
	if c.MaxRetries < 0 {
		err = multierr.Append(err, errors.New("config: max_retries must not be negative"))
	}
	if c.RetryDelay < 0 || c.DismissAfter < 0 || c.Debounce < 0 || c.Timeout < 0 {
		err = multierr.Append(err, errors.New("config: durations must not be negative"))
	}
	if c.RateLimit.Every < 0 || c.RateLimit.Burst < 0 {
		err = multierr.Append(err, errors.New("config: rate_limit must not be negative"))
	}
	for i, m := range c.Theme.Manifests {
		if strings.TrimSpace(m.Name) == "" {
			err = multierr.Append(err, fmt.Errorf("config: theme manifest %d has no name", i))
		}
	}
	return err
}

// Controller converts the submission tunables.
func (c Config) Controller() controller.Config {
	return controller.Config{
		Endpoint:     c.Endpoint,
		MaxRetries:   c.MaxRetries,
		RetryDelay:   c.RetryDelay.Std(),
		DismissAfter: c.DismissAfter.Std(),
		Debounce:     c.Debounce.Std(),
		Locale:       locale.Normalize(c.Locale),
	}
}

// TransportOptions converts the delivery settings.
func (c Config) TransportOptions() []transport.Option {
	return []transport.Option{
		transport.WithEncoding(transport.ParseEncoding(c.Encoding)),
		transport.WithMode(transport.ParseMode(c.Mode)),
		transport.WithTimeout(c.Timeout.Std()),
		transport.WithSanitize(c.Sanitize),
	}
}

// ThemeManifests converts the configured themes to go-theme manifests.
func (t Theme) ThemeManifests() []*theme.Manifest {
	out := make([]*theme.Manifest, 0, len(t.Manifests))
	for _, m := range t.Manifests {
		manifest := &theme.Manifest{
			Name:      m.Name,
			Version:   m.Version,
			Tokens:    m.Tokens,
			Templates: m.Templates,
			Assets:    theme.Assets{Prefix: m.Assets.Prefix, Files: m.Assets.Files},
		}
		if len(m.Variants) > 0 {
			manifest.Variants = make(map[string]theme.Variant, len(m.Variants))
			for name, v := range m.Variants {
				manifest.Variants[name] = theme.Variant{
					Tokens:    v.Tokens,
					Templates: v.Templates,
					Assets:    theme.Assets{Prefix: v.Assets.Prefix, Files: v.Assets.Files},
				}
			}
		}
		out = append(out, manifest)
	}
	return out
}
