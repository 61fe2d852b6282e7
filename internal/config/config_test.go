package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"

	"github.com/goliatone/go-formrelay/pkg/controller"
	"github.com/goliatone/go-formrelay/pkg/locale"
	"github.com/goliatone/go-formrelay/pkg/model"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Endpoint != model.PlaceholderEndpoint {
		t.Fatalf("endpoint = %q", cfg.Endpoint)
	}
}

func TestParse_OverridesDefaults(t *testing.T) {
	raw := `
endpoint: https://script.google.com/macros/s/abc123/exec
encoding: json
mode: strict
max_retries: 0
retry_delay: 250ms
dismiss_after: 3s
locale: en
listen: 127.0.0.1:9000
rate_limit:
  every: 2s
  burst: 5
theme:
  name: acme
  variant: dark
  manifests:
    - name: acme
      tokens:
        brand: "#123456"
      assets:
        prefix: /assets/themes/acme
        files:
          stylesheet: theme.css
      variants:
        dark:
          tokens:
            surface: "#101010"
`
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := controller.Config{
		Endpoint:     "https://script.google.com/macros/s/abc123/exec",
		MaxRetries:   0,
		RetryDelay:   250 * time.Millisecond,
		DismissAfter: 3 * time.Second,
		Debounce:     controller.DefaultDebounce,
		Locale:       locale.English,
	}
	if diff := cmp.Diff(want, cfg.Controller()); diff != "" {
		t.Fatalf("controller config mismatch (-want +got):\n%s", diff)
	}
	if cfg.RateLimit.Every.Std() != 2*time.Second || cfg.RateLimit.Burst != 5 {
		t.Fatalf("rate limit = %+v", cfg.RateLimit)
	}
	if !cfg.Sanitize {
		t.Fatal("sanitize default should survive a partial file")
	}
	if got := len(cfg.TransportOptions()); got != 4 {
		t.Fatalf("transport options = %d", got)
	}

	manifests := cfg.Theme.ThemeManifests()
	if len(manifests) != 1 {
		t.Fatalf("manifests = %d", len(manifests))
	}
	if manifests[0].Assets.Files["stylesheet"] != "theme.css" || manifests[0].Variants["dark"].Tokens["surface"] != "#101010" {
		t.Fatalf("manifest not converted: %+v", manifests[0])
	}
}

func TestParse_CollectsEveryProblem(t *testing.T) {
	raw := `
endpoint: not a url
encoding: xml
mode: loud
max_retries: -1
`
	_, err := Parse([]byte(raw))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := len(multierr.Errors(err)); got != 4 {
		t.Fatalf("errors = %d (%v), want 4", got, err)
	}
}

func TestParse_BadPhonePattern(t *testing.T) {
	_, err := Parse([]byte("phone_pattern: '^(\\d{2}'\nmode: loud\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	errs := multierr.Errors(err)
	if len(errs) != 2 || !strings.Contains(errs[1].Error(), "config: phone_pattern") {
		t.Fatalf("expected mode and phone_pattern errors, got %v", err)
	}
}

func TestParse_BadDuration(t *testing.T) {
	_, err := Parse([]byte("retry_delay: soon\n"))
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("expected duration error with line, got %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formrelay.yaml")
	if err := os.WriteFile(path, []byte("listen: :9090\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Fatalf("listen = %q", cfg.Listen)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FORMRELAY_ENDPOINT": "https://example.com/hook",
		"FORMRELAY_LISTEN":   "",
	}
	cfg := Default()
	cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if cfg.Endpoint != "https://example.com/hook" {
		t.Fatalf("endpoint = %q", cfg.Endpoint)
	}
	if cfg.Listen != DefaultListen {
		t.Fatalf("empty env value should not override listen, got %q", cfg.Listen)
	}
}
