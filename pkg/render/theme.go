package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// Themes is an in-memory theme.ThemeSelector over registered manifests.
type Themes struct {
	mu             sync.RWMutex
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Themes)(nil)

// NewThemes returns a selector that falls back to defaultTheme and
// defaultVariant when a request names neither.
func NewThemes(defaultTheme, defaultVariant string) *Themes {
	return &Themes{
		manifests:      make(map[string]*theme.Manifest),
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
}

// NewThemeSelector registers manifests in order; the first one is the
// default theme.
func NewThemeSelector(manifests ...*theme.Manifest) (*Themes, error) {
	themes := NewThemes("", "")
	for _, manifest := range manifests {
		if err := themes.Register(manifest); err != nil {
			return nil, err
		}
	}
	return themes, nil
}

// Register adds a manifest. The first manifest becomes the default theme
// when none was configured.
func (t *Themes) Register(manifest *theme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return fmt.Errorf("render: theme manifest name is required")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.manifests[manifest.Name]; exists {
		return fmt.Errorf("render: theme %q already registered", manifest.Name)
	}
	t.manifests[manifest.Name] = manifest
	if t.defaultTheme == "" {
		t.defaultTheme = manifest.Name
	}
	return nil
}

// Names lists registered themes, sorted.
func (t *Themes) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.manifests))
	for name := range t.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves name and variant against the registered manifests. An
// unknown variant is an error; an empty one falls back to the default.
func (t *Themes) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = t.defaultTheme
	}
	manifest, ok := t.manifests[name]
	if !ok {
		return nil, fmt.Errorf("render: theme %q not found", name)
	}

	variant = strings.TrimSpace(variant)
	if variant == "" && name == t.defaultTheme {
		variant = t.defaultVariant
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("render: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// ResolveTheme selects a theme and flattens it into the renderer
// configuration: variant tokens, templates and asset files override the
// base manifest, every token becomes a "--name" CSS variable, and asset
// keys resolve under the variant prefix (or the manifest prefix).
func ResolveTheme(selector theme.ThemeSelector, name, variant string) (*theme.RendererConfig, error) {
	if selector == nil {
		return nil, nil
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, err
	}
	if selection == nil || selection.Manifest == nil {
		return nil, fmt.Errorf("render: theme selection for %q is empty", name)
	}

	manifest := selection.Manifest
	tokens := mergeStrings(manifest.Tokens, nil)
	partials := mergeStrings(manifest.Templates, nil)
	files := mergeStrings(manifest.Assets.Files, nil)
	prefix := manifest.Assets.Prefix

	if v, ok := manifest.Variants[selection.Variant]; ok {
		tokens = mergeStrings(tokens, v.Tokens)
		partials = mergeStrings(partials, v.Templates)
		files = mergeStrings(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: assetResolver(prefix, files),
	}, nil
}

// CSSVarsStyle renders vars as a deterministic inline style declaration.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteByte(';')
	}
	return b.String()
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	prefix = strings.TrimRight(prefix, "/")
	return func(key string) string {
		key = strings.TrimSpace(key)
		if key == "" {
			return ""
		}
		file, ok := files[key]
		if !ok {
			file = key
		}
		if strings.HasPrefix(file, "/") || strings.Contains(file, "://") || prefix == "" {
			return file
		}
		return prefix + "/" + strings.TrimLeft(file, "/")
	}
}

func mergeStrings(base, overlay map[string]string) map[string]string {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(overlay))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overlay {
		out[key] = value
	}
	return out
}
