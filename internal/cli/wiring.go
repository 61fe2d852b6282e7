package cli

import (
	"context"
	"fmt"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formrelay/pkg/controller"
	"github.com/goliatone/go-formrelay/pkg/locale"
	"github.com/goliatone/go-formrelay/pkg/model"
	"github.com/goliatone/go-formrelay/pkg/openapi"
	"github.com/goliatone/go-formrelay/pkg/render"
	"github.com/goliatone/go-formrelay/pkg/transport"
	"github.com/goliatone/go-formrelay/pkg/validation"
)

const schemaFetchTimeout = 10 * time.Second

// loadDocument reads the configured schema, falling back to the embedded
// contact form document.
func (a *app) loadDocument(ctx context.Context) (openapi.Document, error) {
	if a.cfg.Schema == "" {
		return openapi.DefaultDocument(), nil
	}
	src, err := openapi.SourceFor(a.cfg.Schema)
	if err != nil {
		return openapi.Document{}, err
	}
	return openapi.NewLoader(openapi.WithHTTPFallback(schemaFetchTimeout)).Load(ctx, src)
}

// loadForm builds the form for the configured operation with the resolved
// endpoint and label overrides applied.
func (a *app) loadForm(ctx context.Context) (model.FormModel, error) {
	doc, err := a.loadDocument(ctx)
	if err != nil {
		return model.FormModel{}, err
	}
	operation := a.cfg.Operation
	if operation == "" && a.cfg.Schema == "" {
		operation = openapi.DefaultOperationID
	}
	form, err := openapi.FormFromDocument(ctx, doc, operation)
	if err != nil {
		return model.FormModel{}, err
	}
	return model.Decorate(form,
		model.WithEndpoint(a.endpointFor(form)),
		model.WithLabels(a.cfg.Labels),
	)
}

// endpointFor prefers the configured endpoint and falls back to the one the
// schema declares when the configuration still holds the placeholder.
func (a *app) endpointFor(form model.FormModel) string {
	if !controller.EndpointConfigured(a.cfg.Endpoint) && controller.EndpointConfigured(form.Endpoint) {
		return form.Endpoint
	}
	return a.cfg.Endpoint
}

func (a *app) buildTransport(endpoint string) (transport.Transport, error) {
	if a.opts.Transport != nil {
		return a.opts.Transport, nil
	}
	options := append(a.cfg.TransportOptions(), transport.WithLogger(a.logger))
	return transport.NewAppsScript(endpoint, options...)
}

func (a *app) catalog() locale.Catalog {
	return locale.For(a.cfg.Locale)
}

func (a *app) validator() (*validation.Validator, error) {
	return validation.New(
		validation.WithCatalog(a.catalog()),
		validation.WithPhonePattern(a.cfg.PhonePattern),
	)
}

func (a *app) controllerConfig(endpoint string) controller.Config {
	cfg := a.cfg.Controller()
	cfg.Endpoint = endpoint
	return cfg
}

// resolveTheme resolves the configured go-theme selection. No theme name means no
// overrides.
func (a *app) resolveTheme(name, variant string) (*theme.RendererConfig, error) {
	if name == "" {
		name = a.cfg.Theme.Name
	}
	if variant == "" {
		variant = a.cfg.Theme.Variant
	}
	if name == "" {
		return nil, nil
	}
	selector, err := render.NewThemeSelector(a.cfg.Theme.ThemeManifests()...)
	if err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	return render.ResolveTheme(selector, name, variant)
}
