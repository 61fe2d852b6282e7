// Package formrelay is the top-level entry point: the default contact form,
// a ready relay handler and the static page renderer.
package formrelay

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/goliatone/go-formrelay/pkg/controller"
	"github.com/goliatone/go-formrelay/pkg/model"
	"github.com/goliatone/go-formrelay/pkg/render"
	"github.com/goliatone/go-formrelay/pkg/renderers/vanilla"
	"github.com/goliatone/go-formrelay/pkg/server"
	"github.com/goliatone/go-formrelay/pkg/surface"
	"github.com/goliatone/go-formrelay/pkg/transport"
)

// RenderOptions describes per-request view state: prefilled values, inline
// errors, the status message.
type RenderOptions = render.RenderOptions

// Config holds the submission tunables (retries, delays, locale).
type Config = controller.Config

// DefaultForm returns the contact form the brochure sites ship.
func DefaultForm() model.FormModel {
	return model.DefaultContactForm()
}

// NewController exposes the controller constructor from the top-level
// module.
func NewController(form model.FormModel, ui surface.Surface, tr transport.Transport, options ...controller.Option) (*controller.Controller, error) {
	return controller.New(form, ui, tr, options...)
}

// NewHandler serves the default contact form and relays submissions to an
// Apps Script endpoint. It is the simplest entry point for callers that
// just want a working relay.
func NewHandler(endpoint string, fns ...server.OptionFn) (http.Handler, error) {
	tr, err := transport.NewAppsScript(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := controller.DefaultConfig()
	cfg.Endpoint = endpoint
	base := []server.OptionFn{
		server.WithTransport(tr),
		server.WithControllerConfig(cfg),
	}
	srv, err := server.New(append(base, fns...)...)
	if err != nil {
		return nil, err
	}
	return srv.Handler(), nil
}

// RenderHTML renders form as a standalone page with the vanilla renderer.
func RenderHTML(ctx context.Context, form model.FormModel, options RenderOptions) ([]byte, error) {
	r, err := vanilla.New()
	if err != nil {
		return nil, err
	}
	return r.Render(ctx, form, options)
}

// AssetsFS exposes the stylesheet the vanilla page links to.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formrelay.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
