package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-formrelay/pkg/controller"
	"github.com/goliatone/go-formrelay/pkg/renderers/vanilla"
	"github.com/goliatone/go-formrelay/pkg/server"
	"github.com/goliatone/go-formrelay/pkg/validation"
)

func (a *app) serveCommand() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the contact page and relay submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			form, err := a.loadForm(ctx)
			if err != nil {
				return err
			}
			endpoint := form.Endpoint
			if !controller.EndpointConfigured(endpoint) {
				a.logger.Warn("form endpoint is not configured, submissions will fail",
					zap.String("endpoint", endpoint))
			}
			tr, err := a.buildTransport(endpoint)
			if err != nil {
				return err
			}
			themeCfg, err := a.resolveTheme("", "")
			if err != nil {
				return err
			}
			page, err := vanilla.New(vanilla.WithStylesheet("/assets/" + vanilla.StylesheetName))
			if err != nil {
				return err
			}

			limit := rate.Limit(0)
			if every := a.cfg.RateLimit.Every.Std(); every > 0 {
				limit = rate.Every(every)
			}

			srv, err := server.New(
				server.WithForm(form),
				server.WithTransport(tr),
				server.WithRenderer(page),
				server.WithTheme(themeCfg),
				server.WithLogger(a.logger),
				server.WithLocale(a.cfg.Locale),
				server.WithControllerConfig(a.controllerConfig(endpoint)),
				server.WithValidatorOptions(validation.WithPhonePattern(a.cfg.PhonePattern)),
				server.WithRateLimit(limit, a.cfg.RateLimit.Burst),
			)
			if err != nil {
				return err
			}

			addr := a.cfg.Listen
			if listen != "" {
				addr = listen
			}
			return a.opts.Serve(ctx, addr, srv.Handler(), a.logger)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}
