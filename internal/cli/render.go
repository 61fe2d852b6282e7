package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formrelay/pkg/render"
	"github.com/goliatone/go-formrelay/pkg/renderers/tui"
	"github.com/goliatone/go-formrelay/pkg/renderers/vanilla"
)

func (a *app) renderCommand() *cobra.Command {
	var (
		rendererName string
		output       string
		format       string
		themeName    string
		variant      string
		inline       bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the form page (vanilla) or collect answers (tui)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			form, err := a.loadForm(ctx)
			if err != nil {
				return err
			}

			themeCfg, err := a.resolveTheme(themeName, variant)
			if err != nil {
				return err
			}

			var pageOpts []vanilla.Option
			if inline {
				pageOpts = append(pageOpts, vanilla.WithDefaultStyles())
			}
			page, err := vanilla.New(pageOpts...)
			if err != nil {
				return err
			}
			validator, err := a.validator()
			if err != nil {
				return err
			}
			prompts, err := tui.New(
				tui.WithPromptDriver(a.driver()),
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithValidator(validator),
				tui.WithCatalog(a.catalog()),
			)
			if err != nil {
				return err
			}

			registry := render.NewRegistry()
			registry.MustRegister(page)
			registry.MustRegister(prompts)
			renderer, err := registry.Get(rendererName)
			if err != nil {
				return err
			}

			out, err := renderer.Render(ctx, form, render.RenderOptions{
				Values: a.values,
				Locale: a.cfg.Locale,
				Theme:  themeCfg,
			})
			if err != nil {
				return err
			}
			if output != "" {
				if err := os.WriteFile(output, out, 0o644); err != nil {
					return err
				}
				a.printf("Form written to %s\n", output)
				return nil
			}
			_, err = a.opts.Stdout.Write(out)
			return err
		},
	}
	a.addValuesFlag(cmd)
	cmd.Flags().StringVarP(&rendererName, "renderer", "r", "vanilla", "renderer to use (vanilla, tui)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "tui output format (json, form, pretty)")
	cmd.Flags().StringVar(&themeName, "theme", "", "theme name (overrides config)")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant (overrides config)")
	cmd.Flags().BoolVar(&inline, "inline-styles", false, "embed the default stylesheet in the page")
	return cmd
}
