package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formrelay/pkg/controller"
	"github.com/goliatone/go-formrelay/pkg/renderers/tui"
)

func (a *app) submitCommand() *cobra.Command {
	var noInput bool
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Fill in the form in the terminal and send it",
		Long: `submit prompts for every field, validates the answers and sends the
form. Invalid fields are asked again; after a failed delivery you can
resend. With --no-input only the --set values are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			form, err := a.loadForm(ctx)
			if err != nil {
				return err
			}
			endpoint := form.Endpoint
			tr, err := a.buildTransport(endpoint)
			if err != nil {
				return err
			}
			validator, err := a.validator()
			if err != nil {
				return err
			}
			catalog := a.catalog()
			driver := a.driver()

			session := tui.NewSession(form,
				tui.WithPromptDriver(driver),
				tui.WithValidator(validator),
				tui.WithCatalog(catalog),
			)
			for name, value := range a.values {
				session.SetValue(name, value)
			}

			ctrl, err := controller.New(form, session, tr,
				controller.WithConfig(a.controllerConfig(endpoint)),
				controller.WithCatalog(catalog),
				controller.WithValidator(validator),
				controller.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			defer ctrl.Close()
			ctrl.Init()

			if !noInput {
				if _, err := session.Collect(ctx); err != nil {
					return err
				}
			}

			for {
				err := ctrl.Submit(ctx)
				var (
					invalid   *controller.ValidationError
					exhausted *controller.ExhaustedRetriesError
				)
				switch {
				case err == nil:
					return nil
				case noInput:
					return err
				case errors.As(err, &invalid):
					if _, err := session.CollectInvalid(ctx); err != nil {
						return err
					}
				case errors.As(err, &exhausted):
					again, cerr := driver.Confirm(ctx, tui.ConfirmConfig{
						Message: catalog.SubmitLabel + "?",
						Default: true,
					})
					if cerr != nil {
						return cerr
					}
					if !again {
						return err
					}
				default:
					return err
				}
			}
		},
	}
	a.addValuesFlag(cmd)
	cmd.Flags().BoolVar(&noInput, "no-input", false, "do not prompt; send the --set values as they are")
	return cmd
}
