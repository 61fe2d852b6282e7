package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formrelay/pkg/model"
	"github.com/goliatone/go-formrelay/pkg/openapi"
	"github.com/goliatone/go-formrelay/pkg/validation"
)

func (a *app) validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the form schema, or a set of values against it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			form, err := a.loadForm(ctx)
			if err != nil {
				return err
			}

			if len(a.values) == 0 {
				a.printf("form %s (%s %s)\n", form.ID, form.Method, form.Endpoint)
				for _, field := range form.Fields {
					required := ""
					if field.Required {
						required = " required"
					}
					a.printf("  %-10s %-8s%s\n", field.Name, field.Type, required)
				}
				doc, err := a.loadDocument(ctx)
				if err != nil {
					return err
				}
				ops, err := openapi.Operations(ctx, doc)
				if err != nil {
					return err
				}
				a.printf("operations: %s\n", strings.Join(ops, ", "))
				return nil
			}

			validator, err := a.validator()
			if err != nil {
				return err
			}
			invalid := validation.Invalid(validator.ValidateValues(form, a.values))
			for _, result := range invalid {
				field, _ := form.Field(result.Field)
				a.printf("❌ %s: %s\n", model.LabelFor(field), result.Message)
			}
			if len(invalid) > 0 {
				return fmt.Errorf("validate: %d invalid field(s)", len(invalid))
			}
			a.printf("✅ %s\n", form.ID)
			return nil
		},
	}
	a.addValuesFlag(cmd)
	return cmd
}
