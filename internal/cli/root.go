// Package cli wires the formrelay commands: serve, submit, render and
// validate.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formrelay/internal/config"
	"github.com/goliatone/go-formrelay/internal/logging"
	"github.com/goliatone/go-formrelay/pkg/renderers/tui"
	"github.com/goliatone/go-formrelay/pkg/server"
	"github.com/goliatone/go-formrelay/pkg/transport"
)

// Options replace the process-level collaborators, mostly for tests.
type Options struct {
	Stdout    io.Writer
	Stderr    io.Writer
	Driver    tui.PromptDriver
	Transport transport.Transport
	Logger    *zap.Logger
	LookupEnv func(string) (string, bool)
	Serve     func(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error
}

type app struct {
	opts Options

	configPath string
	schema     string
	operation  string
	locale     string
	logFormat  string
	verbose    bool
	values     map[string]string

	cfg    config.Config
	logger *zap.Logger
}

// Execute runs the root command with args.
func Execute(ctx context.Context, args []string, opts Options) error {
	cmd := NewRootCommand(opts)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.Serve == nil {
		opts.Serve = server.ListenAndServe
	}
	a := &app{opts: opts, values: map[string]string{}}

	root := &cobra.Command{
		Use:   "formrelay",
		Short: "Contact form relay for Apps Script endpoints",
		Long: `formrelay validates contact form submissions and relays them to a
spreadsheet-backed endpoint with bounded retries.

Serve the form over HTTP, submit it from the terminal, or render the
static page.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&a.schema, "schema", "", "OpenAPI document (path or URL) describing the form")
	flags.StringVar(&a.operation, "operation", "", "operation ID within the schema")
	flags.StringVar(&a.locale, "locale", "", "message locale (en, pt-BR)")
	flags.StringVar(&a.logFormat, "log-format", logging.FormatJSON, "log encoding (json, console)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.serveCommand(),
		a.submitCommand(),
		a.renderCommand(),
		a.validateCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(a.opts.LookupEnv)
	if a.schema != "" {
		cfg.Schema = a.schema
	}
	if a.operation != "" {
		cfg.Operation = a.operation
	}
	if a.locale != "" {
		cfg.Locale = a.locale
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if a.opts.Logger != nil {
		a.logger = a.opts.Logger
		return nil
	}
	logger, err := logging.New(logging.Options{Verbose: a.verbose, Format: a.logFormat})
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) addValuesFlag(cmd *cobra.Command) {
	cmd.Flags().StringToStringVar(&a.values, "set", nil, "field values as name=value pairs")
}

func (a *app) driver() tui.PromptDriver {
	if a.opts.Driver != nil {
		return a.opts.Driver
	}
	return tui.NewSurveyDriver(a.opts.Stdout)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.opts.Stdout, format, args...)
}
