// Package logging builds the process logger.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options selects the level and encoding. Output always goes to stderr so
// the interactive session and render output keep stdout.
type Options struct {
	Verbose bool
	Format  string
}

// Config returns the zap configuration New builds from.
func Config(opts Options) zap.Config {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(opts.Format, FormatConsole) {
		cfg.Encoding = FormatConsole
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	if opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg
}

// New builds a logger for opts.
func New(opts Options) (*zap.Logger, error) {
	switch strings.ToLower(opts.Format) {
	case "", FormatJSON, FormatConsole:
	default:
		return nil, fmt.Errorf("logging: unknown format %q", opts.Format)
	}
	logger, err := Config(opts).Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger.Named("formrelay"), nil
}
