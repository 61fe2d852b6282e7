package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestConfig_Levels(t *testing.T) {
	if Config(Options{}).Level.Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be off by default")
	}
	if !Config(Options{Verbose: true}).Level.Enabled(zapcore.DebugLevel) {
		t.Fatal("verbose should enable debug")
	}
}

func TestConfig_Encoding(t *testing.T) {
	cases := map[string]string{
		"":        FormatJSON,
		"json":    FormatJSON,
		"console": FormatConsole,
		"CONSOLE": FormatConsole,
	}
	for format, want := range cases {
		if got := Config(Options{Format: format}).Encoding; got != want {
			t.Errorf("Config(%q).Encoding = %q, want %q", format, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	logger, err := New(Options{Verbose: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug core")
	}

	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
