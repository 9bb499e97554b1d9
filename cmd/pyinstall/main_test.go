package main

import (
	"log/slog"
	"testing"
)

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"ON", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"", false},
		{"random", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := isTruthy(tt.input); got != tt.want {
				t.Errorf("isTruthy(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetermineLogLevel(t *testing.T) {
	origQuiet, origVerbose, origDebug := quietFlag, verboseFlag, debugFlag
	defer func() {
		quietFlag, verboseFlag, debugFlag = origQuiet, origVerbose, origDebug
	}()

	tests := []struct {
		name                           string
		quietF, verboseF, debugF       bool
		envQuiet, envVerbose, envDebug string
		want                           slog.Level
	}{
		{name: "default is WARN", want: slog.LevelWarn},
		{name: "debug flag", debugF: true, want: slog.LevelDebug},
		{name: "verbose flag", verboseF: true, want: slog.LevelInfo},
		{name: "quiet flag", quietF: true, want: slog.LevelError},
		{name: "debug env var", envDebug: "1", want: slog.LevelDebug},
		{name: "verbose env var", envVerbose: "true", want: slog.LevelInfo},
		{name: "quiet env var", envQuiet: "yes", want: slog.LevelError},
		{name: "flag takes precedence over env var", quietF: true, envDebug: "1", want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quietFlag, verboseFlag, debugFlag = tt.quietF, tt.verboseF, tt.debugF
			t.Setenv("PYINSTALL_QUIET", tt.envQuiet)
			t.Setenv("PYINSTALL_VERBOSE", tt.envVerbose)
			t.Setenv("PYINSTALL_DEBUG", tt.envDebug)

			if got := determineLogLevel(); got != tt.want {
				t.Errorf("determineLogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	if got := exitCodeFor(&usageError{msg: "bad args"}); got != ExitUsage {
		t.Errorf("exitCodeFor(usageError) = %d, want %d", got, ExitUsage)
	}
	if got := exitCodeFor(errBoom{}); got != ExitGeneral {
		t.Errorf("exitCodeFor(other) = %d, want %d", got, ExitGeneral)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
