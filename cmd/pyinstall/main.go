// Command pyinstall locates, downloads, and installs managed Python
// interpreters and creates virtual environments pointing at them, with
// transparent pickup of patch-level upgrades already-created venvs
// never need to be recreated for.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/pyinstall/internal/buildinfo"
	"github.com/tsukumogami/pyinstall/internal/config"
	"github.com/tsukumogami/pyinstall/internal/log"
)

var (
	quietFlag   bool
	verboseFlag bool
	debugFlag   bool
)

// globalCtx is canceled on SIGINT/SIGTERM; commands that perform
// cancellable operations (network fetch, lock acquisition) use it.
var globalCtx context.Context
var globalCancel context.CancelFunc

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pyinstall",
	Short: "Install managed Python interpreters and create virtual environments",
	Long: `pyinstall locates, downloads, and installs specific Python interpreter
builds on demand, and creates virtual environments that point at them.

A later patch-level upgrade of an installed minor version is picked up
by already-created virtual environments automatically, without
recreating them.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Show errors only")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show verbose output (INFO level)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Show debug output (includes timestamps and source locations)")

	rootCmd.PersistentPreRunE = initRoot
	rootCmd.Version = buildinfo.Version()

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(venvCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(upgradeCmd)
}

func main() {
	if maybeExecTrampoline() {
		return
	}

	globalCtx, globalCancel = context.WithCancel(context.Background())
	defer globalCancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived %s, canceling operation...\n", sig)
		globalCancel()

		<-sigChan
		fmt.Fprintln(os.Stderr, "Forced exit")
		exitWithCode(ExitGeneral)
	}()

	if err := rootCmd.ExecuteContext(globalCtx); err != nil {
		if globalCtx.Err() == context.Canceled {
			exitWithCode(ExitGeneral)
		}
		printError(err)
		exitWithCode(exitCodeFor(err))
	}
}

// initRoot initializes the logger and the shared configuration before
// any subcommand runs.
func initRoot(cmd *cobra.Command, args []string) error {
	level := determineLogLevel()
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug})
	log.SetDefault(log.New(handler))

	if level == slog.LevelDebug {
		fmt.Fprintln(os.Stderr, "[DEBUG MODE] Output may contain file paths and URLs. Do not share publicly.")
	}

	c, err := config.DefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to determine configuration: %w", err)
	}
	if err := c.EnsureDirectories(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// determineLogLevel returns the slog.Level implied by flags, falling
// back to the matching PYINSTALL_* environment variables, then WARN.
// Flags take precedence over environment variables.
func determineLogLevel() slog.Level {
	if debugFlag {
		return slog.LevelDebug
	}
	if verboseFlag {
		return slog.LevelInfo
	}
	if quietFlag {
		return slog.LevelError
	}

	if isTruthy(os.Getenv("PYINSTALL_DEBUG")) {
		return slog.LevelDebug
	}
	if isTruthy(os.Getenv("PYINSTALL_VERBOSE")) {
		return slog.LevelInfo
	}
	if isTruthy(os.Getenv("PYINSTALL_QUIET")) {
		return slog.LevelError
	}

	return slog.LevelWarn
}

func isTruthy(s string) bool {
	s = strings.ToLower(s)
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
