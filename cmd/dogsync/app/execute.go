package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/dogsync/internal/cmd/output"
	"github.com/agentstation/dogsync/pkg/errors"
	"github.com/agentstation/dogsync/pkg/logging"
)

// Exit codes returned by the CLI.
const (
	ExitOK                 = 0
	ExitFailure            = 1
	ExitConfigInvalid      = 2
	ExitUnavailable        = 3
	ExitReportNotPersisted = 4
	ExitCanceled           = 130
)

// Execute runs the dogsync CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "dogsync",
		Short:   "Sync dog breed images to Yandex.Disk",
		Version: a.version,
		Long: `dogsync mirrors a sample of dog breed images from dog.ceo into a
Yandex.Disk folder.

A run plans the desired images per breed and sub-breed, compares them with
what is already stored, uploads what is missing, optionally overwrites or
cleans up, and writes a JSON or YAML report of every action taken.

Configuration is read from environment variables, .env files and
$HOME/.dogsync.yaml; command flags override it for a single run.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	// Global flags are read back in setupCommand so that environment
	// values in a.config are not reset by flag defaults.
	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.dogsync.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: table, json, yaml")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("dogsync {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	if _, err := output.ParseFormat(format); err != nil {
		return errors.NewValidationError("format", format, err.Error())
	}

	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)
	if configFile := mustGetString(cmd, "config"); configFile != "" {
		a.config.ConfigFile = configFile
	}

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)

	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))
	return nil
}

// ExitCode maps an error returned by Execute to the process exit status.
func ExitCode(err error) int {
	var cfgErr *errors.ConfigError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errors.ErrCanceled):
		return ExitCanceled
	case errors.Is(err, errors.ErrReportPersistFailed):
		return ExitReportNotPersisted
	case errors.Is(err, errors.ErrRemoteUnavailable), errors.Is(err, errors.ErrSourceUnavailable):
		return ExitUnavailable
	case errors.IsValidationError(err), errors.As(err, &cfgErr):
		return ExitConfigInvalid
	default:
		return ExitFailure
	}
}

// ExitOnError prints err and exits with its exit code.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(ExitCode(err))
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
