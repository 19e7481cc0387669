// Package application provides the application interface for dogsync commands.
//
// Commands accept this interface rather than the concrete App type, so
// they can be tested with Mock.
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/dogsync"
	"github.com/agentstation/dogsync/internal/config"
)

// Application defines the dependencies commands need.
type Application interface {
	// RunConfig returns the run configuration parsed from the environment,
	// .env files and the config file. It is not validated yet, so flags
	// can still override it.
	RunConfig() (config.Config, error)

	// Syncer creates a Syncer for cfg.
	Syncer(cfg config.Config, opts ...dogsync.Option) (*dogsync.Syncer, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// Quiet reports whether decorative output is suppressed.
	Quiet() bool

	// NoColor reports whether colored output is disabled.
	NoColor() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
