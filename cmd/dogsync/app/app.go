// Package app provides the application context and dependency management
// for the dogsync CLI. Configuration, logging and Syncer construction are
// centralized here and handed to commands through application.Application.
package app

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/dogsync"
	"github.com/agentstation/dogsync/internal/cmd/application"
	"github.com/agentstation/dogsync/internal/config"
	"github.com/agentstation/dogsync/pkg/errors"
)

// App represents the dogsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// newSyncer is replaced in tests.
	newSyncer func(cfg config.Config, opts ...dogsync.Option) (*dogsync.Syncer, error)
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version:   version,
		commit:    commit,
		date:      date,
		builtBy:   builtBy,
		newSyncer: dogsync.New,
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the CLI configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format value, empty when auto-detected.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Quiet reports whether -q was given.
func (a *App) Quiet() bool {
	return a.config.Quiet
}

// NoColor reports whether --no-color or NO_COLOR was given.
func (a *App) NoColor() bool {
	return a.config.NoColor
}

// RunConfig reads the run configuration from the environment and the
// config file. The result is parsed but not validated.
func (a *App) RunConfig() (config.Config, error) {
	v, err := config.NewViper(a.config.ConfigFile)
	if err != nil {
		return config.Config{}, err
	}
	return config.Parse(v)
}

// Syncer creates a Syncer for cfg.
func (a *App) Syncer(cfg config.Config, opts ...dogsync.Option) (*dogsync.Syncer, error) {
	s, err := a.newSyncer(cfg, opts...)
	if err != nil {
		if errors.IsValidationError(err) {
			return nil, err
		}
		return nil, errors.NewConfigError("syncer", "cannot create syncer", err)
	}
	return s, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithSyncerFactory replaces how Syncers are created (useful for testing).
func WithSyncerFactory(fn func(cfg config.Config, opts ...dogsync.Option) (*dogsync.Syncer, error)) Option {
	return func(a *App) error {
		a.newSyncer = fn
		return nil
	}
}
