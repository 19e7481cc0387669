package app

import (
	"os"

	"github.com/agentstation/dogsync/internal/config"
)

// Config holds the CLI presentation settings. The run configuration
// itself lives in internal/config and is read per command.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Logging configuration
	LogLevel    string // --log-level
	EnvLogLevel string // LOG_LEVEL
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads .env files into the environment and reads the logging
// settings. Precedence, highest first:
//  1. Command-line flags (applied by UpdateFromFlags)
//  2. Environment variables
//  3. .env.local, then .env
//  4. Defaults
func LoadConfig() (*Config, error) {
	config.LoadEnvFiles()

	return &Config{
		NoColor:     os.Getenv("NO_COLOR") != "",
		EnvLogLevel: os.Getenv("LOG_LEVEL"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// An empty format keeps the previous value.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	c.LogLevel = logLevel
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
