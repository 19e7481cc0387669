// Package constants provides shared constants used throughout the dogsync codebase.
// This includes API roots, timeouts, rate limits and file permissions that
// should be consistent across the application.
package constants

import "time"

// API roots
const (
	// DogAPIRoot is the default root of the dog.ceo REST API
	DogAPIRoot = "https://dog.ceo/api"

	// YandexDiskAPIRoot is the default root of the Yandex.Disk REST API
	YandexDiskAPIRoot = "https://cloud-api.yandex.net/v1"
)

// Timeout constants
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests
	DefaultHTTPTimeout = 30 * time.Second

	// DogAPITimeout is longer because dog.ceo is occasionally slow to respond
	DogAPITimeout = 40 * time.Second

	// ActionTimeout bounds a single fetch+upload or delete once dispatched
	ActionTimeout = 2 * time.Minute

	// ShutdownTimeout is how long the CLI waits for cleanup after an error
	ShutdownTimeout = 5 * time.Second
)

// Rate limiting constants
const (
	// YandexDiskRateLimit is the Yandex.Disk API terms-of-use ceiling (requests per second)
	YandexDiskRateLimit = 40

	// RateLimitPollInterval is how long a throttled request sleeps before rechecking
	RateLimitPollInterval = 100 * time.Millisecond
)

// Limit constants
const (
	// DefaultConcurrency is the default number of executor workers
	DefaultConcurrency = 4

	// DefaultPlanConcurrency is the number of concurrent image listings while planning
	DefaultPlanConcurrency = 8

	// ListPageSize is the page size used when listing remote directories
	ListPageSize = 1000

	// MaxImageBytes caps a single downloaded image
	MaxImageBytes = 32 << 20
)

// Defaults for run configuration
const (
	// DefaultReportPath is where the run report is written
	DefaultReportPath = "result.json"

	// DefaultRootDir is the default remote root directory
	DefaultRootDir = "dogs"

	// DefaultMaxImages is the default per breed and per sub-breed cap
	DefaultMaxImages = 1
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like the dummy state db (rw-------)
	SecureFilePermissions = 0600
)
