// Package errors provides custom error types for the dogsync system.
// These errors carry the failure taxonomy of a sync run: fatal store
// connectivity failures, per-item source and write failures, and report
// persistence failures. Every typed error supports errors.Is against its
// sentinel so callers never need type assertions for classification.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is, As and Join are re-exported so callers need a single errors import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Sentinel errors for the dogsync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or rejected credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates that the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrRemoteUnavailable indicates the remote store could not be listed or authenticated.
	// It is fatal to a run and aborts before any action executes.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrSourceUnavailable indicates the image source taxonomy could not be enumerated.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSourceFetchFailed indicates a single image listing or download failed
	ErrSourceFetchFailed = errors.New("source fetch failed")

	// ErrRemoteWriteFailed indicates a single upload or delete against the store failed
	ErrRemoteWriteFailed = errors.New("remote write failed")

	// ErrReportPersistFailed indicates the finished report could not be written
	ErrReportPersistFailed = errors.New("report persist failed")
)

// Kind names used in report entries.
const (
	KindRemoteUnavailable   = "RemoteUnavailable"
	KindSourceUnavailable   = "SourceUnavailable"
	KindSourceFetchFailed   = "SourceFetchFailed"
	KindRemoteWriteFailed   = "RemoteWriteFailed"
	KindReportPersistFailed = "ReportPersistFailed"
	KindCanceled            = "Canceled"
	KindUnknown             = "Unknown"
)

// Kind classifies err into one of the report error kinds.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSourceFetchFailed):
		return KindSourceFetchFailed
	case errors.Is(err, ErrRemoteWriteFailed):
		return KindRemoteWriteFailed
	case errors.Is(err, ErrRemoteUnavailable):
		return KindRemoteUnavailable
	case errors.Is(err, ErrSourceUnavailable):
		return KindSourceUnavailable
	case errors.Is(err, ErrReportPersistFailed):
		return KindReportPersistFailed
	case errors.Is(err, ErrCanceled):
		return KindCanceled
	default:
		return KindUnknown
	}
}

// RemoteUnavailableError represents a listing or authentication failure against the store
type RemoteUnavailableError struct {
	Root    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *RemoteUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote store unavailable for root %s: %s: %v", e.Root, e.Message, e.Err)
	}
	return fmt.Sprintf("remote store unavailable for root %s: %s", e.Root, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *RemoteUnavailableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RemoteUnavailableError) Is(target error) bool {
	return target == ErrRemoteUnavailable
}

// NewRemoteUnavailableError creates a new RemoteUnavailableError
func NewRemoteUnavailableError(root, message string, err error) *RemoteUnavailableError {
	return &RemoteUnavailableError{Root: root, Message: message, Err: err}
}

// SourceError represents a failure to enumerate or download from the image source.
// Fatal is set when the breed taxonomy itself could not be listed.
type SourceError struct {
	Operation string // "list breeds", "list images", "fetch"
	Target    string // breed, breed/sub-breed or URL
	Fatal     bool
	Err       error
}

// Error implements the error interface
func (e *SourceError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("source %s failed for %s: %v", e.Operation, e.Target, e.Err)
	}
	return fmt.Sprintf("source %s failed: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *SourceError) Is(target error) bool {
	if e.Fatal {
		return target == ErrSourceUnavailable
	}
	return target == ErrSourceFetchFailed
}

// NewSourceFetchError creates a per-item SourceError
func NewSourceFetchError(operation, target string, err error) *SourceError {
	return &SourceError{Operation: operation, Target: target, Err: err}
}

// NewSourceUnavailableError creates a fatal SourceError
func NewSourceUnavailableError(operation string, err error) *SourceError {
	return &SourceError{Operation: operation, Fatal: true, Err: err}
}

// RemoteWriteError represents a failed upload or delete of a single path
type RemoteWriteError struct {
	Operation string // "put", "delete", "mkdir"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("remote %s of %s failed: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RemoteWriteError) Is(target error) bool {
	return target == ErrRemoteWriteFailed
}

// NewRemoteWriteError creates a new RemoteWriteError
func NewRemoteWriteError(operation, path string, err error) *RemoteWriteError {
	return &RemoteWriteError{Operation: operation, Path: path, Err: err}
}

// ReportPersistError represents a failure to write the finished report
type ReportPersistError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *ReportPersistError) Error() string {
	return fmt.Sprintf("failed to persist report to %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ReportPersistError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ReportPersistError) Is(target error) bool {
	return target == ErrReportPersistFailed
}

// NewReportPersistError creates a new ReportPersistError
func NewReportPersistError(path string, err error) *ReportPersistError {
	return &ReportPersistError{Path: path, Err: err}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents a non-success HTTP response from an upstream API
type APIError struct {
	API        string // "dog.ceo", "yandex.disk"
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.API, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.API, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusConflict:
		return target == ErrAlreadyExists
	case http.StatusUnauthorized, http.StatusForbidden:
		return target == ErrUnauthorized
	case http.StatusTooManyRequests:
		return target == ErrRateLimited
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(api string, statusCode int, message string) *APIError {
	return &APIError{
		API:        api,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	Source  string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s parse error in %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnauthorized checks if an error is an authentication failure
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRemoteUnavailable checks if an error is fatal to the run at listing time
func IsRemoteUnavailable(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable)
}

// IsFatal reports whether err prevents a report from being produced
func IsFatal(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable) ||
		errors.Is(err, ErrSourceUnavailable) ||
		errors.Is(err, ErrInvalidInput)
}

// Helper wrapping functions for common patterns

// WrapParse wraps an error as a ParseError
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, Source: source, Message: err.Error(), Err: err}
}

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}
