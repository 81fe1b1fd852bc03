// Package errors provides custom error types for the resultsync system.
// These errors enable programmatic error checking across the sync phases
// and keep the soft/fatal distinction explicit.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
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

// Common sentinel errors for the resultsync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfig indicates a missing or invalid configuration field
	ErrConfig = errors.New("configuration error")

	// ErrTransport indicates that an archive could not be delivered
	ErrTransport = errors.New("transport failed")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCorruptStore indicates persisted or incoming result data is malformed
	ErrCorruptStore = errors.New("corrupt result store")

	// ErrArchive indicates an archive could not be packed or unpacked
	ErrArchive = errors.New("archive error")

	// ErrUnavailable indicates a remote service answered with a server error
	ErrUnavailable = errors.New("service unavailable")

	// ErrNotAcceptable indicates the result set holds a TIMEOUT, ERROR or FAIL outcome
	ErrNotAcceptable = errors.New("results not acceptable")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
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
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an unexpected HTTP response from a remote service
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	return e.StatusCode >= 500 && target == ErrUnavailable
}

// NewAPIError creates a new APIError
func NewAPIError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigError represents a configuration error. It is fatal at startup.
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

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// TransportError represents a failed or timed out archive delivery
type TransportError struct {
	Host     string
	Path     string
	TimedOut bool
	Err      error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	target := e.Host
	if e.Path != "" {
		target = e.Host + ":" + e.Path
	}
	if e.TimedOut {
		return fmt.Sprintf("transport to %s timed out: %v", target, e.Err)
	}
	return fmt.Sprintf("transport to %s failed: %v", target, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *TransportError) Is(target error) bool {
	if target == ErrTransport {
		return true
	}
	return e.TimedOut && target == ErrTimeout
}

// CorruptStoreError represents malformed persisted or incoming result data
type CorruptStoreError struct {
	Path    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *CorruptStoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("corrupt result data in %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("corrupt result data: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *CorruptStoreError) Is(target error) bool {
	return target == ErrCorruptStore
}

// NewCorruptStoreError creates a new CorruptStoreError
func NewCorruptStoreError(path string, err error) *CorruptStoreError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &CorruptStoreError{Path: path, Message: message, Err: err}
}

// ArchiveError represents a failure to pack or unpack an archive
type ArchiveError struct {
	Operation string // "pack", "unpack"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *ArchiveError) Error() string {
	return fmt.Sprintf("failed to %s archive %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ArchiveError) Is(target error) bool {
	return target == ErrArchive
}

// NewArchiveError creates a new ArchiveError
func NewArchiveError(operation, path string, err error) *ArchiveError {
	return &ArchiveError{Operation: operation, Path: path, Err: err}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "move", "rename"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support. Result payloads that fail to parse are
// corrupt store data.
func (e *ParseError) Is(target error) bool {
	return target == ErrCorruptStore
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// AbsorbError aggregates the per-archive failures of one absorb pass.
type AbsorbError struct {
	Failures map[string]error // archive path -> failure
}

// Error implements the error interface
func (e *AbsorbError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Failures[name]))
	}
	return fmt.Sprintf("%d archive(s) failed to absorb: %s", len(names), strings.Join(parts, "; "))
}

// Unwrap returns every per-archive failure.
func (e *AbsorbError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, err := range e.Failures {
		errs = append(errs, err)
	}
	return errs
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

// IsConfig checks if an error is a configuration error
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsTransport checks if an error is a transport error
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCorruptStore checks if an error indicates malformed result data
func IsCorruptStore(err error) bool {
	return errors.Is(err, ErrCorruptStore)
}

// IsUnavailable checks if a remote service reported a server error
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsNotAcceptable checks if an error reports an unacceptable result set
func IsNotAcceptable(err error) bool {
	return errors.Is(err, ErrNotAcceptable)
}

// IsArchive checks if an error is an archive error
func IsArchive(err error) bool {
	return errors.Is(err, ErrArchive)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapTransport wraps an error as a TransportError
func WrapTransport(host, path string, timedOut bool, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Host: host, Path: path, TimedOut: timedOut, Err: err}
}

// WrapArchive wraps an error as an ArchiveError
func WrapArchive(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewArchiveError(operation, path, err)
}
