// Package errors provides structured error handling for netsentinel operations.
// It defines error codes, typed errors for each subsystem, and helpers for
// classifying errors when they cross package or HTTP boundaries.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeCanceled      ErrorCode = "CANCELED"
	CodePermission    ErrorCode = "PERMISSION"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeConflict      ErrorCode = "CONFLICT"

	// Scan pipeline errors.
	CodeAlreadyRunning       ErrorCode = "ALREADY_RUNNING"
	CodeDiscoveryUnavailable ErrorCode = "DISCOVERY_UNAVAILABLE"
	CodeDiscoveryFailed      ErrorCode = "DISCOVERY_FAILED"
	CodeProbeTimeout         ErrorCode = "PROBE_TIMEOUT"
	CodeTargetInvalid        ErrorCode = "TARGET_INVALID"
	CodePersistenceFailure   ErrorCode = "PERSISTENCE_FAILURE"

	// Database errors.
	CodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION"
	CodeDatabaseQuery      ErrorCode = "DATABASE_QUERY"
	CodeDatabaseMigration  ErrorCode = "DATABASE_MIGRATION"
	CodeDatabaseTimeout    ErrorCode = "DATABASE_TIMEOUT"

	// External collaborator errors.
	CodeNotificationFailure ErrorCode = "NOTIFICATION_FAILURE"
	CodeEnrichmentTimeout   ErrorCode = "ENRICHMENT_TIMEOUT"
	CodeServiceUnavailable  ErrorCode = "SERVICE_UNAVAILABLE"
	CodeRateLimited         ErrorCode = "RATE_LIMITED"
)

// ScanError represents an error raised by the scan pipeline.
type ScanError struct {
	Code    ErrorCode
	Message string
	Stage   string
	Target  string
	Cause   error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Target != "" {
		msg = fmt.Sprintf("%s (target: %s)", msg, e.Target)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// WithStage records the pipeline stage that failed.
func (e *ScanError) WithStage(stage string) *ScanError {
	e.Stage = stage
	return e
}

// NewScanError creates a new scan error with the specified code and message.
func NewScanError(code ErrorCode, message string) *ScanError {
	return &ScanError{Code: code, Message: message}
}

// WrapScanError wraps an existing error as a scan error.
func WrapScanError(code ErrorCode, message string, err error) *ScanError {
	return &ScanError{Code: code, Message: message, Cause: err}
}

// DatabaseError represents database-related errors.
type DatabaseError struct {
	Code      ErrorCode
	Message   string
	Operation string
	Query     string
	Cause     error
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("[%s] %s (operation: %s)", e.Code, e.Message, e.Operation)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// WithQuery adds the SQL query that caused the error.
func (e *DatabaseError) WithQuery(query string) *DatabaseError {
	e.Query = query
	return e
}

// NewDatabaseError creates a new database error.
func NewDatabaseError(code ErrorCode, message string) *DatabaseError {
	return &DatabaseError{Code: code, Message: message}
}

// WrapDatabaseError wraps an existing error as a database error.
func WrapDatabaseError(code ErrorCode, message string, err error) *DatabaseError {
	return &DatabaseError{Code: code, Message: message, Cause: err}
}

// DiscoveryError represents network discovery errors.
type DiscoveryError struct {
	Code    ErrorCode
	Message string
	Network string
	Method  string
	Cause   error
}

// Error implements the error interface.
func (e *DiscoveryError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Network != "" {
		msg = fmt.Sprintf("%s (network: %s)", msg, e.Network)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *DiscoveryError) Unwrap() error {
	return e.Cause
}

// NewDiscoveryError creates a new discovery error.
func NewDiscoveryError(code ErrorCode, message string) *DiscoveryError {
	return &DiscoveryError{Code: code, Message: message}
}

// WrapDiscoveryError wraps an existing error as a discovery error.
func WrapDiscoveryError(code ErrorCode, message string, err error) *DiscoveryError {
	return &DiscoveryError{Code: code, Message: message, Cause: err}
}

// ServiceError represents a failure talking to an external collaborator
// such as the webhook transport or the model runtime.
type ServiceError struct {
	Code    ErrorCode
	Service string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Code, e.Service, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{Code: code, Message: message, Field: field, Value: value}
}

// coded is satisfied by every error type in this package.
type coded interface {
	error
	code() ErrorCode
}

func (e *ScanError) code() ErrorCode      { return e.Code }
func (e *DatabaseError) code() ErrorCode  { return e.Code }
func (e *DiscoveryError) code() ErrorCode { return e.Code }
func (e *ServiceError) code() ErrorCode   { return e.Code }
func (e *ConfigError) code() ErrorCode    { return e.Code }

// GetCode extracts the first error code found in the error chain.
func GetCode(err error) ErrorCode {
	var c coded
	if stderrors.As(err, &c) {
		return c.code()
	}
	return CodeUnknown
}

// IsCode checks if any error in the chain carries the given code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		if c, ok := err.(coded); ok && c.code() == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether err signals a missing resource.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsConflict reports whether err signals a state conflict.
func IsConflict(err error) bool {
	return IsCode(err, CodeConflict) || IsCode(err, CodeAlreadyRunning)
}

// IsRetryable determines if an error indicates a retryable condition.
func IsRetryable(err error) bool {
	switch GetCode(err) {
	case CodeTimeout, CodeAlreadyRunning, CodeDatabaseTimeout, CodeServiceUnavailable,
		CodeRateLimited, CodeNotificationFailure:
		return true
	default:
		return false
	}
}

// IsFatal determines if an error should abort the current scan attempt.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case CodePermission, CodeConfiguration, CodeDatabaseMigration,
		CodeDiscoveryUnavailable, CodePersistenceFailure:
		return true
	default:
		return false
	}
}

// ErrAlreadyRunning is returned when a scan is requested while one is active.
func ErrAlreadyRunning() *ScanError {
	return NewScanError(CodeAlreadyRunning, "Scan already in progress")
}

// ErrDiscoveryUnavailable reports a missing raw-network capability.
func ErrDiscoveryUnavailable(method string, err error) *DiscoveryError {
	e := WrapDiscoveryError(CodeDiscoveryUnavailable, "Host discovery capability unavailable", err)
	e.Method = method
	return e
}

// ErrDiscoveryFailed creates an error for discovery failures.
func ErrDiscoveryFailed(network string, err error) *DiscoveryError {
	e := WrapDiscoveryError(CodeDiscoveryFailed, "Network discovery failed", err)
	e.Network = network
	return e
}

// ErrProbeTimeout marks a single port check that ran out of time.
func ErrProbeTimeout(target string) *ScanError {
	return &ScanError{Code: CodeProbeTimeout, Message: "Port probe timed out", Target: target}
}

// ErrPersistence wraps a failure to durably write a snapshot.
func ErrPersistence(err error) *ScanError {
	return WrapScanError(CodePersistenceFailure, "Snapshot could not be persisted", err).WithStage("persist")
}

// ErrNotification wraps a failed webhook dispatch.
func ErrNotification(service string, err error) *ServiceError {
	return &ServiceError{Code: CodeNotificationFailure, Service: service, Message: "dispatch failed", Cause: err}
}

// ErrEnrichmentTimeout wraps an AI request that exceeded its bound.
func ErrEnrichmentTimeout(service string, err error) *ServiceError {
	return &ServiceError{Code: CodeEnrichmentTimeout, Service: service, Message: "request timed out", Cause: err}
}

// ErrServiceUnavailable wraps an external collaborator that cannot be reached.
func ErrServiceUnavailable(service string, err error) *ServiceError {
	return &ServiceError{Code: CodeServiceUnavailable, Service: service, Message: "service unavailable", Cause: err}
}

// ErrNotFound creates a not-found database error for the given entity.
func ErrNotFound(entity string) *DatabaseError {
	return NewDatabaseError(CodeNotFound, fmt.Sprintf("%s not found", entity))
}

// ErrDatabaseConnection creates an error for database connection failures.
func ErrDatabaseConnection(err error) *DatabaseError {
	return WrapDatabaseError(CodeDatabaseConnection, "Failed to connect to database", err)
}

// ErrDatabaseQuery creates an error for database query failures.
func ErrDatabaseQuery(query string, err error) *DatabaseError {
	return WrapDatabaseError(CodeDatabaseQuery, "Database query failed", err).WithQuery(query)
}

// ErrConfigInvalid creates an error for invalid configuration.
func ErrConfigInvalid(field string, value interface{}) *ConfigError {
	return NewConfigFieldError(CodeValidation, "Invalid configuration value", field, value)
}

// ErrConfigMissing creates an error for missing required configuration.
func ErrConfigMissing(field string) *ConfigError {
	return NewConfigFieldError(CodeConfiguration, "Required configuration field missing", field, nil)
}
