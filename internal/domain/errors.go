package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ExportNotReadyError indicates an export was requested before every
	// deliverable and checklist item was completed
	ExportNotReadyError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string       { return e.Message }
func (e *ValidationError) Error() string     { return e.Message }
func (e *UnauthorizedError) Error() string   { return e.Message }
func (e *ExportNotReadyError) Error() string { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int       { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int     { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int   { return http.StatusUnauthorized }
func (e *ExportNotReadyError) StatusCode() int { return http.StatusBadRequest }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrExportNotReady = errors.New("export not ready")
)

// Is allows errors.Is() to match against ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Is allows errors.Is() to match against ErrExportNotReady
func (e *ExportNotReadyError) Is(target error) bool {
	return target == ErrExportNotReady
}

// ConflictError represents a name-uniqueness violation. It carries a
// suggested alternative name so the client can resubmit without guessing.
// Implements HTTPError interface for extensible error handling
type ConflictError struct {
	Message       string // Human-readable error message
	ResourceType  string // Type of resource (run, draft)
	SuggestedName string // Alternative derived from the file name
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
