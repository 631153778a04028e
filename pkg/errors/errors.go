package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a rejected or incomplete payload
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a conflict with existing data
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeUnauthorized indicates a missing, expired or rejected credential
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeNetwork indicates a transport failure or timeout
	ErrorTypeNetwork ErrorType = "NETWORK"

	// ErrorTypeInternal indicates a local failure (encoding, decoding)
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates any other non-2xx answer from the backend
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	// Fields holds per-field messages for validation errors.
	Fields map[string]string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewFieldValidationError creates a validation error carrying per-field messages
func NewFieldValidationError(message string, fields map[string]string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Fields:  fields,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Message: message,
	}
}

// NewNetworkError creates a new transport error
func NewNetworkError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeNetwork,
		Message: message,
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the type of the first AppError in err's chain.
// Errors that are not AppErrors report ErrorTypeInternal.
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsType reports whether err carries an AppError of the given type
func IsType(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

// Message returns the user-facing message of err without the type prefix
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
