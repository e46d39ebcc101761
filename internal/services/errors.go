package services

import (
	"fmt"
	"net/http"
)

// ===============================
// ERROR TYPES
// ===============================

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       "NOT_FOUND",
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Type:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{
		Type:       "FORBIDDEN",
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       "CONFLICT",
		Message:    message,
		Code:       code,
		StatusCode: http.StatusConflict,
	}
}

// NewIndexError creates an error for out-of-range list indexes
func NewIndexError(message string) *ServiceError {
	return &ServiceError{
		Type:       "INDEX_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewStoreError wraps a persistence failure
func NewStoreError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       "STORE_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewSummarizerError wraps a summarizer backend failure
func NewSummarizerError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       "SUMMARIZER_ERROR",
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *ServiceError {
	return &ServiceError{
		Type:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewServiceUnavailableError creates a service unavailable error
func NewServiceUnavailableError(message string) *ServiceError {
	return &ServiceError{
		Type:       "SERVICE_UNAVAILABLE",
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

// ===============================
// ERROR UTILITIES
// ===============================

// IsServiceError checks if an error is a ServiceError
func IsServiceError(err error) bool {
	_, ok := err.(*ServiceError)
	return ok
}

// GetServiceError extracts a ServiceError from an error, or creates a generic one
func GetServiceError(err error) *ServiceError {
	if serviceErr, ok := err.(*ServiceError); ok {
		return serviceErr
	}
	return NewInternalError(err.Error())
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	if serviceErr := GetServiceError(err); serviceErr != nil {
		return serviceErr.Type == errorType
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return IsErrorType(err, "NOT_FOUND")
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return IsErrorType(err, "VALIDATION_ERROR")
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return IsErrorType(err, "UNAUTHORIZED")
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return IsErrorType(err, "FORBIDDEN")
}

// ===============================
// ERROR CONTEXT
// ===============================

// ErrorContext provides additional context for errors
type ErrorContext struct {
	PublicID  string                 `json:"public_id,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Operation string                 `json:"operation,omitempty"`
	Resource  string                 `json:"resource,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// WithContext adds context to a service error
func (e *ServiceError) WithContext(ctx *ErrorContext) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}

	if ctx.PublicID != "" {
		e.Details["public_id"] = ctx.PublicID
	}
	if ctx.RequestID != "" {
		e.Details["request_id"] = ctx.RequestID
	}
	if ctx.Operation != "" {
		e.Details["operation"] = ctx.Operation
	}
	if ctx.Resource != "" {
		e.Details["resource"] = ctx.Resource
	}
	for k, v := range ctx.Metadata {
		e.Details[k] = v
	}

	return e
}

// ===============================
// COMMON ERROR PATTERNS
// ===============================

// EntityNotFoundError creates a standard entity not found error
func EntityNotFoundError(entityType string, id interface{}) *ServiceError {
	return NewNotFoundError(fmt.Sprintf("%s not found", entityType)).WithContext(&ErrorContext{
		Resource: entityType,
		Metadata: map[string]interface{}{
			"id": id,
		},
	})
}

// EntityAlreadyExistsError creates a standard entity already exists error
func EntityAlreadyExistsError(entityType string, field, value string) *ServiceError {
	return NewConflictError(
		fmt.Sprintf("%s already exists", entityType),
		"ENTITY_ALREADY_EXISTS",
	).WithContext(&ErrorContext{
		Resource: entityType,
		Metadata: map[string]interface{}{
			"field": field,
			"value": value,
		},
	})
}

// InsufficientPermissionsError creates a standard permissions error
func InsufficientPermissionsError(action, resource string) *ServiceError {
	return NewForbiddenError(fmt.Sprintf("Insufficient permissions to %s %s", action, resource)).WithContext(&ErrorContext{
		Operation: action,
		Resource:  resource,
	})
}
