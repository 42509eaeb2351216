package types

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation              ErrorType = "validation"
	ErrorTypeConflict                ErrorType = "conflict"
	ErrorTypeNotFound                ErrorType = "not_found"
	ErrorTypeAmbiguousMatch          ErrorType = "ambiguous_match"
	ErrorTypeExternal                ErrorType = "external"
	ErrorTypeClassificationIntegrity ErrorType = "classification_integrity"
	ErrorTypeInternal                ErrorType = "internal"
)

// AgentError represents a structured error in the agent system
type AgentError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *AgentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AgentError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(code, message string, details map[string]interface{}) *AgentError {
	return &AgentError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewConflictError creates a new scheduling conflict error. The resource
// field distinguishes "doctor busy" from "you already have an appointment".
func NewConflictError(code, message string, resource ResourceKind) *AgentError {
	return &AgentError{
		Type:    ErrorTypeConflict,
		Code:    code,
		Message: message,
		Details: map[string]interface{}{"resource": string(resource)},
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(code, message string, details map[string]interface{}) *AgentError {
	return &AgentError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewAmbiguousMatchError creates an error for criteria matching more than
// one appointment
func NewAmbiguousMatchError(code, message string, details map[string]interface{}) *AgentError {
	return &AgentError{
		Type:    ErrorTypeAmbiguousMatch,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(code, message string, cause error) *AgentError {
	return &AgentError{
		Type:    ErrorTypeExternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewClassificationIntegrityError creates an error for out-of-enum
// classification output
func NewClassificationIntegrityError(code, message string, details map[string]interface{}) *AgentError {
	return &AgentError{
		Type:    ErrorTypeClassificationIntegrity,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(code, message string, cause error) *AgentError {
	return &AgentError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsErrorType reports whether err is an AgentError of the given type
func IsErrorType(err error, t ErrorType) bool {
	var agentErr *AgentError
	if errors.As(err, &agentErr) {
		return agentErr.Type == t
	}
	return false
}

// IsConflict reports whether err is a scheduling conflict
func IsConflict(err error) bool { return IsErrorType(err, ErrorTypeConflict) }

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return IsErrorType(err, ErrorTypeNotFound) }

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return IsErrorType(err, ErrorTypeValidation) }

// ConflictResource returns the conflicting resource kind carried by a
// conflict error, if any
func ConflictResource(err error) (ResourceKind, bool) {
	var agentErr *AgentError
	if !errors.As(err, &agentErr) || agentErr.Type != ErrorTypeConflict {
		return "", false
	}
	res, ok := agentErr.Details["resource"].(string)
	if !ok {
		return "", false
	}
	return ResourceKind(res), true
}

// Common error codes
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeInvalidDateTime   = "INVALID_DATETIME"
	ErrCodePastDateTime      = "PAST_DATETIME"
	ErrCodeDoctorConflict    = "DOCTOR_CONFLICT"
	ErrCodePatientConflict   = "PATIENT_CONFLICT"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAmbiguousMatch    = "AMBIGUOUS_MATCH"
	ErrCodeExternalError     = "EXTERNAL_ERROR"
	ErrCodeInvalidCategories = "INVALID_TICKET_CATEGORIES"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeSessionNotFound   = "SESSION_NOT_FOUND"
)
