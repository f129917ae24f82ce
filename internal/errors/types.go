package errors

import (
	"fmt"
	"net/http"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeExtraction ErrorType = "EXTRACTION_ERROR"
	ErrorTypeAuthCheck  ErrorType = "AUTH_CHECK_ERROR"
	ErrorTypeTagging    ErrorType = "TAGGING_ERROR"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
)

// AppError represents a structured error for the application
type AppError struct {
	Type          ErrorType `json:"type"`
	Message       string    `json:"message"`
	StatusCode    int       `json:"statusCode"`
	ErrorCode     string    `json:"errorCode"`
	IsOperational bool      `json:"isOperational"`
	Recovery      string    `json:"recoverySuggestion,omitempty"`
	Err           error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Code returns the application-specific error code
func (e *AppError) Code() string {
	return e.ErrorCode
}

// RecoverySuggestion returns the suggestion on how to recover from the error
func (e *AppError) RecoverySuggestion() string {
	return e.Recovery
}

// Unwrap exposes the underlying cause, if any
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error (400)
func NewValidationError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:          ErrorTypeValidation,
		Message:       message,
		StatusCode:    http.StatusBadRequest,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      suggestion,
	}
}

// NewExtractionError creates a new extraction error (500)
func NewExtractionError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeExtraction,
		Message:       message,
		StatusCode:    http.StatusInternalServerError,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Verify the URL is reachable and try again later.",
		Err:           err,
	}
}

// NewAuthCheckError creates an extraction error caused by the source
// rejecting the request with a sign-in or bot challenge (500)
func NewAuthCheckError(err error) *AppError {
	return &AppError{
		Type:          ErrorTypeAuthCheck,
		Message:       "source requires authentication: cookie file missing or expired",
		StatusCode:    http.StatusInternalServerError,
		ErrorCode:     "AUTH_CHECK_REJECTED",
		IsOperational: true,
		Recovery:      "Provision a fresh cookie file and restart the service.",
		Err:           err,
	}
}

// NewTaggingError creates a new tagging error. Tagging failures are logged
// by the caller and never fail a conversion, so the status code is never
// surfaced to a client.
func NewTaggingError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeTagging,
		Message:       message,
		StatusCode:    http.StatusInternalServerError,
		ErrorCode:     errorCode,
		IsOperational: true,
		Err:           err,
	}
}

// NewInternalError creates a new internal error (500)
func NewInternalError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeInternal,
		Message:       message,
		StatusCode:    http.StatusInternalServerError,
		ErrorCode:     errorCode,
		IsOperational: false,
		Err:           err,
	}
}
