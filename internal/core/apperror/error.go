// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes grouped by concern
const (
	// Infrastructure errors (5xx)
	CodeInternal       = "INTERNAL_ERROR"
	CodeDatabase       = "DATABASE_ERROR"
	CodeReconciliation = "RECONCILIATION_FAILED"

	// Validation errors (400)
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidRate         = "INVALID_RATE"
	CodeMalformedExtraction = "MALFORMED_EXTRACTION"

	// Business rule violations (422)
	CodeConversionUnavailable = "CONVERSION_UNAVAILABLE"

	// Upstream collaborator failures (502)
	CodeExtractionFailed = "EXTRACTION_FAILED"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type for the service.
// It implements the error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, currency pairs, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInvalidRate creates an exchange-rate validation error (400)
func NewInvalidRate(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidRate,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewConversionUnavailable signals a missing direct exchange-rate edge (422).
// Callers decide whether this aborts the operation; the reconciler tolerates it.
func NewConversionUnavailable(from, to string) *AppError {
	return &AppError{
		Code:       CodeConversionUnavailable,
		Message:    fmt.Sprintf("no exchange rate from %s to %s", from, to),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"from": from, "to": to},
	}
}

// NewMalformedExtraction creates an error for an undecodable extraction payload (400)
func NewMalformedExtraction(err error) *AppError {
	return &AppError{
		Code:       CodeMalformedExtraction,
		Message:    "extraction payload is not a JSON object",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewExtractionFailed wraps an opaque failure of the external extractor (502)
func NewExtractionFailed(diagnostic string, err error) *AppError {
	return &AppError{
		Code:       CodeExtractionFailed,
		Message:    "document extraction failed",
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"diagnostic": diagnostic},
		Err:        err,
	}
}

// NewReconciliation wraps a transactional reconciliation failure (500).
// The whole transaction has been rolled back when this is returned.
func NewReconciliation(err error) *AppError {
	return &AppError{
		Code:       CodeReconciliation,
		Message:    "invoice reconciliation failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewDatabase wraps a database infrastructure failure (500).
// Business-level constraint violations map to their own codes instead.
func NewDatabase(op string, err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    fmt.Sprintf("database operation failed: %s", op),
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsCode checks if error carries the given code
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsConversionUnavailable checks if error is CodeConversionUnavailable
func IsConversionUnavailable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeConversionUnavailable
	}
	return false
}
