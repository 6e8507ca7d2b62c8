// Package errors defines structured error types for the PrintStarter API.
// Every failure that can reach the handler boundary carries an error code
// and an HTTP status so handlers can map it to a JSON {error} body without
// inspecting error strings.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for the request-governance taxonomy.
const (
	CodeValidation        = "validation_error"
	CodeRateLimited       = "rate_limit_exceeded"
	CodeUpstreamMalformed = "upstream_malformed_output"
	CodeStoreUnavailable  = "store_unavailable"
	CodeUnauthorized      = "unauthorized"
	CodeInternal          = "internal_error"
)

// AppError is a structured application error with an HTTP status mapping.
type AppError struct {
	code     string
	status   int
	message  string
	cause    error
	metadata map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return e.message
}

// Code returns the machine-readable error code.
func (e *AppError) Code() string {
	return e.code
}

// HTTPStatus returns the HTTP status this error maps to.
func (e *AppError) HTTPStatus() int {
	return e.status
}

// Unwrap returns the underlying cause for error-chain support.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error to the chain.
func (e *AppError) WithCause(cause error) *AppError {
	e.cause = cause
	return e
}

// WithMetadata attaches additional context to the error.
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns all attached metadata.
func (e *AppError) Metadata() map[string]interface{} {
	return e.metadata
}

// New creates an AppError with an explicit code and status.
func New(code string, status int, message string) *AppError {
	return &AppError{code: code, status: status, message: message}
}

// ================================================================================
// Predefined Constructors
// ================================================================================

// ErrValidation creates a client-facing 400 for bad input shape, length or
// enum membership. The message is returned to the caller verbatim.
func ErrValidation(message string) *AppError {
	return New(CodeValidation, http.StatusBadRequest, message)
}

// ErrLengthExceeded creates the validation failure for an over-long field.
func ErrLengthExceeded(name string, maxChars int) *AppError {
	return ErrValidation(fmt.Sprintf("%s exceeds %d characters.", name, maxChars)).
		WithMetadata("field", name).
		WithMetadata("max_chars", maxChars)
}

// ErrNotOneOf creates the validation failure for an enum mismatch.
func ErrNotOneOf(name string) *AppError {
	return ErrValidation(fmt.Sprintf("Invalid %s.", name)).
		WithMetadata("field", name)
}

// ErrRateLimited creates the 429 returned when a fixed window is exhausted.
func ErrRateLimited(limit int64, windowSeconds int64) *AppError {
	return New(CodeRateLimited, http.StatusTooManyRequests,
		"Too many requests. Please try again shortly.").
		WithMetadata("limit", limit).
		WithMetadata("window_seconds", windowSeconds)
}

// ErrUpstreamMalformed creates the 502 returned when the generation backend
// produced unparseable or empty output. Not retried automatically.
func ErrUpstreamMalformed(message string) *AppError {
	return New(CodeUpstreamMalformed, http.StatusBadGateway, message)
}

// ErrStoreUnavailable creates the 500 returned when the key-value store
// cannot be reached. Rate limiting fails closed on this error.
func ErrStoreUnavailable(cause error) *AppError {
	return New(CodeStoreUnavailable, http.StatusInternalServerError,
		"Service temporarily unavailable.").WithCause(cause)
}

// ErrUnauthorized creates a 401 for a bad or missing shared secret.
func ErrUnauthorized(message string) *AppError {
	return New(CodeUnauthorized, http.StatusUnauthorized, message)
}

// ErrServer creates a generic 500 without leaking internals.
func ErrServer(message string) *AppError {
	return New(CodeInternal, http.StatusInternalServerError, message)
}

// ================================================================================
// Inspection Helpers
// ================================================================================

// AsAppError extracts an AppError from an error chain, if present.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HTTPStatus returns the status for any error, defaulting to 500.
func HTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code() == code
}

// Label returns the short error label recorded alongside request metrics.
// A "label" metadata entry wins; otherwise the label is derived from the
// error code. Unknown errors are labelled server_error.
func Label(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return "server_error"
	}
	if v, found := appErr.metadata["label"]; found {
		if s, isString := v.(string); isString {
			return s
		}
	}
	switch appErr.code {
	case CodeValidation:
		return "validation_error"
	case CodeRateLimited:
		return "rate_limit"
	case CodeUpstreamMalformed:
		return "invalid_model_json"
	case CodeUnauthorized:
		return "unauthorized"
	default:
		return "server_error"
	}
}
