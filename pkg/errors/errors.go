// Package errors defines custom error types and error handling utilities for the stockwatch service.
// This package provides structured error types that map to stable error codes and HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error identifier surfaced in responses.
type Code string

const (
	CodeCredentialMissing    Code = "credential_missing"
	CodeCredentialInvalid    Code = "credential_invalid"
	CodeClaimMissing         Code = "claim_missing"
	CodeInvalidRequest       Code = "invalid_request"
	CodeNotFound             Code = "not_found"
	CodeConflict             Code = "conflict"
	CodeUpstreamUnavailable  Code = "upstream_unavailable"
	CodeAPIKeyNotConfigured  Code = "api_key_not_configured"
	CodeRateLimitExceeded    Code = "rate_limit_exceeded"
	CodeInternal             Code = "internal_error"
	CodeInvalidConfiguration Code = "invalid_configuration"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AppError represents a structured error with additional metadata
type AppError interface {
	error

	// Code returns the stable error code
	Code() Code

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause returns a copy carrying the given cause
	WithCause(cause error) AppError

	// WithMetadata returns a copy carrying an additional metadata entry
	WithMetadata(key string, value interface{}) AppError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	code        Code
	httpStatus  int
	description string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.description, e.cause)
	}
	return e.description
}

func (e *baseError) Code() Code          { return e.code }
func (e *baseError) HTTPStatus() int     { return e.httpStatus }
func (e *baseError) Description() string { return e.description }
func (e *baseError) Unwrap() error       { return e.cause }

// Is matches any AppError carrying the same code, so sentinel values work with errors.Is.
func (e *baseError) Is(target error) bool {
	t, ok := target.(*baseError)
	if !ok {
		return false
	}
	return t.code == e.code
}

// WithCause returns a copy so predefined sentinels are never mutated.
func (e *baseError) WithCause(cause error) AppError {
	cp := e.clone()
	cp.cause = cause
	return cp
}

// WithMetadata returns a copy with the additional entry.
func (e *baseError) WithMetadata(key string, value interface{}) AppError {
	cp := e.clone()
	cp.metadata[key] = value
	return cp
}

// Metadata returns all metadata
func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

func (e *baseError) clone() *baseError {
	md := make(map[string]interface{}, len(e.metadata)+1)
	for k, v := range e.metadata {
		md[k] = v
	}
	return &baseError{
		code:        e.code,
		httpStatus:  e.httpStatus,
		description: e.description,
		cause:       e.cause,
		metadata:    md,
	}
}

// ================================================================================
// Error Constructor
// ================================================================================

// NewError creates a new AppError with the specified parameters
func NewError(code Code, httpStatus int, description string) AppError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Predefined Errors
// ================================================================================

var (
	// ErrCredentialMissing is returned when the Authorization header is absent or not a bearer credential.
	ErrCredentialMissing = NewError(CodeCredentialMissing, http.StatusUnauthorized, "Missing or invalid token")

	// ErrCredentialInvalid is returned when the token fails signature, expiry or format checks.
	ErrCredentialInvalid = NewError(CodeCredentialInvalid, http.StatusUnauthorized, "Invalid token")

	// ErrClaimMissing is returned when a verified token lacks the user identifier claim.
	ErrClaimMissing = NewError(CodeClaimMissing, http.StatusUnauthorized, "Token is missing the user identifier")

	// ErrUpstreamUnavailable is returned when the market-data provider cannot be reached.
	ErrUpstreamUnavailable = NewError(CodeUpstreamUnavailable, http.StatusBadGateway, "Market data provider unavailable")

	// ErrAPIKeyNotConfigured is returned when no provider API key is configured.
	ErrAPIKeyNotConfigured = NewError(CodeAPIKeyNotConfigured, http.StatusInternalServerError, "API key not configured")

	// ErrInternalServer is a generic 500.
	ErrInternalServer = NewError(CodeInternal, http.StatusInternalServerError, "An unexpected error occurred")

	// ErrRateLimitExceeded is returned by the rate limiting middleware.
	ErrRateLimitExceeded = NewError(CodeRateLimitExceeded, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")

	// ErrInvalidConfig is returned when required configuration is absent.
	ErrInvalidConfig = NewError(CodeInvalidConfiguration, http.StatusInternalServerError, "invalid configuration")
)

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrInvalidRequest creates an invalid_request error
func ErrInvalidRequest(message string) AppError {
	return NewError(CodeInvalidRequest, http.StatusBadRequest, message)
}

// ErrNotFound creates a not_found error
func ErrNotFound(message string) AppError {
	return NewError(CodeNotFound, http.StatusNotFound, message)
}

// ErrConflict creates a conflict error
func ErrConflict(message string) AppError {
	return NewError(CodeConflict, http.StatusConflict, message)
}

// ErrServerError creates an internal_error with a specific message
func ErrServerError(message string) AppError {
	return NewError(CodeInternal, http.StatusInternalServerError, message)
}

// ErrUserNotFound creates a user not found error
func ErrUserNotFound(googleID string) AppError {
	return ErrNotFound("User not found").WithMetadata("google_id", googleID)
}

// ErrInvalidSymbol creates an invalid stock symbol error
func ErrInvalidSymbol(symbol string) AppError {
	return ErrInvalidRequest("Invalid stock symbol").WithMetadata("symbol", symbol)
}

// ErrUpstream wraps a provider failure
func ErrUpstream(cause error) AppError {
	return ErrUpstreamUnavailable.WithCause(cause)
}

// ================================================================================
// Error Validation Utilities
// ================================================================================

// AsAppError attempts to extract an AppError from an error chain
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is is a convenience re-export of the standard library errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// IsAuthenticationError checks if an error is one of the credential failures
func IsAuthenticationError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Code() {
		case CodeCredentialMissing, CodeCredentialInvalid, CodeClaimMissing:
			return true
		}
	}
	return false
}

// IsNotFoundError checks if an error is a not found error.
func IsNotFoundError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code() == CodeNotFound
	}
	return false
}

// ShouldLogError determines if an error should be logged at error level
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus() >= 500
	}
	return true
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse represents the JSON structure for error responses
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ToErrorResponse converts any error to an ErrorResponse and its HTTP status
func ToErrorResponse(err error) (int, *ErrorResponse) {
	if appErr, ok := AsAppError(err); ok {
		resp := &ErrorResponse{
			Error: appErr.Description(),
			Code:  string(appErr.Code()),
		}
		if len(appErr.Metadata()) > 0 {
			resp.Details = appErr.Metadata()
		}
		return appErr.HTTPStatus(), resp
	}

	// Fallback to generic server error
	return http.StatusInternalServerError, &ErrorResponse{
		Error: ErrInternalServer.Description(),
		Code:  string(CodeInternal),
	}
}

//Personal.AI order the ending
