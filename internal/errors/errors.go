package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeInvalidCredentials indicates a user-supplied username/password
	// did not validate. Retryable by the user immediately.
	ErrCodeInvalidCredentials ErrorCode = "invalid_credentials"
	// ErrCodeServiceAuth indicates the fixed service-credential exchange
	// failed for reasons unrelated to the end user's credentials.
	ErrCodeServiceAuth ErrorCode = "service_auth"
	// ErrCodeTransport indicates a network or timeout failure reaching an
	// upstream. Safe to retry.
	ErrCodeTransport ErrorCode = "transport"
	// ErrCodeFederatedFlow indicates an identity-provider redirect or
	// silent-acquisition failure.
	ErrCodeFederatedFlow ErrorCode = "federated_flow"
	// ErrCodeMalformedClaims indicates claim decoding failed inside the
	// claim mapper. Never surfaced to the user.
	ErrCodeMalformedClaims ErrorCode = "malformed_claims"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError is a structured application error with a code, message, and
// optional cause. It supports errors.Is and errors.As via Unwrap.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// InvalidCredentials creates a new invalid-credentials error.
func InvalidCredentials(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidCredentials, Message: message}
}

// ServiceAuth creates a new service-authentication error.
func ServiceAuth(message string) *AppError {
	return &AppError{Code: ErrCodeServiceAuth, Message: message}
}

// Transport creates a new transport error.
func Transport(message string) *AppError {
	return &AppError{Code: ErrCodeTransport, Message: message}
}

// FederatedFlow creates a new federated-flow error.
func FederatedFlow(message string) *AppError {
	return &AppError{Code: ErrCodeFederatedFlow, Message: message}
}

// MalformedClaims creates a new malformed-claims error.
func MalformedClaims(message string) *AppError {
	return &AppError{Code: ErrCodeMalformedClaims, Message: message}
}

// Validation creates a new validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Internal creates a new internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Internalf creates a new internal error with a formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsInvalidCredentials checks if an error is an invalid-credentials error.
func IsInvalidCredentials(err error) bool {
	return isCode(err, ErrCodeInvalidCredentials)
}

// IsServiceAuth checks if an error is a service-authentication error.
func IsServiceAuth(err error) bool {
	return isCode(err, ErrCodeServiceAuth)
}

// IsTransport checks if an error is a transport error.
func IsTransport(err error) bool {
	return isCode(err, ErrCodeTransport)
}

// IsFederatedFlow checks if an error is a federated-flow error.
func IsFederatedFlow(err error) bool {
	return isCode(err, ErrCodeFederatedFlow)
}

// IsMalformedClaims checks if an error is a malformed-claims error.
func IsMalformedClaims(err error) bool {
	return isCode(err, ErrCodeMalformedClaims)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsInternal checks if an error is an internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// GetCode returns the ErrorCode from an error, or empty string if the
// error is not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Canonical user-facing messages for each failure bucket. Upstream
// detail never leaks past these; full detail goes to server-side logs.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgServiceAuth        = "Service authentication error. Please contact support."
	MsgTransport          = "Cannot connect to server. Please check your network connection."
	MsgInternal           = "Login failed"
)

// UserMessage maps an error to the message shown to the end user.
// InvalidCredentials errors keep their own message (it may carry the
// backend's wording, e.g. "Invalid credentials"); every other bucket
// collapses to its canonical generic message.
func UserMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return MsgInternal
	}
	switch appErr.Code {
	case ErrCodeInvalidCredentials:
		if appErr.Message != "" {
			return appErr.Message
		}
		return MsgInvalidCredentials
	case ErrCodeServiceAuth:
		return MsgServiceAuth
	case ErrCodeTransport:
		return MsgTransport
	case ErrCodeFederatedFlow:
		if appErr.Message != "" {
			return appErr.Message
		}
		return MsgInternal
	default:
		return MsgInternal
	}
}
