package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeBackend    ErrorType = "backend"
	ErrorTypeDecode     ErrorType = "decode"
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// ConnectivityMessage is shown whenever a backend request never completed.
const ConnectivityMessage = "Error: Could not connect to the backend."

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error constructors for different types
func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

func NewNetworkError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, code, message, cause)
}

// NewBackendError wraps a business error reported by the backend. The
// message is shown to the user verbatim.
func NewBackendError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeBackend, code, message, cause)
}

func NewDecodeError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeDecode, code, message, cause)
}

func NewAuthError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeAuth, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// WithContext adds context to an error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// As finds the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, typ ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == typ
}

// IsConnectivity reports whether the request never completed.
func IsConnectivity(err error) bool {
	return IsType(err, ErrorTypeNetwork)
}

// UserMessage returns the text a user should see for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsConnectivity(err) {
		return ConnectivityMessage
	}
	if appErr, ok := As(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// Sentinel errors shared by the controllers.
var (
	ErrBusy          = stderrors.New("operation already in progress")
	ErrClosed        = stderrors.New("controller closed")
	ErrNoSession     = stderrors.New("not signed in")
	ErrStaleResponse = stderrors.New("response superseded by a newer request")
)

// Common error codes
const (
	ErrCodeFileNotFound     = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable  = "FILE_NOT_READABLE"
	ErrCodeFileTooLarge     = "FILE_TOO_LARGE"
	ErrCodeInvalidFormat    = "INVALID_FORMAT"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeInvalidConfig    = "INVALID_CONFIG"
	ErrCodeSecretLoad       = "SECRET_LOAD_FAILED"
	ErrCodeMissingHandle    = "MISSING_GITHUB_USERNAME"
	ErrCodeUnknownResource  = "UNKNOWN_RESOURCE"
	ErrCodeUnknownCareer    = "UNKNOWN_CAREER"
	ErrCodeBackendRejected  = "BACKEND_REJECTED"
	ErrCodeBackendStatus    = "BACKEND_STATUS"
	ErrCodeBackendDown      = "BACKEND_UNREACHABLE"
	ErrCodeCircuitOpen      = "CIRCUIT_OPEN"
	ErrCodeNetworkTimeout   = "NETWORK_TIMEOUT"
	ErrCodeMalformedPayload = "MALFORMED_PAYLOAD"
	ErrCodeNotSignedIn      = "NOT_SIGNED_IN"
	ErrCodeSignInFailed     = "SIGN_IN_FAILED"
	ErrCodeSessionStore     = "SESSION_STORE"
	ErrCodeProfileNotFound  = "PROFILE_NOT_FOUND"
)
