package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// Build tree errors. These are setup problems and are never retried.
	ErrCodeDescriptorNotFound   ErrorCode = "DESCRIPTOR_NOT_FOUND"
	ErrCodeDescriptorUnreadable ErrorCode = "DESCRIPTOR_UNREADABLE"
	ErrCodeUnknownLanguage      ErrorCode = "UNKNOWN_LANGUAGE"
	ErrCodeWalkFailed           ErrorCode = "WALK_FAILED"

	// Command execution errors
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// NinjaWatchError represents a structured error with context
type NinjaWatchError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *NinjaWatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *NinjaWatchError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *NinjaWatchError) WithDetail(key string, value interface{}) *NinjaWatchError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *NinjaWatchError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new NinjaWatchError
func New(code ErrorCode, message string) *NinjaWatchError {
	return &NinjaWatchError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a NinjaWatchError
func Wrap(err error, code ErrorCode, message string) *NinjaWatchError {
	return &NinjaWatchError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// As returns the first NinjaWatchError in err's chain.
func As(err error) (*NinjaWatchError, bool) {
	for err != nil {
		if nwErr, ok := err.(*NinjaWatchError); ok {
			return nwErr, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

// Is checks if an error is a specific NinjaWatchError code
func Is(err error, code ErrorCode) bool {
	nwErr, ok := As(err)
	return ok && nwErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	nwErr, ok := As(err)
	if !ok {
		return ""
	}
	return nwErr.Code
}
