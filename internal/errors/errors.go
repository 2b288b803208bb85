// Package errors provides coded errors for the preferences core.
//
// Validation failures produced by derivers carry one code per settings aspect
// plus the offending input in Details:
//
//	if _, err := derive.FontChange("Inter", 8, current, meta); err != nil {
//	    var failure *errors.Error
//	    if errors.As(err, &failure) && failure.Code == errors.CodeInvalidFontSize {
//	        fmt.Println(failure.Message) // Font size must be between 10 and 24, got 8
//	    }
//	}
//
// Sentinels match by code, so errors.Is(err, errors.ErrInvalidTheme) works for
// any message.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Generic codes.
const (
	CodeNotFound    Code = "NOT_FOUND"
	CodeValidation  Code = "VALIDATION"
	CodeStorage     Code = "STORAGE"
	CodeRateLimited Code = "RATE_LIMITED"
	CodeInternal    Code = "INTERNAL"
)

// Settings validation failure codes, one per validated aspect.
const (
	CodeInvalidTheme           Code = "INVALID_THEME"
	CodeInvalidFontFamily      Code = "INVALID_FONT_FAMILY"
	CodeInvalidFontSize        Code = "INVALID_FONT_SIZE"
	CodeInvalidLanguage        Code = "INVALID_LANGUAGE"
	CodeInvalidTimestampFormat Code = "INVALID_TIMESTAMP_FORMAT"
	CodeInvalidSpeakerFormat   Code = "INVALID_SPEAKER_FORMAT"
	CodeInvalidBackupInterval  Code = "INVALID_BACKUP_INTERVAL"
	CodeInvalidMaxBackups      Code = "INVALID_MAX_BACKUPS"
	CodeInvalidConvexURL       Code = "INVALID_CONVEX_URL"
	CodeConfigurationFailed    Code = "CONFIGURATION_FAILED"
)

// IsFailure reports whether c is a settings validation failure (including the
// generic VALIDATION code used for malformed tool parameters).
func (c Code) IsFailure() bool {
	switch c {
	case CodeValidation,
		CodeInvalidTheme,
		CodeInvalidFontFamily,
		CodeInvalidFontSize,
		CodeInvalidLanguage,
		CodeInvalidTimestampFormat,
		CodeInvalidSpeakerFormat,
		CodeInvalidBackupInterval,
		CodeInvalidMaxBackups,
		CodeInvalidConvexURL,
		CodeConfigurationFailed:
		return true
	default:
		return false
	}
}

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch {
	case c.IsFailure():
		return http.StatusBadRequest
	case c == CodeNotFound:
		return http.StatusNotFound
	case c == CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded error with a display message and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// Sentinel errors for use with errors.Is().
var (
	ErrValidation  = &Error{Code: CodeValidation, Message: "validation error"}
	ErrStorage     = &Error{Code: CodeStorage, Message: "storage error"}
	ErrRateLimited = &Error{Code: CodeRateLimited, Message: "Too many tool calls. Please try again later."}

	ErrInvalidTheme           = &Error{Code: CodeInvalidTheme, Message: "invalid theme"}
	ErrInvalidFontFamily      = &Error{Code: CodeInvalidFontFamily, Message: "invalid font family"}
	ErrInvalidFontSize        = &Error{Code: CodeInvalidFontSize, Message: "invalid font size"}
	ErrInvalidLanguage        = &Error{Code: CodeInvalidLanguage, Message: "invalid language"}
	ErrInvalidTimestampFormat = &Error{Code: CodeInvalidTimestampFormat, Message: "invalid timestamp format"}
	ErrInvalidSpeakerFormat   = &Error{Code: CodeInvalidSpeakerFormat, Message: "invalid speaker format"}
	ErrInvalidBackupInterval  = &Error{Code: CodeInvalidBackupInterval, Message: "invalid backup interval"}
	ErrInvalidMaxBackups      = &Error{Code: CodeInvalidMaxBackups, Message: "invalid max backups"}
	ErrInvalidConvexURL       = &Error{Code: CodeInvalidConvexURL, Message: "invalid convex url"}
	ErrConfigurationFailed    = &Error{Code: CodeConfigurationFailed, Message: "configuration failed"}
)

// Failure creates a validation failure for code. field names the offending
// input and value is stored under it in Details.
func Failure(code Code, field string, value any, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: map[string]any{field: value},
	}
}

// Validation creates a generic validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the display message of the first *Error in err's chain,
// falling back to err.Error().
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
