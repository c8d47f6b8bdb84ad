// Package errors provides the coded error type used across dotlink.
//
// Codes are stable and meant for tests and for deciding how the CLI
// reacts: configuration codes abort the run, entry codes are reported
// per manifest entry and aggregated.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

const (
	// General errors
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// Configuration errors. These are fatal for the whole run.
	ErrConfigLoad       ErrorCode = "CONFIG_LOAD"
	ErrRootNotFound     ErrorCode = "ROOT_NOT_FOUND"
	ErrManifestNotFound ErrorCode = "MANIFEST_NOT_FOUND"
	ErrManifestParse    ErrorCode = "MANIFEST_PARSE"
	ErrManifestInvalid  ErrorCode = "MANIFEST_INVALID"
	ErrUnknownFormat    ErrorCode = "UNKNOWN_FORMAT"
	ErrTopicNotFound    ErrorCode = "TOPIC_NOT_FOUND"

	// Entry errors. Reported per manifest entry, never abort the batch.
	ErrSourceNotFound   ErrorCode = "SOURCE_NOT_FOUND"
	ErrPathExpand       ErrorCode = "PATH_EXPAND"
	ErrFileAccess       ErrorCode = "FILE_ACCESS"
	ErrDestinationIsDir ErrorCode = "DESTINATION_IS_DIR"
	ErrFileRemove       ErrorCode = "FILE_REMOVE"
	ErrDirCreate        ErrorCode = "DIR_CREATE"
	ErrSymlinkCreate    ErrorCode = "SYMLINK_CREATE"
	ErrPrompt           ErrorCode = "PROMPT"

	// Run results that turn into a non-zero exit code.
	ErrInstallFailed ErrorCode = "INSTALL_FAILED"
	ErrStatusCheck   ErrorCode = "STATUS_CHECK"
)

// DotlinkError represents a structured error with code and details
type DotlinkError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DotlinkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DotlinkError) Unwrap() error {
	return e.Wrapped
}

// Is matches another DotlinkError with the same code.
func (e *DotlinkError) Is(target error) bool {
	var targetErr *DotlinkError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// Cause returns the message without the code prefix, followed by the
// wrapped error if any. Used for user facing lines.
func (e *DotlinkError) Cause() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
	}
	return e.Message
}

// New creates a new DotlinkError with the given code and message
func New(code ErrorCode, message string) *DotlinkError {
	return &DotlinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DotlinkError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DotlinkError {
	return &DotlinkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DotlinkError
func Wrap(err error, code ErrorCode, message string) *DotlinkError {
	if err == nil {
		return nil
	}
	return &DotlinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DotlinkError {
	if err == nil {
		return nil
	}
	return &DotlinkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DotlinkError) WithDetail(key string, value interface{}) *DotlinkError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var dotlinkErr *DotlinkError
	if errors.As(err, &dotlinkErr) {
		return dotlinkErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DotlinkError
func GetErrorCode(err error) ErrorCode {
	var dotlinkErr *DotlinkError
	if errors.As(err, &dotlinkErr) {
		return dotlinkErr.Code
	}
	return ErrUnknown
}

// IsConfigError reports whether err aborts a run before any entry is
// processed.
func IsConfigError(err error) bool {
	switch GetErrorCode(err) {
	case ErrConfigLoad, ErrRootNotFound, ErrManifestNotFound, ErrManifestParse, ErrManifestInvalid, ErrUnknownFormat:
		return true
	}
	return false
}

// Message returns a user facing description of err. DotlinkErrors lose
// their code prefix; other errors are returned as is.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var dotlinkErr *DotlinkError
	if errors.As(err, &dotlinkErr) {
		return dotlinkErr.Cause()
	}
	return err.Error()
}
