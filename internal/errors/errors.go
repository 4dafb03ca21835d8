// Package errors provides standardized error handling for culld.
// It defines the error kinds the triage flow can produce and helper
// functions for consistent creation, wrapping, and classification.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package functions re-exported for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// FolderNotFound means the folder selected for triage does not exist
	FolderNotFound
	// IOFailure means a folder or file could not be read
	IOFailure
	// TrashFailed means moving a file to the trash failed
	TrashFailed
	// RestoreFailed means recovering a file from the trash failed,
	// typically because the token was already consumed
	RestoreFailed
	// LaunchFailed means the external viewer could not be started
	LaunchFailed
	// UndoEmpty means undo was requested with no recorded actions
	UndoEmpty
	// InvalidConfig means the configuration failed validation
	InvalidConfig
)

// ErrEmptyUndo is returned by the undo log when there is nothing to pop.
// Callers treat it as a no-op rather than a failure.
var ErrEmptyUndo = &ApplicationError{msg: "nothing to undo", kind: UndoEmpty}

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors tied to a specific path: a missing folder,
// an unreadable directory, or a failed trash/restore/launch call.
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: InvalidConfig,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// NewKind creates a new error with an explicit kind
func NewKind(msg string, kind ErrorKind) error {
	return &ApplicationError{
		msg:  msg,
		kind: kind,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: kindOf(err),
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: kindOf(err),
	}
}

// kindOf propagates the kind through wrapping so classification helpers
// still work on wrapped errors.
func kindOf(err error) ErrorKind {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind()
	}
	return Unknown
}

func isKind(err error, kind ErrorKind) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == kind
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Kind() == kind
	}
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Kind() == kind
	}
	return false
}

// IsFolderNotFound checks if the error is a missing-folder error
func IsFolderNotFound(err error) bool {
	return isKind(err, FolderNotFound)
}

// IsIOFailure checks if the error is an unreadable folder/file error
func IsIOFailure(err error) bool {
	return isKind(err, IOFailure)
}

// IsTrashFailed checks if the error came from a failed trash call
func IsTrashFailed(err error) bool {
	return isKind(err, TrashFailed)
}

// IsRestoreFailed checks if the error came from a failed restore call
func IsRestoreFailed(err error) bool {
	return isKind(err, RestoreFailed)
}

// IsLaunchFailed checks if the error came from a failed viewer launch
func IsLaunchFailed(err error) bool {
	return isKind(err, LaunchFailed)
}

// IsUndoEmpty checks if the error means there was nothing to undo
func IsUndoEmpty(err error) bool {
	return isKind(err, UndoEmpty)
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	return isKind(err, InvalidConfig)
}
