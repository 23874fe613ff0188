// Package apperrors defines the typed failures surfaced by the comment tree,
// the interaction store and the API client.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the kind of a failure
type ErrorCode int

// Local tree integrity errors (1000-1999)
const (
	CodeMalformedTree ErrorCode = 1000 + iota
	CodeParentNotFound
	CodeNotFound
)

// Remote errors (2000-2999)
const (
	CodeTransport ErrorCode = 2000 + iota
	CodeConflictAlreadyApplied
	CodeServerRejected
)

// Local request errors (3000-3999)
const (
	CodePending ErrorCode = 3000 + iota
	CodeInvalidInput
)

var codeNames = map[ErrorCode]string{
	CodeMalformedTree:          "malformed tree",
	CodeParentNotFound:         "parent not found",
	CodeNotFound:               "not found",
	CodeTransport:              "transport",
	CodeConflictAlreadyApplied: "already applied",
	CodeServerRejected:         "server rejected",
	CodePending:                "pending",
	CodeInvalidInput:           "invalid input",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Sentinels for errors.Is. They match any AppError with the same code.
var (
	ErrMalformedTree          = &AppError{Code: CodeMalformedTree}
	ErrParentNotFound         = &AppError{Code: CodeParentNotFound}
	ErrNotFound               = &AppError{Code: CodeNotFound}
	ErrTransport              = &AppError{Code: CodeTransport}
	ErrConflictAlreadyApplied = &AppError{Code: CodeConflictAlreadyApplied}
	ErrServerRejected         = &AppError{Code: CodeServerRejected}
	ErrPending                = &AppError{Code: CodePending}
	ErrInvalidInput           = &AppError{Code: CodeInvalidInput}
)

// AppError is the application error type.
// Status holds the HTTP status for remote failures and is zero otherwise.
type AppError struct {
	Code    ErrorCode
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, msg)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates an application error
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates an application error with a formatted message
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Rejected builds a ServerRejected error for an HTTP status and server message.
func Rejected(status int, message string) *AppError {
	return &AppError{Code: CodeServerRejected, Message: message, Status: status}
}

// CodeOf returns the code of the first AppError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return 0, false
}

// IsBenign reports whether err only signals that the intended state already holds.
func IsBenign(err error) bool {
	return errors.Is(err, ErrConflictAlreadyApplied)
}

// IsRecoverable reports whether err is a transport failure the caller may retry.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsStale reports whether err means the local copy no longer matches the server
// and the caller should refetch.
func IsStale(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrParentNotFound)
}
