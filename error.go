package elemsel

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECONFLICT = "conflict"
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract out the code & message.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("elemsel error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
// Malformed selectors are reported as EINVALID.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var m *MalformedSelectorError
	if errors.As(err, &m) {
		return EINVALID
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var m *MalformedSelectorError
	if errors.As(err, &m) {
		return m.Error()
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// MalformedSelectorError is returned when a selector string violates the
// selector grammar. It is a configuration-time error.
type MalformedSelectorError struct {
	// Selector is the offending selector entry as configured.
	Selector string
	// Pos is the byte offset at which scanning failed.
	Pos int
	// Reason describes what was expected.
	Reason string
}

func (e *MalformedSelectorError) Error() string {
	return fmt.Sprintf("malformed selector %q at offset %d: %s", e.Selector, e.Pos, e.Reason)
}
