// Package errdef tags playterm errors with the subsystem that produced them,
// so callers can tell a server failure from a bad settings file without
// matching on text.
package errdef

import (
	stdErrors "errors"
	"fmt"
)

// Code names the subsystem an error came from. It prefixes Error().
type Code string

const (
	CodeUnknown Code = "unknown"
	// CodeTransport covers failures reaching the playground or gist API:
	// dialing, TLS, timeouts and reading the body.
	CodeTransport Code = "transport"
	// CodeDecode is a reply that arrived but was not the expected JSON.
	CodeDecode Code = "decode"
	CodeServer Code = "server"
	// CodeGist is a gist reply without usable code, or a bad gist id.
	CodeGist Code = "gist"
	// CodeConfig covers settings files, --set overrides and flag values.
	CodeConfig  Code = "config"
	CodeHistory Code = "history"
	// CodeUI is an action the interface cannot perform, such as focusing a
	// kind without an output pane.
	CodeUI Code = "ui"
)

// Error is a coded error. Message and Err are both optional.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Wrap attaches code and a formatted context message to err. A nil err stays
// nil so call sites can wrap unconditionally.
func Wrap(code Code, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := ""
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Code: ensureCode(code), Message: msg, Err: err}
}

// New builds a coded error with no cause. format is only run through
// Sprintf when args are given.
func New(code Code, format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Code: ensureCode(code), Message: msg}
}

// CodeOf returns the code of the first Error in err's chain. Plain errors,
// including nil, report CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if stdErrors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// Is reports whether the first Error in err's chain carries code.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	var e *Error
	if stdErrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Message is err.Error() with nil mapped to "".
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func ensureCode(code Code) Code {
	if code == "" {
		return CodeUnknown
	}
	return code
}
