// Package errors defines the coded errors the wedding services return.
// A Code decides the HTTP status and the catalog key shown to users; the
// Message stays in logs.
package errors

import (
	stderrors "errors"
	"net/http"
)

// Error carries a Code through wrapping. Args fill the localized message.
type Error struct {
	Code    Code
	Message string
	Args    []any
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same Code, so
// errors.Is(err, New(CodeGuestNotFound, "")) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New returns an error with code and a log message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithArgs is New plus arguments for the localized message.
func WithArgs(code Code, message string, args ...any) *Error {
	e := New(code, message)
	e.Args = args
	return e
}

// Wrap is New with an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	e := New(code, message)
	e.Cause = cause
	return e
}

// CodeOf returns the Code of the first *Error in err's chain, CodeUnknown
// when there is none, and "" for a nil err.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// HTTPStatus maps err to a response status; nil is 200.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return CodeOf(err).HTTPStatus()
}

// LocalizationKey returns the catalog key and arguments for err, or an
// empty key when err carries no Code.
func LocalizationKey(err error) (string, []any) {
	var e *Error
	if err == nil || !stderrors.As(err, &e) {
		return "", nil
	}
	return e.Code.Key(), e.Args
}
