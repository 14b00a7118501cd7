package errors

import (
	"net/http"
	"strings"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Generic request errors
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeRateLimited  Code = "RATE_LIMITED"
	CodeUnavailable  Code = "UNAVAILABLE"

	// Configuration errors
	CodeMisconfigured Code = "MISCONFIGURED"

	// Guest errors
	CodeGuestNotFound      Code = "GUEST_NOT_FOUND"
	CodeGuestInvalid       Code = "GUEST_INVALID"
	CodeGuestAlreadyExists Code = "GUEST_ALREADY_EXISTS"

	// RSVP errors
	CodeRSVPNotFound       Code = "RSVP_NOT_FOUND"
	CodeRSVPDeadlinePassed Code = "RSVP_DEADLINE_PASSED"
	CodeRSVPNotEditable    Code = "RSVP_NOT_EDITABLE"
	CodeRSVPInvalid        Code = "RSVP_INVALID"

	// Import errors
	CodeCSVInvalid        Code = "CSV_INVALID"
	CodeCSVMissingHeaders Code = "CSV_MISSING_HEADERS"
	CodeCSVTooLarge       Code = "CSV_TOO_LARGE"

	// Allergen errors
	CodeAllergenExists Code = "ALLERGEN_EXISTS"
)

// HTTPStatus maps the code to an HTTP status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidInput, CodeGuestInvalid, CodeRSVPInvalid, CodeCSVInvalid, CodeCSVMissingHeaders:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeRSVPDeadlinePassed, CodeRSVPNotEditable:
		return http.StatusForbidden
	case CodeNotFound, CodeGuestNotFound, CodeRSVPNotFound:
		return http.StatusNotFound
	case CodeGuestAlreadyExists, CodeAllergenExists:
		return http.StatusConflict
	case CodeCSVTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Key returns the catalog key holding the user-facing copy for the code.
func (c Code) Key() string {
	if c == "" {
		c = CodeUnknown
	}
	return "error." + strings.ToLower(string(c))
}
