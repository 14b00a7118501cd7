package templates

import (
	"net/http"
	"strconv"
)

// ErrorPageTitle returns the browser title of an error page.
func ErrorPageTitle(statusCode int, loc Localizer) string {
	switch statusCode {
	case http.StatusForbidden, http.StatusNotFound, http.StatusTooManyRequests:
		return T(loc, "error.page.title_"+strconv.Itoa(statusCode))
	default:
		return T(loc, "error.page.title")
	}
}
