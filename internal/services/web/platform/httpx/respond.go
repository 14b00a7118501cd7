package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var errNilWriter = errors.New("response writer is required")

// WriteJSON encodes payload as the response body.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return errNilWriter
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

// WriteJSONError writes {"error": message}.
func WriteJSONError(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: message})
}

// WriteDownload streams body as an attachment named filename.
func WriteDownload(w http.ResponseWriter, filename, contentType string, body func(io.Writer) error) error {
	if w == nil {
		return errNilWriter
	}
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return body(w)
}

// IsHTMX reports whether r was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r != nil && r.Header.Get("HX-Request") == "true"
}

// WriteRedirect sends the client to location. htmx requests get an
// HX-Redirect header; plain form posts get 303 so the follow-up is a GET.
func WriteRedirect(w http.ResponseWriter, r *http.Request, location string) {
	switch {
	case w == nil:
		return
	case IsHTMX(r):
		w.Header().Set("HX-Redirect", location)
		w.WriteHeader(http.StatusOK)
	case r == nil:
		w.Header().Set("Location", location)
		w.WriteHeader(http.StatusFound)
	case r.Method == http.MethodPost:
		http.Redirect(w, r, location, http.StatusSeeOther)
	default:
		http.Redirect(w, r, location, http.StatusFound)
	}
}
