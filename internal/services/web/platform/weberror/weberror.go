// Package weberror renders error responses for web modules.
package weberror

import (
	stderrors "errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
	"github.com/louisbranch/wedding.rsvp/internal/platform/requestctx"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/httpx"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/pagerender"
	webtemplates "github.com/louisbranch/wedding.rsvp/internal/services/web/templates"
)

// PublicMessage resolves a user-safe localized error message.
func PublicMessage(loc webtemplates.Localizer, err error) string {
	if err == nil {
		return ""
	}
	if loc != nil {
		if key, args := apperrors.LocalizationKey(err); key != "" {
			if localized := strings.TrimSpace(loc.Sprintf(key, args...)); localized != "" && localized != key {
				return localized
			}
		}
	}
	statusCode := apperrors.HTTPStatus(err)
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusInternalServerError
	}
	return http.StatusText(statusCode)
}

// WritePage renders the error page with statusCode and message.
func WritePage(w http.ResponseWriter, r *http.Request, rd pagerender.Renderer, loc pagerender.Locale, statusCode int, message string) {
	if w == nil {
		return
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	rd.Render(w, r, loc, pagerender.Page{
		Title:      webtemplates.ErrorPageTitle(statusCode, loc),
		StatusCode: statusCode,
		Body:       webtemplates.ErrorPage(statusCode, message, loc),
	})
}

// Write maps err to a status and renders the error page. Server errors are
// logged and never shown verbatim.
func Write(w http.ResponseWriter, r *http.Request, rd pagerender.Renderer, loc pagerender.Locale, err error) {
	statusCode := apperrors.HTTPStatus(err)
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusInternalServerError
	}
	logFailure(rd.Logger, r, statusCode, err)
	WritePage(w, r, rd, loc, statusCode, PublicMessage(loc, err))
}

// WriteJSON maps err to a status and writes {"error": message}.
func WriteJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	statusCode := apperrors.HTTPStatus(err)
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusInternalServerError
	}
	logFailure(logger, r, statusCode, err)
	message := http.StatusText(statusCode)
	if statusCode < http.StatusInternalServerError {
		var appErr *apperrors.Error
		if stderrors.As(err, &appErr) && appErr.Message != "" {
			message = appErr.Message
		}
	}
	_ = httpx.WriteJSONError(w, statusCode, message)
}

func logFailure(logger *zap.Logger, r *http.Request, statusCode int, err error) {
	if statusCode < http.StatusInternalServerError || r == nil {
		return
	}
	logging.OrNop(logger).Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestctx.RequestIDFromContext(r.Context())),
		zap.Int("status", statusCode),
		zap.Error(err),
	)
}
