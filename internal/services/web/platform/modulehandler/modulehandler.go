// Package modulehandler provides a composable base for web module handlers.
//
// Modules share request localization, page rendering, flash notices and
// error handling. Handlers embed Base rather than duplicating that scaffold.
package modulehandler

import (
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	flashnotice "github.com/louisbranch/wedding.rsvp/internal/services/web/platform/flash"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/httpx"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/pagerender"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/weberror"
)

// Base carries the shared rendering collaborators of module handlers.
type Base struct {
	renderer pagerender.Renderer
	logger   *zap.Logger
}

// NewBase builds a handler base from module dependencies.
func NewBase(deps module.Dependencies) Base {
	logger := logging.OrNop(deps.Logger)
	return Base{
		renderer: pagerender.Renderer{
			SiteTitle: deps.Settings.Title,
			Policy:    deps.Policy,
			Logger:    logger,
		},
		logger: logger,
	}
}

// Logger returns the module logger.
func (b Base) Logger() *zap.Logger {
	return logging.OrNop(b.logger)
}

// Localize resolves the request language.
func (b Base) Localize(w http.ResponseWriter, r *http.Request) pagerender.Locale {
	return pagerender.Localize(w, r)
}

// WritePage renders a full page in the site layout.
func (b Base) WritePage(w http.ResponseWriter, r *http.Request, loc pagerender.Locale, title string, body templ.Component) {
	b.renderer.Render(w, r, loc, pagerender.Page{Title: title, Body: body})
}

// WriteAdminPage renders a page with the admin navigation.
func (b Base) WriteAdminPage(w http.ResponseWriter, r *http.Request, loc pagerender.Locale, title string, statusCode int, body templ.Component) {
	b.renderer.Render(w, r, loc, pagerender.Page{Title: title, StatusCode: statusCode, Admin: true, Body: body})
}

// WritePageStatus renders a full page with an explicit status.
func (b Base) WritePageStatus(w http.ResponseWriter, r *http.Request, loc pagerender.Locale, title string, statusCode int, body templ.Component) {
	b.renderer.Render(w, r, loc, pagerender.Page{Title: title, StatusCode: statusCode, Body: body})
}

// WriteError renders a localized error page for err.
func (b Base) WriteError(w http.ResponseWriter, r *http.Request, loc pagerender.Locale, err error) {
	weberror.Write(w, r, b.renderer, loc, err)
}

// WriteNotFound renders the 404 page.
func (b Base) WriteNotFound(w http.ResponseWriter, r *http.Request, loc pagerender.Locale) {
	weberror.WritePage(w, r, b.renderer, loc, http.StatusNotFound, loc.Sprintf("error.not_found"))
}

// WriteTooManyRequests renders the 429 page.
func (b Base) WriteTooManyRequests(w http.ResponseWriter, r *http.Request) {
	loc := b.Localize(w, r)
	weberror.WritePage(w, r, b.renderer, loc, http.StatusTooManyRequests, loc.Sprintf("error.rate_limited"))
}

// Flash stores a notice for the next page.
func (b Base) Flash(w http.ResponseWriter, r *http.Request, notice flashnotice.Notice) {
	flashnotice.Write(w, r, notice, b.renderer.Policy)
}

// Redirect sends the browser to location, with 303 after a form post.
func (b Base) Redirect(w http.ResponseWriter, r *http.Request, location string) {
	httpx.WriteRedirect(w, r, location)
}
