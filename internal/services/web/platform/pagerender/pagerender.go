// Package pagerender centralizes page rendering for web modules.
package pagerender

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	platformi18n "github.com/louisbranch/wedding.rsvp/internal/platform/i18n"
	"github.com/louisbranch/wedding.rsvp/internal/platform/i18n/catalog"
	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
	"github.com/louisbranch/wedding.rsvp/internal/services/shared/i18nhttp"
	flashnotice "github.com/louisbranch/wedding.rsvp/internal/services/web/platform/flash"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/httpx"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/requestmeta"
	webtemplates "github.com/louisbranch/wedding.rsvp/internal/services/web/templates"
)

// Locale is the negotiated language of one request.
type Locale struct {
	Printer *message.Printer
	Tag     language.Tag
}

// Lang returns the short language code used in markup.
func (l Locale) Lang() string {
	return platformi18n.Code(l.Tag)
}

// Sprintf translates a catalog key.
func (l Locale) Sprintf(key message.Reference, args ...any) string {
	if l.Printer == nil {
		return webtemplates.T(nil, key, args...)
	}
	return l.Printer.Sprintf(key, args...)
}

// Localize resolves the request language, persisting an explicit choice.
func Localize(w http.ResponseWriter, r *http.Request) Locale {
	p, tag := i18nhttp.Resolve(w, r)
	return Locale{Printer: p, Tag: tag}
}

// LocalizeWithDefault resolves the request language, preferring fallback
// over Accept-Language when the visitor made no explicit choice.
func LocalizeWithDefault(w http.ResponseWriter, r *http.Request, fallback language.Tag) Locale {
	if _, ok := i18nhttp.Preferred(r); ok {
		return Localize(w, r)
	}
	return Locale{Printer: catalog.Printer(fallback), Tag: fallback}
}

// Page describes one full-page response.
type Page struct {
	Title      string
	StatusCode int
	// Admin selects the admin navigation.
	Admin bool
	Body  templ.Component
}

// Renderer writes pages inside the site layout.
type Renderer struct {
	SiteTitle string
	Policy    requestmeta.SchemePolicy
	Logger    *zap.Logger
}

type emptyComponent struct{}

func (emptyComponent) Render(context.Context, io.Writer) error {
	return nil
}

// Write renders page for r. HTMX requests receive the body alone and keep
// any pending flash notice for the next full page.
func (rd Renderer) Write(w http.ResponseWriter, r *http.Request, loc Locale, page Page) error {
	if w == nil {
		return nil
	}
	statusCode := page.StatusCode
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	body := page.Body
	if body == nil {
		body = emptyComponent{}
	}
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}

	var buf bytes.Buffer
	if httpx.IsHTMX(r) {
		if err := body.Render(ctx, &buf); err != nil {
			return err
		}
		flush(w, statusCode, &buf)
		return nil
	}

	layout := webtemplates.Layout(webtemplates.PageContext{
		Title:     page.Title,
		SiteTitle: rd.SiteTitle,
		Lang:      loc.Lang(),
		Loc:       loc,
		Languages: i18nhttp.LanguageOptions(r, loc.Tag, loc.Printer),
		Notice:    rd.notice(w, r, loc),
		Admin:     page.Admin,
	})
	if err := layout.Render(templ.WithChildren(ctx, body), &buf); err != nil {
		return err
	}
	flush(w, statusCode, &buf)
	return nil
}

// Render writes page and logs a render failure as a bare 500.
func (rd Renderer) Render(w http.ResponseWriter, r *http.Request, loc Locale, page Page) {
	if err := rd.Write(w, r, loc, page); err != nil {
		logging.OrNop(rd.Logger).Error("render page",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (rd Renderer) notice(w http.ResponseWriter, r *http.Request, loc Locale) *webtemplates.Notice {
	notice, ok := flashnotice.ReadAndClear(w, r, rd.Policy)
	if !ok {
		return nil
	}
	message := strings.TrimSpace(loc.Sprintf(notice.Key, notice.AnyArgs()...))
	if message == "" {
		return nil
	}
	return &webtemplates.Notice{Kind: string(notice.Kind), Message: message}
}

func flush(w http.ResponseWriter, statusCode int, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}
