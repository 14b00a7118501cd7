// Package i18nhttp picks the page language for a request. An explicit
// choice (?lang= or the language cookie) beats Accept-Language, which
// beats the site default.
package i18nhttp

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	platformi18n "github.com/louisbranch/wedding.rsvp/internal/platform/i18n"
	"github.com/louisbranch/wedding.rsvp/internal/platform/i18n/catalog"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "wedding_lang"
)

const cookieMaxAge = 365 * 24 * time.Hour

// LanguageOption is one entry of the language switcher.
type LanguageOption struct {
	Code   string
	Label  string
	URL    string
	Active bool
}

type source int

const (
	none source = iota
	fromQuery
	fromCookie
)

func explicit(r *http.Request) (language.Tag, source) {
	if r == nil {
		return language.Und, none
	}
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		if tag, ok := platformi18n.ParseTag(v); ok {
			return tag, fromQuery
		}
	}
	if c, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := platformi18n.ParseTag(c.Value); ok {
			return tag, fromCookie
		}
	}
	return language.Und, none
}

// ResolveTag returns the request language. The bool is true when it came
// from the query string and should be saved in the cookie.
func ResolveTag(r *http.Request) (language.Tag, bool) {
	if tag, src := explicit(r); src != none {
		return tag, src == fromQuery
	}
	if r != nil {
		if tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language")); err == nil && len(tags) > 0 {
			return platformi18n.MatchTags(tags), false
		}
	}
	return platformi18n.DefaultTag(), false
}

// Preferred returns the visitor's explicit choice, ignoring
// Accept-Language.
func Preferred(r *http.Request) (language.Tag, bool) {
	tag, src := explicit(r)
	return tag, src != none
}

// Resolve returns a printer for the request language and saves a ?lang=
// choice in the cookie.
func Resolve(w http.ResponseWriter, r *http.Request) (*message.Printer, language.Tag) {
	tag, persist := ResolveTag(r)
	if persist && w != nil {
		http.SetCookie(w, &http.Cookie{
			Name:     LangCookieName,
			Value:    platformi18n.Code(tag),
			Path:     "/",
			MaxAge:   int(cookieMaxAge / time.Second),
			SameSite: http.SameSiteLaxMode,
		})
	}
	return catalog.Printer(tag), tag
}

// LanguageOptions builds the switcher entries for r, labelled through p.
func LanguageOptions(r *http.Request, active language.Tag, p *message.Printer) []LanguageOption {
	u := &url.URL{Path: "/"}
	if r != nil && r.URL != nil {
		u = r.URL
	}
	current := platformi18n.Code(active)
	tags := platformi18n.SupportedTags()
	out := make([]LanguageOption, 0, len(tags))
	for _, tag := range tags {
		code := platformi18n.Code(tag)
		opt := LanguageOption{Code: code, Label: code, URL: LanguageURL(u.Path, u.RawQuery, code), Active: code == current}
		if p != nil {
			opt.Label = p.Sprintf("core.lang." + code)
		}
		out = append(out, opt)
	}
	return out
}

// LanguageURL returns path?rawQuery with lang set to code. Other
// parameters are kept and the query is re-encoded in key order.
func LanguageURL(path, rawQuery, code string) string {
	if path = strings.TrimSpace(path); path == "" {
		path = "/"
	}
	q, _ := url.ParseQuery(rawQuery)
	if q == nil {
		q = url.Values{}
	}
	q.Set(LangParam, code)
	return path + "?" + q.Encode()
}
