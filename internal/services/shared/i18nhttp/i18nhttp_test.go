package i18nhttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/text/language"
)

func TestResolveTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		target      string
		cookie      string
		accept      string
		want        language.Tag
		wantPersist bool
	}{
		{name: "query wins", target: "/?lang=en", cookie: "es", want: language.English, wantPersist: true},
		{name: "cookie", target: "/", cookie: "en", accept: "es", want: language.English},
		{name: "accept language", target: "/", accept: "en-GB,en;q=0.8", want: language.English},
		{name: "unsupported query falls through", target: "/?lang=fr", accept: "en", want: language.English},
		{name: "default", target: "/", want: language.Spanish},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookieName, Value: tc.cookie})
			}
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			tag, persist := ResolveTag(req)
			if tag != tc.want || persist != tc.wantPersist {
				t.Fatalf("ResolveTag() = %v, %v; want %v, %v", tag, persist, tc.want, tc.wantPersist)
			}
		})
	}
}

func TestResolvePersistsExplicitChoice(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	p, tag := Resolve(rr, httptest.NewRequest(http.MethodGet, "/?lang=en", nil))
	if tag != language.English {
		t.Fatalf("tag = %v", tag)
	}
	if got := p.Sprintf("core.nav.home"); got != "Home" {
		t.Fatalf("printer text = %q", got)
	}
	cookie, err := http.ParseSetCookie(rr.Header().Get("Set-Cookie"))
	if err != nil || cookie.Value != "en" {
		t.Fatalf("cookie = %+v, err = %v", cookie, err)
	}
}

func TestLanguageOptions(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/rsvp/abc?x=1", nil)
	options := LanguageOptions(req, language.English, nil)
	if len(options) != 2 {
		t.Fatalf("len(options) = %d, want 2", len(options))
	}
	if options[0].Code != "es" || options[0].Active {
		t.Fatalf("options[0] = %+v", options[0])
	}
	if !options[1].Active || options[1].URL != "/rsvp/abc?lang=en&x=1" {
		t.Fatalf("options[1] = %+v", options[1])
	}
}

func TestPreferredIgnoresAcceptLanguage(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/rsvp/tok", nil)
	req.Header.Set("Accept-Language", "en")
	if _, ok := Preferred(req); ok {
		t.Fatalf("Accept-Language must not count as an explicit choice")
	}
	req.AddCookie(&http.Cookie{Name: LangCookieName, Value: "en"})
	if tag, ok := Preferred(req); !ok || tag != language.English {
		t.Fatalf("Preferred() = %v, %v", tag, ok)
	}
}
