package pagerender

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/louisbranch/wedding.rsvp/internal/platform/i18n/catalog"
	flashnotice "github.com/louisbranch/wedding.rsvp/internal/services/web/platform/flash"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/requestmeta"
)

var english = Locale{Printer: catalog.Printer(language.English), Tag: language.English}

func raw(html string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	})
}

// withFlash returns req carrying the cookie flashnotice.Write would set.
func withFlash(req *http.Request, notice flashnotice.Notice) *http.Request {
	seed := httptest.NewRecorder()
	flashnotice.Write(seed, req, notice, requestmeta.SchemePolicy{})
	for _, c := range seed.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func setsCookie(rr *httptest.ResponseRecorder, name string) bool {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return true
		}
	}
	return false
}

func TestWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		htmx    bool
		status  int
		want    []string
		notWant []string
	}{
		{
			name:    "htmx fragment",
			htmx:    true,
			status:  http.StatusCreated,
			want:    []string{`<p id="frag">ok</p>`},
			notWant: []string{"<!doctype html", `id="main"`},
		},
		{
			name:   "full page",
			status: http.StatusAccepted,
			want:   []string{`id="main"`, `<p id="frag">ok</p>`, `<title>RSVP | Boda</title>`, `hreflang="es"`},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/rsvp/", nil)
			if tc.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rr := httptest.NewRecorder()
			err := Renderer{SiteTitle: "Boda"}.Write(rr, req, english, Page{
				Title:      "RSVP",
				StatusCode: tc.status,
				Body:       raw(`<p id="frag">ok</p>`),
			})
			require.NoError(t, err)

			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
			for _, s := range tc.want {
				assert.Contains(t, rr.Body.String(), s)
			}
			for _, s := range tc.notWant {
				assert.NotContains(t, rr.Body.String(), s)
			}
		})
	}
}

func TestWriteDefaultsToOK(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	require.NoError(t, Renderer{}.Write(rr, httptest.NewRequest(http.MethodGet, "/", nil), english, Page{}))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWriteShowsAndConsumesFlash(t *testing.T) {
	t.Parallel()

	req := withFlash(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil),
		flashnotice.Success("admin.flash.allergen_added", "Sesame"))
	rr := httptest.NewRecorder()
	require.NoError(t, Renderer{}.Write(rr, req, english, Page{Admin: true, Body: raw("ok")}))

	assert.Contains(t, rr.Body.String(), "notice notice-success")
	assert.Contains(t, rr.Body.String(), "Sesame")
	assert.True(t, setsCookie(rr, flashnotice.CookieName))
}

func TestWriteHTMXKeepsFlashForNextPage(t *testing.T) {
	t.Parallel()

	req := withFlash(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil),
		flashnotice.Success("admin.flash.logged_out"))
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	require.NoError(t, Renderer{}.Write(rr, req, english, Page{Body: raw("ok")}))

	assert.False(t, setsCookie(rr, flashnotice.CookieName))
}

func TestLocalizeQueryWinsOverHeader(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	req.Header.Set("Accept-Language", "es-ES")
	rr := httptest.NewRecorder()

	loc := Localize(rr, req)
	assert.Equal(t, "en", loc.Lang())
	assert.Len(t, rr.Result().Cookies(), 1)
}

func TestLocalizeWithDefaultUsesFallback(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	loc := LocalizeWithDefault(rr, httptest.NewRequest(http.MethodGet, "/rsvp/tok", nil), language.Spanish)
	assert.Equal(t, "es", loc.Lang())
}

func TestRenderAnswers500WhenTemplateFails(t *testing.T) {
	t.Parallel()

	failing := templ.ComponentFunc(func(context.Context, io.Writer) error { return io.ErrUnexpectedEOF })
	rr := httptest.NewRecorder()
	Renderer{}.Render(rr, httptest.NewRequest(http.MethodGet, "/", nil), english, Page{Body: failing})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
