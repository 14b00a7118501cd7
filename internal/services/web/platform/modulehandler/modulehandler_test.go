package modulehandler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"

	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	flashnotice "github.com/louisbranch/wedding.rsvp/internal/services/web/platform/flash"
	weddingapp "github.com/louisbranch/wedding.rsvp/internal/services/wedding/app"
)

func newBase() Base {
	return NewBase(module.Dependencies{Settings: weddingapp.Settings{Title: "Ana & Luis"}})
}

func TestWritePageUsesSiteTitle(t *testing.T) {
	t.Parallel()

	b := newBase()
	req := httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	rr := httptest.NewRecorder()
	b.WritePage(rr, req, b.Localize(rr, req), "RSVP", templ.Raw("<p>body</p>"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "<title>RSVP | Ana &amp; Luis</title>") {
		t.Fatalf("body = %q", rr.Body.String())
	}
}

func TestWriteNotFoundRendersLocalizedPage(t *testing.T) {
	t.Parallel()

	b := newBase()
	req := httptest.NewRequest(http.MethodGet, "/missing?lang=en", nil)
	rr := httptest.NewRecorder()
	b.WriteNotFound(rr, req, b.Localize(rr, req))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Page not found") {
		t.Fatalf("body = %q", rr.Body.String())
	}
}

func TestWriteTooManyRequests(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	newBase().WriteTooManyRequests(rr, httptest.NewRequest(http.MethodGet, "/rsvp/x", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
}

func TestFlashThenRedirect(t *testing.T) {
	t.Parallel()

	b := newBase()
	req := httptest.NewRequest(http.MethodPost, "/admin/guests", nil)
	rr := httptest.NewRecorder()
	b.Flash(rr, req, flashnotice.Success("admin.flash.guest_added"))
	b.Redirect(rr, req, "/admin/dashboard")

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	found := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == flashnotice.CookieName {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected flash cookie")
	}
}
