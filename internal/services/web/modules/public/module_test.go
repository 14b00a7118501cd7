package public

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/louisbranch/wedding.rsvp/internal/testkit/weddingfakes"
)

func mount(t *testing.T, env *weddingfakes.Env) http.Handler {
	t.Helper()
	m, err := New(env.Deps).Mount()
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if m.Prefix != "/" {
		t.Fatalf("prefix = %q, want /", m.Prefix)
	}
	return m.Handler
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestHomeRendersSectionsAndCallToAction(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	rr := serve(mount(t, env), http.MethodGet, "/?lang=en")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	doc, err := html.Parse(rr.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var dialogs, rsvpLinks int
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "dialog":
				dialogs++
			case "a":
				for _, a := range n.Attr {
					if a.Key == "href" && a.Val == "/rsvp/" {
						rsvpLinks++
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if dialogs != 7 {
		t.Fatalf("dialogs = %d, want 7", dialogs)
	}
	if rsvpLinks < 2 {
		t.Fatalf("expected nav and hero RSVP links, got %d", rsvpLinks)
	}
}

func TestHomeHidesCallToActionAfterDeadline(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-05-20"))
	rr := serve(mount(t, env), http.MethodGet, "/?lang=en")
	if strings.Contains(rr.Body.String(), `class="button" href="/rsvp/"`) {
		t.Fatalf("hero call to action should be hidden after the deadline")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	rr := serve(mount(t, env), http.MethodGet, "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var got healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != (healthResponse{Status: "healthy", Database: "connected"}) {
		t.Fatalf("health = %+v", got)
	}
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	env.Deps.Ping = func(*http.Request) error { return errors.New("database is locked") }
	rr := serve(mount(t, env), http.MethodGet, "/health")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "locked") {
		t.Fatalf("health body leaked error detail: %q", rr.Body.String())
	}
	if env.Logs.FilterMessage("health check failed").Len() != 1 {
		t.Fatalf("expected health failure log")
	}
}

func TestStaticAssets(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	h := mount(t, env)
	for _, name := range []string{"site.css", "site.js"} {
		rr := serve(h, http.MethodGet, "/static/"+name)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", name, rr.Code)
		}
		if rr.Header().Get("Cache-Control") != staticCacheControl {
			t.Fatalf("%s cache-control = %q", name, rr.Header().Get("Cache-Control"))
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	env.Deps.Metrics.RecordRSVP("attending")
	rr := serve(mount(t, env), http.MethodGet, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "wedding_") {
		t.Fatalf("metrics body missing wedding series")
	}
}

func TestUnknownPathRendersNotFoundPage(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	rr := serve(mount(t, env), http.MethodGet, "/nope?lang=en")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Page not found") {
		t.Fatalf("body = %q", rr.Body.String())
	}
}
