package app

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/wedding.rsvp/internal/platform/requestctx"
	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/sessioncookie"
	weddingapp "github.com/louisbranch/wedding.rsvp/internal/services/wedding/app"
)

var fixedNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func TestComposeRejectsDuplicateModulePrefix(t *testing.T) {
	t.Parallel()

	_, err := Compose(ComposeInput{
		PublicModules: []module.Module{
			stubModule{id: "one", mount: module.Mount{Prefix: "/one/", Handler: noContent()}},
			stubModule{id: "two", mount: module.Mount{Prefix: "/one/", Handler: noContent()}},
		},
	})
	if err == nil {
		t.Fatalf("expected duplicate prefix error")
	}
}

func TestComposeRejectsInvalidPublicModulePrefixes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
	}{
		{name: "missing leading slash", prefix: "rsvp/"},
		{name: "missing trailing slash", prefix: "/rsvp"},
		{name: "contains surrounding whitespace", prefix: "/rsvp/ "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Compose(ComposeInput{
				PublicModules: []module.Module{
					stubModule{id: "bad", mount: module.Mount{Prefix: tc.prefix, Handler: noContent()}},
				},
			})
			if err == nil {
				t.Fatalf("expected invalid prefix error")
			}
			if got := err.Error(); !strings.Contains(got, "invalid prefix") || !strings.Contains(got, "bad") {
				t.Fatalf("unexpected error = %q", got)
			}
		})
	}
}

func TestComposeRejectsNilModules(t *testing.T) {
	t.Parallel()

	if _, err := Compose(ComposeInput{PublicModules: []module.Module{nil}}); err == nil {
		t.Fatalf("expected nil public module error")
	}
	if _, err := Compose(ComposeInput{Sessions: &fakeSessions{}, ProtectedModules: []module.Module{nil}}); err == nil {
		t.Fatalf("expected nil protected module error")
	}
}

func TestComposeRequiresSessionsForProtectedModules(t *testing.T) {
	t.Parallel()

	_, err := Compose(ComposeInput{
		ProtectedModules: []module.Module{adminModule(noContent())},
	})
	if err == nil {
		t.Fatalf("expected missing session verifier error")
	}
}

func TestComposeRedirectsAnonymousAdminToLogin(t *testing.T) {
	t.Parallel()

	h := composeAdmin(t, &fakeSessions{}, noContent())

	req := httptest.NewRequest(http.MethodGet, "/admin/reports/dietary?x=1", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusFound)
	}
	if got := rr.Header().Get("Location"); got != "/admin/login?next=%2Fadmin%2Freports%2Fdietary%3Fx%3D1" {
		t.Fatalf("Location = %q", got)
	}
}

func TestComposeRedirectsHTMXRequests(t *testing.T) {
	t.Parallel()

	h := composeAdmin(t, &fakeSessions{}, noContent())

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Header().Get("HX-Redirect"); !strings.HasPrefix(got, "/admin/login") {
		t.Fatalf("HX-Redirect = %q", got)
	}
}

func TestComposeProtectsSlashlessAdminRoot(t *testing.T) {
	t.Parallel()

	h, err := Compose(ComposeInput{
		Sessions: &fakeSessions{},
		PublicModules: []module.Module{
			stubModule{id: "public", mount: module.Mount{Prefix: "/", Handler: http.NotFoundHandler()}},
		},
		ProtectedModules: []module.Module{adminModule(noContent())},
	})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusFound)
	}
}

func TestComposeLeavesPublicAdminPathsOpen(t *testing.T) {
	t.Parallel()

	h := composeAdmin(t, &fakeSessions{}, noContent())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
}

func TestComposeClearsInvalidSessionCookie(t *testing.T) {
	t.Parallel()

	h := composeAdmin(t, &fakeSessions{}, noContent())

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sessioncookie.Name, Value: "forged"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusFound)
	}
	cleared := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessioncookie.Name && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected session cookie to be cleared")
	}
}

func TestComposeAdmitsValidSessionAndStoresAdmin(t *testing.T) {
	t.Parallel()

	sessions := &fakeSessions{valid: "good", expiresAt: fixedNow.Add(25 * time.Minute)}
	var admin string
	h := composeAdmin(t, sessions, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin = requestctx.AdminFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sessioncookie.Name, Value: "good"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if admin != "session-1" {
		t.Fatalf("admin = %q, want session-1", admin)
	}
	if sessions.issued != 0 {
		t.Fatalf("fresh session should not be renewed")
	}
}

func TestComposeRenewsAgingSession(t *testing.T) {
	t.Parallel()

	sessions := &fakeSessions{valid: "good", expiresAt: fixedNow.Add(5 * time.Minute)}
	h := composeAdmin(t, sessions, noContent())

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sessioncookie.Name, Value: "good"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if sessions.issued != 1 {
		t.Fatalf("issued = %d, want 1", sessions.issued)
	}
	var renewed *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessioncookie.Name {
			renewed = c
		}
	}
	if renewed == nil || renewed.Value != "renewed" || !renewed.HttpOnly {
		t.Fatalf("renewed cookie = %+v", renewed)
	}
}

func TestComposeMountsPublicModulesWithoutAuth(t *testing.T) {
	t.Parallel()

	h, err := Compose(ComposeInput{
		PublicModules: []module.Module{
			stubModule{id: "rsvp", mount: module.Mount{Prefix: "/rsvp/", Handler: noContent()}},
		},
	})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rsvp/abc", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
}

func TestComposeSameOriginChecks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		host   string
		origin string
		proto  string
		policy requestmeta.SchemePolicy
		want   int
	}{
		{name: "missing proof", target: "http://wedding.test/admin/login", host: "wedding.test", want: http.StatusForbidden},
		{name: "same origin", target: "https://wedding.test/admin/login", host: "wedding.test", origin: "https://wedding.test", want: http.StatusNoContent},
		{name: "scheme differs", target: "https://wedding.test/admin/login", host: "wedding.test", origin: "http://wedding.test", want: http.StatusForbidden},
		{name: "untrusted forwarded proto", target: "http://wedding.test/admin/login", host: "wedding.test", origin: "https://wedding.test", proto: "https", want: http.StatusForbidden},
		{name: "trusted forwarded proto", target: "http://wedding.test/admin/login", host: "wedding.test", origin: "https://wedding.test", proto: "https", policy: requestmeta.SchemePolicy{TrustForwardedProto: true}, want: http.StatusNoContent},
		{name: "port omitted", target: "https://wedding.test:8443/admin/login", host: "wedding.test:8443", origin: "https://wedding.test", want: http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h, err := Compose(ComposeInput{
				Sessions:         &fakeSessions{},
				Policy:           tc.policy,
				ProtectedModules: []module.Module{adminModule(noContent())},
			})
			if err != nil {
				t.Fatalf("Compose() error = %v", err)
			}
			req := httptest.NewRequest(http.MethodPost, tc.target, nil)
			req.Host = tc.host
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tc.proto)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestComposeRejectsProtectedModuleOutsideAdminPrefix(t *testing.T) {
	t.Parallel()

	_, err := Compose(ComposeInput{
		Sessions: &fakeSessions{},
		ProtectedModules: []module.Module{
			stubModule{id: "bad", mount: module.Mount{Prefix: "/rsvp/", Handler: noContent()}},
		},
	})
	if err == nil {
		t.Fatalf("expected protected module prefix policy error")
	}
}

func TestComposeRejectsPublicModuleInsideAdminPrefix(t *testing.T) {
	t.Parallel()

	_, err := Compose(ComposeInput{
		PublicModules: []module.Module{
			stubModule{id: "bad", mount: module.Mount{Prefix: "/admin/bad/", Handler: noContent()}},
		},
	})
	if err == nil {
		t.Fatalf("expected public module prefix policy error")
	}
}

func composeAdmin(t *testing.T, sessions *fakeSessions, handler http.Handler) http.Handler {
	t.Helper()
	h, err := Compose(ComposeInput{
		Sessions:         sessions,
		Clock:            func() time.Time { return fixedNow },
		ProtectedModules: []module.Module{adminModule(handler)},
	})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	return h
}

func adminModule(handler http.Handler) stubModule {
	return stubModule{id: "admin", mount: module.Mount{
		Prefix:  "/admin/",
		Handler: handler,
		Public:  []string{"/admin/login"},
	}}
}

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

type fakeSessions struct {
	valid     string
	expiresAt time.Time
	issued    int
}

func (f *fakeSessions) Verify(token string) (weddingapp.Session, error) {
	if f.valid == "" || token != f.valid {
		return weddingapp.Session{}, errors.New("invalid session")
	}
	return weddingapp.Session{ID: "session-1", ExpiresAt: f.expiresAt}, nil
}

func (f *fakeSessions) Issue() (string, error) {
	f.issued++
	return "renewed", nil
}

func (f *fakeSessions) TTL() time.Duration {
	return 30 * time.Minute
}

type stubModule struct {
	id    string
	mount module.Mount
	err   error
}

func (s stubModule) ID() string {
	return s.id
}

func (s stubModule) Mount() (module.Mount, error) {
	return s.mount, s.err
}
