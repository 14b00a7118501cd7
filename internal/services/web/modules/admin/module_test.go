package admin

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisbranch/wedding.rsvp/internal/platform/ratelimit"
	flashnotice "github.com/louisbranch/wedding.rsvp/internal/services/web/platform/flash"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/sessioncookie"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/testkit/weddingfakes"
)

func mount(t *testing.T, env *weddingfakes.Env) http.Handler {
	t.Helper()
	m, err := New(env.Deps).Mount()
	require.NoError(t, err)
	require.Equal(t, "/admin/", m.Prefix)
	require.Equal(t, []string{"/admin/login"}, m.Public)
	return m.Handler
}

func do(h http.Handler, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func get(h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return do(h, httptest.NewRequest(http.MethodGet, target, nil), cookies...)
}

func postForm(h http.Handler, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(h, req, cookies...)
}

func upload(t *testing.T, h http.Handler, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/admin/guests/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return do(h, req)
}

func responseCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// followFlash renders target with the flash notice set by rr.
func followFlash(t *testing.T, h http.Handler, rr *httptest.ResponseRecorder, target string) string {
	t.Helper()
	flash := responseCookie(rr, flashnotice.CookieName)
	require.NotNil(t, flash, "response did not set a flash notice")
	page := get(h, target+"?lang=en", flash)
	require.Equal(t, http.StatusOK, page.Code)
	return page.Body.String()
}

func TestIndexRedirectsToDashboard(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	h := mount(t, env)
	for _, target := range []string{"/admin", "/admin/"} {
		rr := get(h, target)
		assert.Equal(t, http.StatusFound, rr.Code, target)
		assert.Equal(t, "/admin/dashboard", rr.Header().Get("Location"), target)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		next     string
		status   int
		location string
	}{
		{name: "wrong password", password: "nope", status: http.StatusUnauthorized},
		{name: "dashboard by default", password: weddingfakes.AdminPassword, status: http.StatusSeeOther, location: "/admin/dashboard"},
		{name: "local next", password: weddingfakes.AdminPassword, next: "/admin/reminders", status: http.StatusSeeOther, location: "/admin/reminders"},
		{name: "foreign next ignored", password: weddingfakes.AdminPassword, next: "//evil.example/admin/", status: http.StatusSeeOther, location: "/admin/dashboard"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
			rr := postForm(mount(t, env), "/admin/login?lang=en", url.Values{"password": {tc.password}, "next": {tc.next}})

			require.Equal(t, tc.status, rr.Code)
			session := responseCookie(rr, sessioncookie.Name)
			if tc.location == "" {
				assert.Contains(t, rr.Body.String(), "Invalid password")
				assert.Nil(t, session)
				return
			}
			assert.Equal(t, tc.location, rr.Header().Get("Location"))
			require.NotNil(t, session)
			_, err := env.Deps.Auth.Verify(session.Value)
			assert.NoError(t, err)
		})
	}
}

func TestLoginPageRedirectsSignedInAdmin(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	h := mount(t, env)

	rr := get(h, "/admin/login?lang=en")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `name="password"`)

	rr = get(h, "/admin/login?next=%2Fadmin%2Freminders", env.AdminCookie(t))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/admin/reminders", rr.Header().Get("Location"))
}

func TestLoginIsRateLimited(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	env.Deps.LoginLimiter = ratelimit.New(1, 5*time.Minute)
	h := mount(t, env)

	assert.Equal(t, http.StatusUnauthorized, postForm(h, "/admin/login", url.Values{"password": {"nope"}}).Code)
	rr := postForm(h, "/admin/login", url.Values{"password": {weddingfakes.AdminPassword}})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Nil(t, responseCookie(rr, sessioncookie.Name))
}

func TestLogoutClearsSession(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	h := mount(t, env)
	rr := postForm(h, "/admin/logout", url.Values{}, env.AdminCookie(t))

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/login", rr.Header().Get("Location"))
	session := responseCookie(rr, sessioncookie.Name)
	require.NotNil(t, session)
	assert.True(t, session.MaxAge < 0)
	assert.Contains(t, followFlash(t, h, rr, "/admin/login"), "You have been logged out")
}

func TestDashboardListsGuests(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	g := env.AddGuest(t, guest.Guest{Name: "Marta Ruiz"})
	rr := get(mount(t, env), "/admin/dashboard?lang=en")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Marta Ruiz")
	assert.Contains(t, body, "https://wedding.example.com/rsvp/"+g.Token)
	assert.Contains(t, body, `/admin/guests/`+strconv.FormatInt(g.ID, 10)+`/edit`)
	assert.Contains(t, body, "<dt>Attending responses</dt><dd>0</dd>")
}

func TestGuestCreate(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	h := mount(t, env)

	rr := get(h, "/admin/guests/new?lang=en")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Add guest")

	rr = postForm(h, "/admin/guests?lang=en", url.Values{"name": {""}, "phone": {"600111222"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Guest details are not valid")

	rr = postForm(h, "/admin/guests", url.Values{
		"name":         {"Lucia"},
		"phone":        {"600333444"},
		"email":        {"lucia@example.com"},
		"language":     {"en"},
		"has_plus_one": {"on"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, followFlash(t, h, rr, "/admin/dashboard"), "Guest added successfully")

	guests, err := env.Deps.Services.Guests.List(context.Background())
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, guest.LanguageEnglish, guests[0].Language)
	assert.True(t, guests[0].HasPlusOne)
	assert.NotEmpty(t, guests[0].Token)
}

func TestGuestUpdateAndDelete(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	g := env.AddGuest(t, guest.Guest{Name: "Lucia"})
	h := mount(t, env)
	id := strconv.FormatInt(g.ID, 10)

	rr := get(h, "/admin/guests/"+id+"/edit?lang=en")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `value="Lucia"`)

	rr = postForm(h, "/admin/guests/"+id, url.Values{"name": {"Lucia Gomez"}, "phone": {"600111222"}, "is_family": {"on"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	updated, err := env.Deps.Services.Guests.Get(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lucia Gomez", updated.Name)
	assert.True(t, updated.IsFamily)
	assert.Equal(t, g.Token, updated.Token)

	rr = postForm(h, "/admin/guests/"+id+"/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	_, err = env.Deps.Services.Guests.Get(context.Background(), g.ID)
	assert.Error(t, err)

	assert.Equal(t, http.StatusNotFound, get(h, "/admin/guests/"+id+"/edit").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/admin/guests/abc/edit").Code)
}

func TestImportGuests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		content  string
		location string
		notice   string
		imported int
	}{
		{
			name:     "imports rows",
			filename: "guests.csv",
			content:  guest.CSVTemplate() + "Ana,600000001,ana@example.com,yes,no,es\nBen,600000002,,no,yes,en\n",
			location: "/admin/dashboard",
			notice:   "Successfully imported 2 guests",
			imported: 2,
		},
		{
			name:     "missing file",
			location: "/admin/guests/import",
			notice:   "No file uploaded",
		},
		{
			name:     "not a csv",
			filename: "guests.xlsx",
			content:  "binary",
			location: "/admin/guests/import",
			notice:   "Please upload a CSV file",
		},
		{
			name:     "missing headers",
			filename: "guests.csv",
			content:  "name,phone\nAna,600000001\n",
			location: "/admin/guests/import",
			notice:   "Missing required headers",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
			h := mount(t, env)
			rr := upload(t, h, tc.filename, tc.content)

			require.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, tc.location, rr.Header().Get("Location"))
			assert.Contains(t, followFlash(t, h, rr, tc.location), tc.notice)
			guests, err := env.Deps.Services.Guests.List(context.Background())
			require.NoError(t, err)
			assert.Len(t, guests, tc.imported)
		})
	}
}

func TestDownloads(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	env.AddGuest(t, guest.Guest{Name: "Marta"})
	h := mount(t, env)

	rr := get(h, "/admin/guests/template.csv")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="guest_template.csv"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, guest.CSVTemplate(), rr.Body.String())

	rr = get(h, "/admin/reports/rsvps.csv")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="rsvps_20260401.csv"`, rr.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "guest_name,phone,language,status"))
}

func TestAllergens(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	h := mount(t, env)

	rr := postForm(h, "/admin/allergens", url.Values{"name": {"Sesame"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	body := followFlash(t, h, rr, "/admin/allergens")
	assert.Contains(t, body, "Allergen Sesame added")
	assert.Contains(t, body, "<li>Sesame</li>")

	rr = postForm(h, "/admin/allergens", url.Values{"name": {"Sesame"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, followFlash(t, h, rr, "/admin/allergens"), "already exists")
}

func TestReportPages(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	env.AddGuest(t, guest.Guest{Name: "Pending Pedro"})
	h := mount(t, env)

	for _, target := range []string{"/admin/reports/dietary", "/admin/reports/transport", "/admin/reports/pending"} {
		rr := get(h, target+"?lang=en")
		assert.Equal(t, http.StatusOK, rr.Code, target)
	}
	assert.Contains(t, get(h, "/admin/reports/pending?lang=en").Body.String(), "Pending Pedro")
	assert.Contains(t, get(h, "/admin/reports/dietary?lang=en").Body.String(), "No dietary restrictions reported.")
}

func TestRemindersManualSend(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	withEmail := env.AddGuest(t, guest.Guest{Name: "Marta", Email: "marta@example.com", Language: guest.LanguageEnglish})
	noEmail := env.AddGuest(t, guest.Guest{Name: "Pedro"})
	h := mount(t, env)

	rr := get(h, "/admin/reminders?lang=en")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Pedro (no email)")

	rr = postForm(h, "/admin/reminders/send?lang=en", url.Values{
		"guest_id": {strconv.FormatInt(withEmail.ID, 10), strconv.FormatInt(noEmail.ID, 10)},
		"message":  {"See you soon"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Sent 1 of 2 reminders, 1 failed.")

	sent := env.Sender.Messages()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"marta@example.com"}, sent[0].To)
	assert.Contains(t, sent[0].Text, "See you soon")
}

func TestRemindersSendRequiresSelection(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	h := mount(t, env)
	rr := postForm(h, "/admin/reminders/send", url.Values{"guest_id": {"x"}})

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, followFlash(t, h, rr, "/admin/reminders"), "Select at least one guest")
	assert.Empty(t, env.Sender.Messages())
}

func TestReminderOptOut(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	g := env.AddGuest(t, guest.Guest{Name: "Marta", Email: "marta@example.com"})
	h := mount(t, env)

	rr := postForm(h, "/admin/reminders/"+strconv.FormatInt(g.ID, 10)+"/opt-out", url.Values{})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, followFlash(t, h, rr, "/admin/reminders"), "Marta will not receive more reminders")

	pref, err := env.Store.GetPreference(context.Background(), g.ID)
	require.NoError(t, err)
	assert.True(t, pref.OptOut)

	rr = postForm(h, "/admin/reminders/999/opt-out", url.Values{})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUnknownAdminPathIsNotFound(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-01"))
	assert.Equal(t, http.StatusNotFound, get(mount(t, env), "/admin/nope").Code)
}
