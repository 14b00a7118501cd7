package admin

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	flashnotice "github.com/louisbranch/wedding.rsvp/internal/services/web/platform/flash"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/modulehandler"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/pagerender"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/sessioncookie"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
	webtemplates "github.com/louisbranch/wedding.rsvp/internal/services/web/templates"
)

// maxFormBytes bounds urlencoded admin forms.
const maxFormBytes = 64 << 10

type handlers struct {
	modulehandler.Base
	deps module.Dependencies
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{Base: modulehandler.NewBase(deps), deps: deps}
}

func (h handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.Redirect(w, r, routepath.AdminDashboard)
}

func (h handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	next := loginDestination(r.URL.Query().Get(routepath.NextQueryKey))
	if token, ok := sessioncookie.Read(r); ok {
		if _, err := h.deps.Auth.Verify(token); err == nil {
			h.Redirect(w, r, next)
			return
		}
	}
	loc := h.Localize(w, r)
	h.WritePage(w, r, loc, loc.Sprintf("admin.login.title"),
		webtemplates.AdminLogin(r.URL.Query().Get(routepath.NextQueryKey), false, loc))
}

func (h handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	if !h.parseForm(w, r, loc) {
		return
	}
	rawNext := r.PostForm.Get(routepath.NextQueryKey)
	token, err := h.deps.Auth.Login(r.Context(), r.PostForm.Get("password"))
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeUnauthorized {
			h.WritePageStatus(w, r, loc, loc.Sprintf("admin.login.title"), http.StatusUnauthorized,
				webtemplates.AdminLogin(rawNext, true, loc))
			return
		}
		h.WriteError(w, r, loc, err)
		return
	}
	sessioncookie.Write(w, r, token, h.deps.Auth.TTL(), h.deps.Policy)
	h.Redirect(w, r, loginDestination(rawNext))
}

func (h handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	sessioncookie.Clear(w, r, h.deps.Policy)
	h.Flash(w, r, flashnotice.Success("admin.flash.logged_out"))
	h.Redirect(w, r, routepath.AdminLogin)
}

func (h handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	loc := h.Localize(w, r)
	dashboard, err := h.deps.Services.Reports.Dashboard(r.Context())
	if err != nil {
		h.WriteError(w, r, loc, err)
		return
	}
	h.WriteAdminPage(w, r, loc, loc.Sprintf("admin.dashboard.title"), http.StatusOK,
		webtemplates.AdminDashboard(webtemplates.DashboardView{
			Dashboard: dashboard,
			RSVPLink:  h.deps.Settings.RSVPLink,
		}, loc))
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.WriteNotFound(w, r, h.Localize(w, r))
}

// parseForm reads a bounded urlencoded body, rendering a 400 on failure.
func (h handlers) parseForm(w http.ResponseWriter, r *http.Request, loc pagerender.Locale) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.WriteError(w, r, loc, apperrors.Wrap(apperrors.CodeInvalidInput, "parse form", err))
		return false
	}
	return true
}

// flashError stores a client error as a notice, or reports false for
// errors that deserve an error page.
func (h handlers) flashError(w http.ResponseWriter, r *http.Request, err error) bool {
	status := apperrors.HTTPStatus(err)
	if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
		return false
	}
	key, args := apperrors.LocalizationKey(err)
	h.Flash(w, r, flashnotice.Error(key, stringArgs(args)...))
	return true
}

func loginDestination(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || strings.HasPrefix(next, routepath.AdminLogin) || !routepath.IsLocalAdminPath(next) {
		return routepath.AdminDashboard
	}
	return next
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("guestID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.New(apperrors.CodeGuestNotFound, "invalid guest id")
	}
	return id, nil
}

func stringArgs(args []any) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			out = append(out, v)
		case int:
			out = append(out, strconv.Itoa(v))
		case int64:
			out = append(out, strconv.FormatInt(v, 10))
		}
	}
	return out
}
