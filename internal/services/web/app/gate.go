package app

import (
	"net/http"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
	"github.com/louisbranch/wedding.rsvp/internal/platform/requestctx"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/httpx"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/sessioncookie"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
)

// adminGate guards protected modules.
type adminGate struct {
	sessions Sessions
	policy   requestmeta.SchemePolicy
	logger   *zap.Logger
	now      func() time.Time
}

func newAdminGate(input ComposeInput) *adminGate {
	now := input.Clock
	if now == nil {
		now = time.Now
	}
	return &adminGate{
		sessions: input.Sessions,
		policy:   input.Policy,
		logger:   logging.OrNop(input.Logger),
		now:      now,
	}
}

// wrap returns next behind the session check, except for the exact paths
// in open, and rejects cross-origin mutations either way.
func (g *adminGate) wrap(next http.Handler, open []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isMutation(r.Method) && !requestmeta.HasSameOriginProof(r, g.policy) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		if slices.Contains(open, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		session, ok := g.authenticate(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(requestctx.WithAdmin(r.Context(), session)))
	})
}

// authenticate returns the admin id for a valid session, renewing the
// cookie once less than half the TTL remains. Otherwise it redirects to
// the login page and reports false.
func (g *adminGate) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, _ := sessioncookie.Read(r)
	session, err := g.sessions.Verify(token)
	if err != nil {
		if token != "" {
			sessioncookie.Clear(w, r, g.policy)
		}
		next := ""
		if r.Method == http.MethodGet {
			next = r.URL.RequestURI()
		}
		httpx.WriteRedirect(w, r, routepath.AdminLoginWithNext(next))
		return "", false
	}

	ttl := g.sessions.TTL()
	if session.ExpiresAt.Sub(g.now()) < ttl/2 {
		renewed, err := g.sessions.Issue()
		if err != nil {
			g.logger.Warn("renew admin session", zap.Error(err))
		} else {
			sessioncookie.Write(w, r, renewed, ttl, g.policy)
		}
	}
	return session.ID, true
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
