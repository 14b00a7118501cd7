// Package sessioncookie reads and writes the admin session cookie. The
// cookie is HttpOnly, SameSite=Lax and Secure whenever the request arrived
// over HTTPS.
package sessioncookie

import (
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/requestmeta"
)

// Name is the admin session cookie name.
const Name = "wedding_admin"

// Read returns the session token, if any.
func Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(Name)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(c.Value)
	return token, token != ""
}

// Write stores token for ttl.
func Write(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration, policy requestmeta.SchemePolicy) {
	set(w, r, policy, strings.TrimSpace(token), int(ttl/time.Second))
}

// Clear tells the browser to drop the cookie.
func Clear(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy) {
	set(w, r, policy, "", -1)
}

func set(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy, value string, maxAge int) {
	if w == nil {
		return
	}
	c := &http.Cookie{Name: Name, Value: value, Path: "/", MaxAge: maxAge}
	c.HttpOnly = true
	c.SameSite = http.SameSiteLaxMode
	c.Secure = requestmeta.IsHTTPS(r, policy)
	http.SetCookie(w, c)
}
