// Package flash carries a one-time notice across a redirect in a cookie.
// The notice holds a catalog key, so it is translated when shown rather
// than when set.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/requestmeta"
)

// CookieName is the cookie holding the pending notice.
const CookieName = "wedding_flash"

// maxArgs bounds the cookie size.
const maxArgs = 4

// Kind selects the notice style.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

var kinds = map[Kind]bool{KindSuccess: true, KindInfo: true, KindWarning: true, KindError: true}

// Notice is one catalog message with its string arguments.
type Notice struct {
	Kind Kind     `json:"kind"`
	Key  string   `json:"key"`
	Args []string `json:"args,omitempty"`
}

func Success(key string, args ...string) Notice { return Notice{KindSuccess, key, args} }

func Warning(key string, args ...string) Notice { return Notice{KindWarning, key, args} }

func Error(key string, args ...string) Notice { return Notice{KindError, key, args} }

// AnyArgs returns Args as a printf argument list.
func (n Notice) AnyArgs() []any {
	out := make([]any, 0, len(n.Args))
	for _, a := range n.Args {
		out = append(out, a)
	}
	return out
}

func (n Notice) clean() (Notice, bool) {
	n.Kind = Kind(strings.ToLower(strings.TrimSpace(string(n.Kind))))
	n.Key = strings.TrimSpace(n.Key)
	if !kinds[n.Kind] || n.Key == "" {
		return Notice{}, false
	}
	if len(n.Args) > maxArgs {
		n.Args = n.Args[:maxArgs]
	}
	return n, true
}

// Write stores notice for the next full page render. Invalid notices are
// dropped.
func Write(w http.ResponseWriter, r *http.Request, notice Notice, policy requestmeta.SchemePolicy) {
	n, ok := notice.clean()
	if w == nil || !ok {
		return
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return
	}
	setCookie(w, r, policy, base64.RawURLEncoding.EncodeToString(raw), 0)
}

// ReadAndClear returns the pending notice and expires the cookie, even
// when its value cannot be decoded.
func ReadAndClear(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy) (Notice, bool) {
	if r == nil {
		return Notice{}, false
	}
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Notice{}, false
	}
	if w != nil {
		setCookie(w, r, policy, "", -1)
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(c.Value))
	if err != nil {
		return Notice{}, false
	}
	var n Notice
	if json.Unmarshal(raw, &n) != nil {
		return Notice{}, false
	}
	return n.clean()
}

func setCookie(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPS(r, policy),
		SameSite: http.SameSiteLaxMode,
	})
}
