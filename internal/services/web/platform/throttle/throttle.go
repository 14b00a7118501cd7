// Package throttle limits requests per client address.
package throttle

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
	"github.com/louisbranch/wedding.rsvp/internal/platform/ratelimit"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/httpx"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/requestmeta"
)

// RetryAfter is advertised on throttled responses.
const RetryAfter = time.Minute

// Config configures the middleware.
type Config struct {
	Limiter *ratelimit.MapLimiter
	Policy  requestmeta.SchemePolicy
	Clock   func() time.Time
	Logger  *zap.Logger
	// Reject writes the throttled response. Defaults to a plain 429.
	Reject http.HandlerFunc
}

// Middleware rejects requests once the client exhausts its budget. A nil
// limiter disables throttling.
func Middleware(cfg Config) httpx.Middleware {
	logger := logging.OrNop(cfg.Logger)
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	reject := cfg.Reject
	if reject == nil {
		reject = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		if cfg.Limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := requestmeta.ClientIP(r, cfg.Policy)
			if cfg.Limiter.Allow(ip, clock()) {
				next.ServeHTTP(w, r)
				return
			}
			logger.Warn("request throttled",
				zap.String("client_ip", ip),
				zap.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", strconv.Itoa(int(RetryAfter.Seconds())))
			reject(w, r)
		})
	}
}
