// Package module defines the feature contract used by web composition.
package module

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/louisbranch/wedding.rsvp/internal/platform/ratelimit"
	"github.com/louisbranch/wedding.rsvp/internal/platform/telemetry/metrics"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/requestmeta"
	weddingapp "github.com/louisbranch/wedding.rsvp/internal/services/wedding/app"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/calendar"
)

// Mount describes a module route mount.
type Mount struct {
	Prefix  string
	Handler http.Handler
	// Public lists exact paths under a protected prefix that skip the
	// session check.
	Public []string
}

// Module declares the minimum contract required by web composition.
type Module interface {
	ID() string
	Mount() (Mount, error)
}

// Dependencies are the shared collaborators handed to every module.
type Dependencies struct {
	Services *weddingapp.Services
	Auth     *weddingapp.AuthService
	Calendar calendar.Calendar
	Settings weddingapp.Settings
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	Policy   requestmeta.SchemePolicy
	// Limiter throttles guest-facing and cron routes per client IP.
	Limiter *ratelimit.MapLimiter
	// LoginLimiter throttles admin login attempts per client IP.
	LoginLimiter *ratelimit.MapLimiter
	CronSecret   string
	Ping         func(*http.Request) error
	Clock        func() time.Time
}

// Now returns the dependency clock time.
func (d Dependencies) Now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock()
}
