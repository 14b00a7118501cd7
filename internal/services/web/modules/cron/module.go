// Package cron exposes the JSON endpoints an external scheduler calls to
// send RSVP reminders.
package cron

import (
	"net/http"

	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/httpx"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/throttle"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
)

// Module provides the cron API.
type Module struct {
	deps module.Dependencies
}

// New returns the cron module.
func New(deps module.Dependencies) Module {
	return Module{deps: deps}
}

// ID returns a stable identifier for diagnostics and startup logs.
func (Module) ID() string { return "cron" }

// Mount wires the cron routes behind the rate limiter and the shared key.
func (m Module) Mount() (module.Mount, error) {
	h := newHandlers(m.deps)
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+routepath.CronSendReminders, h.handleSendReminders)
	mux.HandleFunc("POST "+routepath.CronSendReminders, h.handleSendReminders)
	mux.HandleFunc("GET "+routepath.CronStatus, h.handleStatus)
	mux.HandleFunc(routepath.CronPrefix, h.handleNotFound)

	handler := httpx.Chain(mux,
		throttle.Middleware(throttle.Config{
			Limiter: m.deps.Limiter,
			Policy:  m.deps.Policy,
			Clock:   m.deps.Now,
			Logger:  h.logger,
			Reject:  rejectJSON,
		}),
		h.requireKey,
	)
	return module.Mount{Prefix: routepath.CronPrefix, Handler: handler}, nil
}

func rejectJSON(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSONError(w, http.StatusTooManyRequests, "Too many requests")
}
