// Package rsvp serves the guest-facing reply pages reached through a
// personal invitation link.
package rsvp

import (
	"net/http"

	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/throttle"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
)

// Module provides the RSVP routes.
type Module struct {
	deps module.Dependencies
}

// New returns the rsvp module.
func New(deps module.Dependencies) Module {
	return Module{deps: deps}
}

// ID returns a stable identifier for diagnostics and startup logs.
func (Module) ID() string { return "rsvp" }

// Mount wires the RSVP routes behind the per-client rate limiter.
func (m Module) Mount() (module.Mount, error) {
	h := newHandlers(m.deps)
	mux := http.NewServeMux()
	registerRoutes(mux, h)
	limited := throttle.Middleware(throttle.Config{
		Limiter: m.deps.Limiter,
		Policy:  m.deps.Policy,
		Clock:   m.deps.Now,
		Logger:  h.Logger(),
		Reject:  h.WriteTooManyRequests,
	})(mux)
	return module.Mount{Prefix: routepath.RSVPPrefix, Handler: limited}, nil
}

func registerRoutes(mux *http.ServeMux, h handlers) {
	mux.HandleFunc("GET "+routepath.RSVPLandingPattern, h.handleLanding)
	mux.HandleFunc("GET "+routepath.RSVPFormPattern, h.handleForm)
	mux.HandleFunc("POST "+routepath.RSVPFormPattern, h.handleSubmit)
	mux.HandleFunc("POST "+routepath.RSVPCancelPattern, h.handleCancel)
	mux.HandleFunc("GET "+routepath.RSVPConfirmationPattern, h.handleConfirmation)
	mux.HandleFunc(routepath.RSVPPrefix, h.handleNotFound)
}
