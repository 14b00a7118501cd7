// Package public serves the landing page, health check, static assets and
// the metrics endpoint.
package public

import (
	"net/http"

	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
)

// Module provides unauthenticated root routes.
type Module struct {
	deps module.Dependencies
}

// New returns the public module.
func New(deps module.Dependencies) Module {
	return Module{deps: deps}
}

// ID returns a stable identifier for diagnostics and startup logs.
func (Module) ID() string { return "public" }

// Mount wires public routes under the root prefix.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(m.deps))
	return module.Mount{Prefix: routepath.Root, Handler: mux}, nil
}

func registerRoutes(mux *http.ServeMux, h handlers) {
	mux.HandleFunc("GET "+routepath.Root+"{$}", h.handleHome)
	mux.HandleFunc("GET "+routepath.Health, h.handleHealth)
	mux.Handle("GET "+routepath.Metrics, h.metrics)
	mux.Handle("GET "+routepath.StaticPrefix, h.static)
	mux.HandleFunc(routepath.Root, h.handleNotFound)
}
