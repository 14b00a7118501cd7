// Package admin serves the password-protected management pages: guests,
// allergens, reports, reminders and invitation QR codes.
package admin

import (
	"net/http"

	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/throttle"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
)

// Module provides the admin routes. Composition guards every path except
// the login page with the session check.
type Module struct {
	deps module.Dependencies
}

// New returns the admin module.
func New(deps module.Dependencies) Module {
	return Module{deps: deps}
}

// ID returns a stable identifier for diagnostics and startup logs.
func (Module) ID() string { return "admin" }

// Mount wires admin routes under /admin/.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(m.deps))
	return module.Mount{
		Prefix:  routepath.AdminPrefix,
		Handler: mux,
		Public:  []string{routepath.AdminLogin},
	}, nil
}

func registerRoutes(mux *http.ServeMux, h handlers) {
	loginLimit := throttle.Middleware(throttle.Config{
		Limiter: h.deps.LoginLimiter,
		Policy:  h.deps.Policy,
		Clock:   h.deps.Now,
		Logger:  h.Logger(),
		Reject:  h.WriteTooManyRequests,
	})

	mux.HandleFunc("GET /admin", h.handleIndex)
	mux.HandleFunc("GET "+routepath.AdminPrefix+"{$}", h.handleIndex)
	mux.HandleFunc("GET "+routepath.AdminLogin, h.handleLoginPage)
	mux.Handle("POST "+routepath.AdminLogin, loginLimit(http.HandlerFunc(h.handleLogin)))
	mux.HandleFunc("POST "+routepath.AdminLogout, h.handleLogout)
	mux.HandleFunc("GET "+routepath.AdminDashboard, h.handleDashboard)

	mux.HandleFunc("GET "+routepath.AdminGuests, h.handleGuests)
	mux.HandleFunc("POST "+routepath.AdminGuests, h.handleGuestCreate)
	mux.HandleFunc("GET "+routepath.AdminGuestNew, h.handleGuestNew)
	mux.HandleFunc("GET "+routepath.AdminGuestImport, h.handleImportPage)
	mux.HandleFunc("POST "+routepath.AdminGuestImport, h.handleImport)
	mux.HandleFunc("GET "+routepath.AdminGuestTemplate, h.handleTemplate)
	mux.HandleFunc("GET "+routepath.AdminGuestEditPattern, h.handleGuestEdit)
	mux.HandleFunc("POST "+routepath.AdminGuestPattern, h.handleGuestUpdate)
	mux.HandleFunc("POST "+routepath.AdminGuestDeletePattern, h.handleGuestDelete)

	mux.HandleFunc("GET "+routepath.AdminAllergens, h.handleAllergens)
	mux.HandleFunc("POST "+routepath.AdminAllergens, h.handleAllergenCreate)

	mux.HandleFunc("GET "+routepath.AdminDietary, h.handleDietary)
	mux.HandleFunc("GET "+routepath.AdminTransport, h.handleTransport)
	mux.HandleFunc("GET "+routepath.AdminPending, h.handlePending)
	mux.HandleFunc("GET "+routepath.AdminExport, h.handleExport)

	mux.HandleFunc("GET "+routepath.AdminReminders, h.handleReminders)
	mux.HandleFunc("POST "+routepath.AdminRemindersSend, h.handleRemindersSend)
	mux.HandleFunc("POST "+routepath.AdminReminderOptOutPattern, h.handleOptOut)

	mux.HandleFunc("GET "+routepath.AdminQR, h.handleQR)
	mux.HandleFunc("GET "+routepath.AdminQRPrintable, h.handleQRPrintable)
	mux.HandleFunc("GET "+routepath.AdminQRDownloadAll, h.handleQRArchive)
	mux.HandleFunc("GET "+routepath.AdminQRDownloadAllPattern, h.handleQRArchive)
	mux.HandleFunc("GET "+routepath.AdminQRDownloadPattern, h.handleQRDownload)
	mux.HandleFunc("GET "+routepath.AdminQRDownloadFormatPattern, h.handleQRDownload)
	mux.HandleFunc("GET "+routepath.AdminQRPreviewPattern, h.handleQRPreview)

	mux.HandleFunc(routepath.AdminPrefix, h.handleNotFound)
}
