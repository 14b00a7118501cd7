// Package modules lists the web modules the server mounts.
package modules

import (
	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/modules/admin"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/modules/cron"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/modules/public"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/modules/rsvp"
)

// DefaultPublicModules returns the modules served without an admin session.
func DefaultPublicModules(deps module.Dependencies) []module.Module {
	return []module.Module{
		public.New(deps),
		rsvp.New(deps),
		cron.New(deps),
	}
}

// DefaultProtectedModules returns the modules mounted behind the admin
// session check.
func DefaultProtectedModules(deps module.Dependencies) []module.Module {
	return []module.Module{
		admin.New(deps),
	}
}
