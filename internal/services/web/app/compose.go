// Package app assembles web modules into the root handler. Public modules
// mount as-is; protected modules live under /admin/ and sit behind the
// session and same-origin checks.
package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
	weddingapp "github.com/louisbranch/wedding.rsvp/internal/services/wedding/app"
)

// Sessions verifies and renews admin session tokens.
type Sessions interface {
	Verify(token string) (weddingapp.Session, error)
	Issue() (string, error)
	TTL() time.Duration
}

// ComposeInput lists the modules to mount and what the admin gate needs.
type ComposeInput struct {
	PublicModules    []module.Module
	ProtectedModules []module.Module
	Sessions         Sessions
	Policy           requestmeta.SchemePolicy
	Logger           *zap.Logger
	Clock            func() time.Time
}

// Compose mounts every module on one ServeMux. It fails on a nil module, a
// malformed or duplicated prefix, or a module mounted in the wrong group.
func Compose(input ComposeInput) (http.Handler, error) {
	if len(input.ProtectedModules) > 0 && input.Sessions == nil {
		return nil, errors.New("protected modules require a session verifier")
	}
	r := &router{mux: http.NewServeMux(), owners: make(map[string]string)}
	for _, m := range input.PublicModules {
		if err := r.mountPublic(m); err != nil {
			return nil, err
		}
	}
	gate := newAdminGate(input)
	for _, m := range input.ProtectedModules {
		if err := r.mountProtected(m, gate); err != nil {
			return nil, err
		}
	}
	return r.mux, nil
}

type router struct {
	mux    *http.ServeMux
	owners map[string]string
}

func (r *router) mountPublic(m module.Module) error {
	mount, err := mountOf(m, "public")
	if err != nil {
		return err
	}
	if strings.HasPrefix(mount.Prefix, routepath.AdminPrefix) {
		return fmt.Errorf("public module %q cannot mount under %s", m.ID(), routepath.AdminPrefix)
	}
	return r.handle(m.ID(), mount.Prefix, mount.Handler)
}

func (r *router) mountProtected(m module.Module, gate *adminGate) error {
	mount, err := mountOf(m, "protected")
	if err != nil {
		return err
	}
	if !strings.HasPrefix(mount.Prefix, routepath.AdminPrefix) {
		return fmt.Errorf("protected module %q must mount under %s, got %q", m.ID(), routepath.AdminPrefix, mount.Prefix)
	}
	h := gate.wrap(mount.Handler, mount.Public)
	if err := r.handle(m.ID(), mount.Prefix, h); err != nil {
		return err
	}
	// "/admin" without the slash would otherwise redirect before the gate.
	return r.handle(m.ID(), strings.TrimSuffix(mount.Prefix, "/"), h)
}

func (r *router) handle(id, pattern string, h http.Handler) error {
	if owner, taken := r.owners[pattern]; taken {
		return fmt.Errorf("module %q: prefix %q already mounted by %q", id, pattern, owner)
	}
	r.owners[pattern] = id
	r.mux.Handle(pattern, h)
	return nil
}

func mountOf(m module.Module, group string) (module.Mount, error) {
	if m == nil {
		return module.Mount{}, fmt.Errorf("%s module is nil", group)
	}
	mount, err := m.Mount()
	if err != nil {
		return module.Mount{}, fmt.Errorf("mount module %q: %w", m.ID(), err)
	}
	if err := checkPrefix(mount.Prefix); err != nil {
		return module.Mount{}, fmt.Errorf("module %q has invalid prefix %q: %w", m.ID(), mount.Prefix, err)
	}
	if mount.Handler == nil {
		return module.Mount{}, fmt.Errorf("mount module %q: handler is required", m.ID())
	}
	return mount, nil
}

func checkPrefix(prefix string) error {
	switch {
	case prefix == "":
		return errors.New("prefix is required")
	case strings.TrimSpace(prefix) != prefix:
		return errors.New("surrounding whitespace")
	case !strings.HasPrefix(prefix, "/") || !strings.HasSuffix(prefix, "/"):
		return errors.New("prefix must start and end with /")
	}
	return nil
}
