package modules

import (
	"strings"
	"testing"

	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
)

func TestDefaultModules(t *testing.T) {
	t.Parallel()

	public := DefaultPublicModules(module.Dependencies{})
	protected := DefaultProtectedModules(module.Dependencies{})
	wantPublic := []string{"public", "rsvp", "cron"}
	if len(public) != len(wantPublic) {
		t.Fatalf("public module count = %d, want %d", len(public), len(wantPublic))
	}
	for i, id := range wantPublic {
		if got := public[i].ID(); got != id {
			t.Fatalf("public module[%d] id = %q, want %q", i, got, id)
		}
	}
	if len(protected) != 1 || protected[0].ID() != "admin" {
		t.Fatalf("protected modules = %v, want [admin]", protected)
	}
}

func TestModulesHaveUniquePrefixes(t *testing.T) {
	t.Parallel()

	deps := module.Dependencies{}
	seen := map[string]string{}
	all := append(DefaultPublicModules(deps), DefaultProtectedModules(deps)...)
	for _, m := range all {
		mount, err := m.Mount()
		if err != nil {
			t.Fatalf("module %q mount error = %v", m.ID(), err)
		}
		if mount.Prefix == "" || mount.Handler == nil {
			t.Fatalf("module %q has incomplete mount %+v", m.ID(), mount)
		}
		if owner, ok := seen[mount.Prefix]; ok {
			t.Fatalf("module %q duplicates prefix %q of %q", m.ID(), mount.Prefix, owner)
		}
		seen[mount.Prefix] = m.ID()
	}
}

func TestProtectedModulesStayUnderAdminPrefix(t *testing.T) {
	t.Parallel()

	for _, m := range DefaultProtectedModules(module.Dependencies{}) {
		mount, err := m.Mount()
		if err != nil {
			t.Fatalf("module %q mount error = %v", m.ID(), err)
		}
		if !strings.HasPrefix(mount.Prefix, routepath.AdminPrefix) {
			t.Fatalf("protected module %q mounts at %q", m.ID(), mount.Prefix)
		}
		for _, path := range mount.Public {
			if !strings.HasPrefix(path, mount.Prefix) {
				t.Fatalf("public path %q escapes module prefix %q", path, mount.Prefix)
			}
		}
	}
}
