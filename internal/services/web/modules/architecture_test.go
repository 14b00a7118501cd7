package modules

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
)

var areas = []string{"public", "rsvp", "cron", "admin"}

// moduleImports returns the import paths of every non-test file per area.
func moduleImports(t *testing.T) map[string][]string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join("*", "*.go"))
	if err != nil {
		t.Fatalf("glob module files: %v", err)
	}
	fset := token.NewFileSet()
	out := make(map[string][]string)
	for _, file := range files {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}
		parsed, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse imports for %s: %v", file, err)
		}
		for _, imp := range parsed.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				t.Fatalf("unquote %s: %v", imp.Path.Value, err)
			}
			out[file] = append(out[file], path)
		}
	}
	return out
}

func TestModulesStayOnTheirSideOfTheServiceLayer(t *testing.T) {
	t.Parallel()

	forbidden := []string{
		"/internal/services/web/modules/",
		"/internal/services/wedding/storage",
		"/internal/services/wedding/notify",
		"database/sql",
		"net/smtp",
	}
	for file, imports := range moduleImports(t) {
		for _, path := range imports {
			for _, fragment := range forbidden {
				if strings.Contains(path, fragment) {
					t.Errorf("%s imports %q", file, path)
				}
			}
		}
	}
}

func TestEveryAreaHasItsRouteFiles(t *testing.T) {
	t.Parallel()

	for _, area := range areas {
		for _, file := range []string{"module.go", "handlers.go", "module_test.go"} {
			if _, err := os.Stat(filepath.Join(area, file)); err != nil {
				t.Errorf("module %q missing %q: %v", area, file, err)
			}
		}
	}
}

func TestMountPrefixesDoNotOverlap(t *testing.T) {
	t.Parallel()

	prefixes := []string{
		routepath.StaticPrefix,
		routepath.RSVPPrefix,
		routepath.AdminPrefix,
		routepath.CronPrefix,
	}
	for i, a := range prefixes {
		for j, b := range prefixes {
			if i != j && strings.HasPrefix(b, a) {
				t.Errorf("prefix %q shadows %q", a, b)
			}
		}
	}
}
