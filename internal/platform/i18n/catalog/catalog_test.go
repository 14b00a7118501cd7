package catalog

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func yamlFile(body string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(body)}
}

func TestEmbeddedCatalogsAreComplete(t *testing.T) {
	t.Parallel()

	b := Default()
	assert.Equal(t, []string{"en-US", "es-ES"}, b.Locales())
	assert.Empty(t, b.Missing("es-ES"))
}

func TestPrinterTranslatesByLanguage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Your RSVP has been cancelled.", Printer(language.English).Sprintf("rsvp.flash.cancelled"))
	assert.Equal(t, "Tu confirmación ha sido cancelada.", Printer(language.Spanish).Sprintf("rsvp.flash.cancelled"))
	assert.Equal(t, "Please provide a name for additional adult #2",
		Printer(language.AmericanEnglish).Sprintf("rsvp.problem.adult_name_required", 2))
}

func TestLoadRejectsMalformedCatalogs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{
			name: "empty",
			fsys: fstest.MapFS{},
			want: "no catalog files found",
		},
		{
			name: "key outside namespace",
			fsys: fstest.MapFS{"locales/en-US/rsvp.yaml": yamlFile("locale: en-US\nnamespace: rsvp\nmessages:\n  admin.title: nope\n")},
			want: `must start with "rsvp."`,
		},
		{
			name: "locale mismatch",
			fsys: fstest.MapFS{"locales/en-US/core.yaml": yamlFile("locale: es-ES\nnamespace: core\nmessages:\n  core.title: Boda\n")},
			want: "does not match directory",
		},
		{
			name: "namespace mismatch",
			fsys: fstest.MapFS{"locales/en-US/core.yaml": yamlFile("locale: en-US\nnamespace: home\nmessages:\n  home.title: Home\n")},
			want: "does not match file name",
		},
		{
			name: "no messages",
			fsys: fstest.MapFS{"locales/en-US/core.yaml": yamlFile("locale: en-US\nnamespace: core\n")},
			want: "no messages",
		},
		{
			name: "missing base locale",
			fsys: fstest.MapFS{"locales/es-ES/core.yaml": yamlFile("locale: es-ES\nnamespace: core\nmessages:\n  core.title: Boda\n")},
			want: "base locale en-US",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(tc.fsys)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLookupFallsBackToBaseLocale(t *testing.T) {
	t.Parallel()

	b, err := Load(fstest.MapFS{
		"locales/en-US/core.yaml": yamlFile("locale: en-US\nnamespace: core\nmessages:\n  core.title: Wedding\n  core.only_en: English only\n"),
		"locales/es-ES/core.yaml": yamlFile("locale: es-ES\nnamespace: core\nmessages:\n  core.title: Boda\n"),
	})
	require.NoError(t, err)

	got, ok := b.Lookup("es-ES", "core.title")
	assert.True(t, ok)
	assert.Equal(t, "Boda", got)

	got, ok = b.Lookup("es-ES", "core.only_en")
	assert.True(t, ok)
	assert.Equal(t, "English only", got)

	_, ok = b.Lookup("es-ES", "core.unknown")
	assert.False(t, ok)
	assert.Equal(t, []string{"core.only_en"}, b.Missing("es-ES"))
}
