// Package catalog loads the YAML translations under locales/ and registers
// them with golang.org/x/text/message.
//
// Each file lives at locales/<locale>/<namespace>.yaml and every key in it
// starts with "<namespace>.".
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// BaseLocale holds the complete set of keys; other locales fall back to it.
const BaseLocale = "en-US"

//go:embed locales/*/*.yaml
var localesFS embed.FS

var embedded = sync.OnceValues(func() (*Bundle, error) {
	b, err := Load(localesFS)
	if err != nil {
		return nil, err
	}
	return b, b.Register()
})

// Bundle maps locale to message key to text.
type Bundle struct {
	texts map[string]map[string]string
}

type document struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Default returns the embedded bundle, registered with x/text on first use.
// It panics if the embedded files are malformed.
func Default() *Bundle {
	b, err := embedded()
	if err != nil {
		panic(fmt.Sprintf("load embedded catalogs: %v", err))
	}
	return b
}

// Printer returns an x/text printer for tag after making sure the embedded
// catalogs are registered.
func Printer(tag language.Tag) *message.Printer {
	Default()
	return message.NewPrinter(tag)
}

// Load reads every locales/*/*.yaml file in fsys.
func Load(fsys fs.FS) (*Bundle, error) {
	names, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.New("no catalog files found")
	}
	slices.Sort(names)

	b := &Bundle{texts: make(map[string]map[string]string)}
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		var doc document
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if err := b.add(name, doc); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if _, ok := b.texts[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s has no catalogs", BaseLocale)
	}
	return b, nil
}

func (b *Bundle) add(name string, doc document) error {
	locale := path.Base(path.Dir(name))
	namespace := strings.TrimSuffix(path.Base(name), ".yaml")
	switch {
	case strings.TrimSpace(doc.Locale) != locale:
		return fmt.Errorf("locale %q does not match directory %q", doc.Locale, locale)
	case strings.TrimSpace(doc.Namespace) != namespace:
		return fmt.Errorf("namespace %q does not match file name %q", doc.Namespace, namespace)
	case len(doc.Messages) == 0:
		return errors.New("no messages")
	}

	texts := b.texts[locale]
	if texts == nil {
		texts = make(map[string]string)
		b.texts[locale] = texts
	}
	prefix := namespace + "."
	for key, text := range doc.Messages {
		key = strings.TrimSpace(key)
		if !strings.HasPrefix(key, prefix) || key == prefix {
			return fmt.Errorf("key %q must start with %q", key, prefix)
		}
		if _, dup := texts[key]; dup {
			return fmt.Errorf("key %q defined twice for %s", key, locale)
		}
		texts[key] = text
	}
	return nil
}

// Register installs every message into the x/text default catalog, under
// the regional tag and its bare language ("es-ES" and "es").
func (b *Bundle) Register() error {
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale %q: %w", locale, err)
		}
		tags := []language.Tag{tag}
		if base, conf := tag.Base(); conf != language.No {
			if bare := language.Make(base.String()); bare != tag {
				tags = append(tags, bare)
			}
		}
		for key, text := range b.texts[locale] {
			for _, t := range tags {
				if err := message.SetString(t, key, text); err != nil {
					return fmt.Errorf("register %s %q: %w", locale, key, err)
				}
			}
		}
	}
	return nil
}

// Locales lists the loaded locales in sorted order.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.texts))
}

// Lookup returns the text for key in locale, falling back to BaseLocale.
func (b *Bundle) Lookup(locale, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	if text, ok := b.texts[locale][key]; ok {
		return text, true
	}
	text, ok := b.texts[BaseLocale][key]
	return text, ok
}

// Missing lists the BaseLocale keys that locale leaves untranslated.
func (b *Bundle) Missing(locale string) []string {
	if b == nil {
		return nil
	}
	var out []string
	for key := range b.texts[BaseLocale] {
		if _, ok := b.texts[locale][key]; !ok {
			out = append(out, key)
		}
	}
	slices.Sort(out)
	return out
}
