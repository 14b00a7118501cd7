// Package i18n defines the languages the site is published in.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale identifiers used by catalog directories.
const (
	LocaleEnglish = "en-US"
	LocaleSpanish = "es-ES"
)

var (
	supportedTags = []language.Tag{language.Spanish, language.English}
	matcher       = language.NewMatcher(supportedTags)
)

// SupportedTags returns the supported language tags, default first.
func SupportedTags() []language.Tag {
	out := make([]language.Tag, len(supportedTags))
	copy(out, supportedTags)
	return out
}

// DefaultTag returns the default language tag.
func DefaultTag() language.Tag {
	return language.Spanish
}

// ParseTag parses a language value and reports whether it maps to a
// supported language. Regional variants ("es-MX", "en-GB") collapse to the
// base language.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Und, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, false
	}
	base, _ := tag.Base()
	for _, supported := range supportedTags {
		supportedBase, _ := supported.Base()
		if base == supportedBase {
			return supported, true
		}
	}
	return language.Und, false
}

// MatchTags picks the best supported tag for the preference list.
func MatchTags(tags []language.Tag) language.Tag {
	if len(tags) == 0 {
		return DefaultTag()
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultTag()
	}
	return supportedTags[index]
}

// Code returns the two-letter code stored on guest records.
func Code(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// LocaleForTag maps a tag to its catalog locale.
func LocaleForTag(tag language.Tag) string {
	if Code(tag) == "en" {
		return LocaleEnglish
	}
	return LocaleSpanish
}
