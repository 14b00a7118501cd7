package templates

import (
	"fmt"
	"time"

	"golang.org/x/text/message"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/calendar"
)

// Localizer is satisfied by *message.Printer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// T translates key. Without a localizer a string key is formatted as-is so
// tests and previews still read sensibly.
func T(loc Localizer, key message.Reference, args ...any) string {
	if loc != nil {
		return loc.Sprintf(key, args...)
	}
	format, ok := key.(string)
	switch {
	case !ok:
		return ""
	case len(args) == 0:
		return format
	default:
		return fmt.Sprintf(format, args...)
	}
}

// Date formats a calendar day in the page language.
func Date(lang string, t time.Time) string {
	return calendar.FormatDate(t, lang)
}
