// Package guest defines invitation records and their validation rules.
package guest

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
	"github.com/louisbranch/wedding.rsvp/internal/platform/id"
)

// Field limits.
const (
	MaxNameLength  = 120
	MaxPhoneLength = 20
	MaxEmailLength = 120
)

// Language is the two-letter language stored on a guest.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"

	// DefaultLanguage applies when a guest has no usable preference.
	DefaultLanguage = LanguageSpanish
)

// ParseLanguage normalizes raw into a supported language, falling back to
// DefaultLanguage.
func ParseLanguage(raw string) Language {
	value := strings.ToLower(strings.TrimSpace(raw))
	if len(value) > 2 {
		value = value[:2]
	}
	switch Language(value) {
	case LanguageEnglish:
		return LanguageEnglish
	case LanguageSpanish:
		return LanguageSpanish
	default:
		return DefaultLanguage
	}
}

// Guest is one invitation. Family invitations cover additional adults and
// children; plus-one invitations cover a single companion.
type Guest struct {
	ID          int64
	Name        string
	Phone       string
	Email       string
	Token       string
	Language    Language
	HasPlusOne  bool
	PlusOneUsed bool
	IsFamily    bool
	CreatedAt   time.Time
}

// NewToken returns a fresh RSVP link token.
func NewToken() (string, error) {
	return id.NewToken()
}

// Normalize trims fields and enforces the guest invariants.
func Normalize(g Guest) (Guest, error) {
	g.Name = strings.TrimSpace(g.Name)
	g.Phone = strings.TrimSpace(g.Phone)
	g.Email = strings.TrimSpace(g.Email)
	g.Token = strings.TrimSpace(g.Token)
	g.Language = ParseLanguage(string(g.Language))

	switch {
	case g.Name == "":
		return Guest{}, invalid("name is required")
	case utf8.RuneCountInString(g.Name) > MaxNameLength:
		return Guest{}, invalid("name is too long")
	case g.Phone == "":
		return Guest{}, invalid("phone is required")
	case utf8.RuneCountInString(g.Phone) > MaxPhoneLength:
		return Guest{}, invalid("phone is too long")
	case utf8.RuneCountInString(g.Email) > MaxEmailLength:
		return Guest{}, invalid("email is too long")
	case g.Email != "" && !validEmail(g.Email):
		return Guest{}, invalid("email is not valid")
	}
	return g, nil
}

func validEmail(value string) bool {
	local, domain, ok := strings.Cut(value, "@")
	return ok && local != "" && domain != "" && !strings.ContainsAny(value, " \t\r\n")
}

func invalid(reason string) error {
	return apperrors.WithArgs(apperrors.CodeGuestInvalid, reason, reason)
}
