package guest

import (
	"strings"
	"testing"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
)

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	tests := map[string]Language{
		"en":    LanguageEnglish,
		" EN ":  LanguageEnglish,
		"en-GB": LanguageEnglish,
		"es":    LanguageSpanish,
		"es-MX": LanguageSpanish,
		"pt":    DefaultLanguage,
		"":      DefaultLanguage,
	}
	for raw, want := range tests {
		if got := ParseLanguage(raw); got != want {
			t.Fatalf("ParseLanguage(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeTrimsAndDefaults(t *testing.T) {
	t.Parallel()

	got, err := Normalize(Guest{Name: "  Ana García ", Phone: " 600 123 456 ", Email: " ana@example.com "})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.Name != "Ana García" {
		t.Fatalf("Name = %q, want %q", got.Name, "Ana García")
	}
	if got.Phone != "600 123 456" {
		t.Fatalf("Phone = %q, want %q", got.Phone, "600 123 456")
	}
	if got.Email != "ana@example.com" {
		t.Fatalf("Email = %q, want %q", got.Email, "ana@example.com")
	}
	if got.Language != LanguageSpanish {
		t.Fatalf("Language = %q, want %q", got.Language, LanguageSpanish)
	}
}

func TestNormalizeRejectsInvalidGuests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		guest Guest
	}{
		{name: "missing name", guest: Guest{Phone: "1"}},
		{name: "missing phone", guest: Guest{Name: "Ana"}},
		{name: "long name", guest: Guest{Name: strings.Repeat("a", MaxNameLength+1), Phone: "1"}},
		{name: "long phone", guest: Guest{Name: "Ana", Phone: strings.Repeat("1", MaxPhoneLength+1)}},
		{name: "bad email", guest: Guest{Name: "Ana", Phone: "1", Email: "ana.example.com"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Normalize(tc.guest)
			if apperrors.CodeOf(err) != apperrors.CodeGuestInvalid {
				t.Fatalf("CodeOf(err) = %q, want %q", apperrors.CodeOf(err), apperrors.CodeGuestInvalid)
			}
		})
	}
}

func TestNormalizeCountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	name := strings.Repeat("ñ", MaxNameLength)
	if _, err := Normalize(Guest{Name: name, Phone: "1"}); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
}

func TestNewToken(t *testing.T) {
	t.Parallel()

	a, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	b, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct tokens")
	}
}
