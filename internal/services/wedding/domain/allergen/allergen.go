// Package allergen models dietary restrictions and their form encoding.
package allergen

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
)

// Field limits.
const (
	MaxNameLength   = 50
	MaxCustomLength = 100
)

// Form prefixes identifying whose restrictions a field carries.
const (
	PrefixMain    = "main"
	PrefixPlusOne = "plus_one"
)

// DefaultNames is the standard list offered on the RSVP form.
var DefaultNames = []string{
	"Gluten",
	"Dairy",
	"Nuts (Tree nuts)",
	"Peanuts",
	"Soy",
	"Eggs",
	"Fish",
	"Shellfish",
	"Celery",
	"Mustard",
	"Sesame",
	"Sulphites",
	"Lupins",
	"Molluscs",
	"Vegetarian",
	"Vegan",
	"Kosher",
	"Halal",
}

// Allergen is one selectable restriction.
type Allergen struct {
	ID   int64
	Name string
}

// GuestAllergen links a named attendee on an RSVP to a restriction. Exactly
// one of AllergenID and Custom is set.
type GuestAllergen struct {
	RSVPID     int64
	GuestName  string
	AllergenID *int64
	Custom     string
	// Name is the resolved allergen name, filled on reads.
	Name string
}

// Label returns the display text for the restriction.
func (g GuestAllergen) Label() string {
	if g.AllergenID != nil {
		return g.Name
	}
	return g.Custom
}

// NormalizeName validates an allergen name.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", apperrors.WithArgs(apperrors.CodeInvalidInput, "invalid allergen name", name)
	}
	return name, nil
}

// AdultPrefix returns the form prefix for the i-th additional adult.
func AdultPrefix(i int) string {
	return "adult_" + strconv.Itoa(i)
}

// ChildPrefix returns the form prefix for the i-th child.
func ChildPrefix(i int) string {
	return "child_" + strconv.Itoa(i)
}

// FieldName is the multi-valued checkbox field for prefix.
func FieldName(prefix string) string {
	return "allergens_" + prefix
}

// CustomFieldName is the free-text field for prefix.
func CustomFieldName(prefix string) string {
	return "custom_allergen_" + prefix
}

// Selection is what one attendee ticked on the form.
type Selection struct {
	IDs    []int64
	Custom string
}

// Empty reports whether nothing was selected.
func (s Selection) Empty() bool {
	return len(s.IDs) == 0 && s.Custom == ""
}

// Has reports whether id is part of the selection.
func (s Selection) Has(id int64) bool {
	for _, selected := range s.IDs {
		if selected == id {
			return true
		}
	}
	return false
}

// SelectionFromForm reads the fields for prefix. Values that are not
// positive integers are dropped and duplicates collapse.
func SelectionFromForm(values url.Values, prefix string) Selection {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, raw := range values[FieldName(prefix)] {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return Selection{IDs: ids, Custom: strings.TrimSpace(values.Get(CustomFieldName(prefix)))}
}

// Resolve turns a selection into records for guestName. IDs missing from
// known are ignored.
func Resolve(sel Selection, guestName string, known map[int64]string) []GuestAllergen {
	var out []GuestAllergen
	for _, id := range sel.IDs {
		name, ok := known[id]
		if !ok {
			continue
		}
		allergenID := id
		out = append(out, GuestAllergen{GuestName: guestName, AllergenID: &allergenID, Name: name})
	}
	if sel.Custom != "" {
		out = append(out, GuestAllergen{GuestName: guestName, Custom: sel.Custom})
	}
	return out
}

// Index maps allergen ids to names.
func Index(list []Allergen) map[int64]string {
	out := make(map[int64]string, len(list))
	for _, a := range list {
		out[a.ID] = a.Name
	}
	return out
}

// ForGuest filters records belonging to guestName.
func ForGuest(records []GuestAllergen, guestName string) []GuestAllergen {
	var out []GuestAllergen
	for _, r := range records {
		if r.GuestName == guestName {
			out = append(out, r)
		}
	}
	return out
}
