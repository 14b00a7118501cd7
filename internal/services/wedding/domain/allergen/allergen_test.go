package allergen

import (
	"net/url"
	"strings"
	"testing"
)

func TestPrefixes(t *testing.T) {
	t.Parallel()

	if got := FieldName(AdultPrefix(2)); got != "allergens_adult_2" {
		t.Fatalf("FieldName = %q", got)
	}
	if got := CustomFieldName(ChildPrefix(0)); got != "custom_allergen_child_0" {
		t.Fatalf("CustomFieldName = %q", got)
	}
	if got := FieldName(PrefixPlusOne); got != "allergens_plus_one" {
		t.Fatalf("FieldName = %q", got)
	}
}

func TestSelectionFromFormDropsJunk(t *testing.T) {
	t.Parallel()

	values := url.Values{
		"allergens_main":       {"3", "1", "x", "-4", "3", " 2 "},
		"custom_allergen_main": {"  kiwi "},
	}
	sel := SelectionFromForm(values, PrefixMain)
	if len(sel.IDs) != 3 || sel.IDs[0] != 1 || sel.IDs[1] != 2 || sel.IDs[2] != 3 {
		t.Fatalf("IDs = %v, want [1 2 3]", sel.IDs)
	}
	if sel.Custom != "kiwi" {
		t.Fatalf("Custom = %q, want %q", sel.Custom, "kiwi")
	}
	if !sel.Has(2) || sel.Has(7) {
		t.Fatal("Has mismatch")
	}
}

func TestResolveIgnoresUnknownIDs(t *testing.T) {
	t.Parallel()

	known := Index([]Allergen{{ID: 1, Name: "Gluten"}, {ID: 2, Name: "Dairy"}})
	records := Resolve(Selection{IDs: []int64{1, 99}, Custom: "kiwi"}, "Ana", known)
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].AllergenID == nil || *records[0].AllergenID != 1 || records[0].Label() != "Gluten" {
		t.Fatalf("unexpected standard record: %+v", records[0])
	}
	if records[1].AllergenID != nil || records[1].Label() != "kiwi" || records[1].GuestName != "Ana" {
		t.Fatalf("unexpected custom record: %+v", records[1])
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	if got, err := NormalizeName("  Sesame "); err != nil || got != "Sesame" {
		t.Fatalf("NormalizeName = %q, %v", got, err)
	}
	if _, err := NormalizeName(strings.Repeat("x", MaxNameLength+1)); err == nil {
		t.Fatal("expected error for long name")
	}
	if _, err := NormalizeName(" "); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestDefaultNamesAreValid(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, name := range DefaultNames {
		if _, err := NormalizeName(name); err != nil {
			t.Fatalf("NormalizeName(%q): %v", name, err)
		}
		if seen[name] {
			t.Fatalf("duplicate %q", name)
		}
		seen[name] = true
	}
	if len(DefaultNames) != 18 {
		t.Fatalf("len(DefaultNames) = %d, want 18", len(DefaultNames))
	}
}
