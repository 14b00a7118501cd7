package rsvp

import (
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/allergen"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
)

// Form limits.
const (
	MaxHotelLength      = 200
	MaxAdditionalAdults = 10
	MaxChildren         = 10
)

// Form field names.
const (
	FieldAttending           = "is_attending"
	FieldHotelName           = "hotel_name"
	FieldTransportChurch     = "transport_to_church"
	FieldTransportReception  = "transport_to_reception"
	FieldTransportHotel      = "transport_to_hotel"
	FieldPlusOneName         = "plus_one_name"
	FieldAdultsCount         = "adults_count"
	FieldChildrenCount       = "children_count"
	AttendingYes             = "yes"
	AttendingNo              = "no"
	adultNameFieldPrefix     = "adult_name_"
	childNameFieldPrefix     = "child_name_"
	childNeedsMenuFieldStart = "child_needs_menu_"
)

// AdultNameField is the name field for the i-th additional adult.
func AdultNameField(i int) string {
	return adultNameFieldPrefix + strconv.Itoa(i)
}

// ChildNameField is the name field for the i-th child.
func ChildNameField(i int) string {
	return childNameFieldPrefix + strconv.Itoa(i)
}

// ChildNeedsMenuField is the menu checkbox for the i-th child.
func ChildNeedsMenuField(i int) string {
	return childNeedsMenuFieldStart + strconv.Itoa(i)
}

// Submission is a parsed RSVP form.
type Submission struct {
	values url.Values

	Empty                bool
	AttendanceSet        bool
	Attendance           string
	HotelName            string
	TransportToChurch    bool
	TransportToReception bool
	TransportToHotel     bool
	PlusOneName          string
	AdultsCount          string
	ChildrenCount        string
}

// ParseSubmission reads the RSVP form values.
func ParseSubmission(values url.Values) Submission {
	if values == nil {
		values = url.Values{}
	}
	_, attendanceSet := values[FieldAttending]
	return Submission{
		values:               values,
		Empty:                len(values) == 0,
		AttendanceSet:        attendanceSet,
		Attendance:           strings.TrimSpace(values.Get(FieldAttending)),
		HotelName:            strings.TrimSpace(values.Get(FieldHotelName)),
		TransportToChurch:    checked(values, FieldTransportChurch),
		TransportToReception: checked(values, FieldTransportReception),
		TransportToHotel:     checked(values, FieldTransportHotel),
		PlusOneName:          strings.TrimSpace(values.Get(FieldPlusOneName)),
		AdultsCount:          strings.TrimSpace(values.Get(FieldAdultsCount)),
		ChildrenCount:        strings.TrimSpace(values.Get(FieldChildrenCount)),
	}
}

// Attending reports whether the guest answered yes.
func (s Submission) Attending() bool {
	return s.Attendance == AttendingYes
}

// Values returns the raw form values for re-rendering.
func (s Submission) Values() url.Values {
	return s.values
}

// Allergens returns the selection for one attendee prefix.
func (s Submission) Allergens(prefix string) allergen.Selection {
	return allergen.SelectionFromForm(s.values, prefix)
}

// AdultName returns the trimmed name of the i-th additional adult.
func (s Submission) AdultName(i int) string {
	return strings.TrimSpace(s.values.Get(AdultNameField(i)))
}

// ChildName returns the trimmed name of the i-th child.
func (s Submission) ChildName(i int) string {
	return strings.TrimSpace(s.values.Get(ChildNameField(i)))
}

// Counts parses the family counts. Blank values mean zero.
func (s Submission) Counts() (adults, children int, err error) {
	adults, err = parseCount(s.AdultsCount)
	if err != nil {
		return 0, 0, err
	}
	children, err = parseCount(s.ChildrenCount)
	if err != nil {
		return 0, 0, err
	}
	return adults, children, nil
}

func parseCount(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func checked(values url.Values, name string) bool {
	raw, ok := values[name]
	if !ok {
		return false
	}
	for _, v := range raw {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "false", "0", "off":
		default:
			return true
		}
	}
	return false
}

// attendeePrefixes lists every allergen prefix the form may carry for g.
func attendeePrefixes(s Submission, g guest.Guest) []string {
	prefixes := []string{allergen.PrefixMain}
	if g.HasPlusOne && !g.IsFamily {
		prefixes = append(prefixes, allergen.PrefixPlusOne)
	}
	if g.IsFamily {
		adults, children, err := s.Counts()
		if err == nil {
			for i := 0; i < adults && i < MaxAdditionalAdults; i++ {
				prefixes = append(prefixes, allergen.AdultPrefix(i))
			}
			for i := 0; i < children && i < MaxChildren; i++ {
				prefixes = append(prefixes, allergen.ChildPrefix(i))
			}
		}
	}
	return prefixes
}

// Apply builds the next RSVP state from a validated submission. It returns
// the guest too since using a plus-one is recorded on the invitation.
// Resubmitting replaces every additional guest and allergen and clears a
// previous cancellation.
func Apply(existing *RSVP, sub Submission, g guest.Guest, known map[int64]string, now time.Time) (RSVP, guest.Guest) {
	next := RSVP{GuestID: g.ID, CreatedAt: now}
	if existing != nil {
		next.ID = existing.ID
		next.CreatedAt = existing.CreatedAt
	}
	next.IsAttending = sub.Attending()
	next.LastUpdated = now

	if !next.IsAttending {
		return next, g
	}

	next.HotelName = sub.HotelName
	next.TransportToChurch = sub.TransportToChurch
	next.TransportToReception = sub.TransportToReception
	next.TransportToHotel = sub.TransportToHotel
	next.Allergens = append(next.Allergens, allergen.Resolve(sub.Allergens(allergen.PrefixMain), g.Name, known)...)

	if g.HasPlusOne && !g.IsFamily {
		g.PlusOneUsed = sub.PlusOneName != ""
		if sub.PlusOneName != "" {
			next.PlusOneName = sub.PlusOneName
			next.AdditionalGuests = append(next.AdditionalGuests, AdditionalGuest{Name: sub.PlusOneName})
			next.Allergens = append(next.Allergens, allergen.Resolve(sub.Allergens(allergen.PrefixPlusOne), sub.PlusOneName, known)...)
		}
	}

	if g.IsFamily {
		adults, children, err := sub.Counts()
		if err != nil {
			adults, children = 0, 0
		}
		next.AdultsCount = adults
		next.ChildrenCount = children
		for i := 0; i < adults; i++ {
			name := sub.AdultName(i)
			if name == "" {
				continue
			}
			next.AdditionalGuests = append(next.AdditionalGuests, AdditionalGuest{Name: name})
			next.Allergens = append(next.Allergens, allergen.Resolve(sub.Allergens(allergen.AdultPrefix(i)), name, known)...)
		}
		for i := 0; i < children; i++ {
			name := sub.ChildName(i)
			if name == "" {
				continue
			}
			next.AdditionalGuests = append(next.AdditionalGuests, AdditionalGuest{
				Name:      name,
				IsChild:   true,
				NeedsMenu: checked(sub.values, ChildNeedsMenuField(i)),
			})
			next.Allergens = append(next.Allergens, allergen.Resolve(sub.Allergens(allergen.ChildPrefix(i)), name, known)...)
		}
	}
	return next, g
}

func tooLong(value string, limit int) bool {
	return utf8.RuneCountInString(value) > limit
}

// FormValues encodes a stored reply back into form fields so it can be
// edited. Attendance is left blank for a cancelled reply.
func FormValues(r RSVP, g guest.Guest) url.Values {
	values := url.Values{}
	switch r.Status() {
	case StatusAttending:
		values.Set(FieldAttending, AttendingYes)
	case StatusDeclined:
		values.Set(FieldAttending, AttendingNo)
	}
	if r.HotelName != "" {
		values.Set(FieldHotelName, r.HotelName)
	}
	setChecked(values, FieldTransportChurch, r.TransportToChurch)
	setChecked(values, FieldTransportReception, r.TransportToReception)
	setChecked(values, FieldTransportHotel, r.TransportToHotel)
	addAllergens(values, allergen.PrefixMain, allergen.ForGuest(r.Allergens, g.Name))

	if g.HasPlusOne && !g.IsFamily && r.PlusOneName != "" {
		values.Set(FieldPlusOneName, r.PlusOneName)
		addAllergens(values, allergen.PrefixPlusOne, allergen.ForGuest(r.Allergens, r.PlusOneName))
	}
	if g.IsFamily {
		adults, children := r.Adults(), r.Children()
		values.Set(FieldAdultsCount, strconv.Itoa(len(adults)))
		values.Set(FieldChildrenCount, strconv.Itoa(len(children)))
		for i, a := range adults {
			values.Set(AdultNameField(i), a.Name)
			addAllergens(values, allergen.AdultPrefix(i), allergen.ForGuest(r.Allergens, a.Name))
		}
		for i, c := range children {
			values.Set(ChildNameField(i), c.Name)
			setChecked(values, ChildNeedsMenuField(i), c.NeedsMenu)
			addAllergens(values, allergen.ChildPrefix(i), allergen.ForGuest(r.Allergens, c.Name))
		}
	}
	return values
}

func setChecked(values url.Values, name string, on bool) {
	if on {
		values.Set(name, "on")
	}
}

func addAllergens(values url.Values, prefix string, records []allergen.GuestAllergen) {
	for _, record := range records {
		if record.AllergenID != nil {
			values.Add(allergen.FieldName(prefix), strconv.FormatInt(*record.AllergenID, 10))
			continue
		}
		values.Set(allergen.CustomFieldName(prefix), record.Custom)
	}
}
