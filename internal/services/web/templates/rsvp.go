package templates

import (
	"net/url"
	"strconv"
	"time"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/allergen"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/rsvp"
)

// RSVPFormView is the personal RSVP page.
type RSVPFormView struct {
	Guest      guest.Guest
	Deadline   time.Time
	AdminPhone string
	Allergens  []allergen.Allergen
	// Values holds the submitted or stored answers.
	Values   url.Values
	Problems []rsvp.Problem
	Summary  rsvp.Summary
	Editable bool
}

func (v RSVPFormView) values() url.Values {
	if v.Values == nil {
		return url.Values{}
	}
	return v.Values
}

func (v RSVPFormView) submitKey() string {
	if v.Summary.HasRSVP {
		return "rsvp.form.update"
	}
	return "rsvp.form.submit"
}

// canCancel reports whether the cancel form is offered: an editable,
// stored reply that is not already cancelled.
func (v RSVPFormView) canCancel() bool {
	return v.Editable && v.Summary.HasRSVP && v.Summary.Status != rsvp.StatusCancelled
}

func (v RSVPFormView) showPlusOne() bool {
	return v.Guest.HasPlusOne && !v.Guest.IsFamily
}

func formCount(raw string, limit int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return min(n, limit)
}

func numbered(label string, i int) string {
	return label + " " + strconv.Itoa(i+1)
}
