// Package rsvp holds the RSVP state and the rules that move it from one
// submission to the next.
package rsvp

import (
	"time"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/allergen"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/calendar"
)

// Status is the derived reply state of a guest.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAttending Status = "attending"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
)

// AdditionalGuest is a plus-one or family member attending with the guest.
type AdditionalGuest struct {
	Name      string
	IsChild   bool
	NeedsMenu bool
}

// RSVP is a guest's reply. AdultsCount and ChildrenCount count people
// beyond the invited guest and only apply to family invitations.
type RSVP struct {
	ID                   int64
	GuestID              int64
	IsAttending          bool
	IsCancelled          bool
	AdultsCount          int
	ChildrenCount        int
	PlusOneName          string
	HotelName            string
	TransportToChurch    bool
	TransportToReception bool
	TransportToHotel     bool
	CreatedAt            time.Time
	LastUpdated          time.Time
	CancelledAt          *time.Time
	AdditionalGuests     []AdditionalGuest
	Allergens            []allergen.GuestAllergen
}

// Status derives the reply state.
func (r RSVP) Status() Status {
	switch {
	case r.IsCancelled:
		return StatusCancelled
	case r.IsAttending:
		return StatusAttending
	default:
		return StatusDeclined
	}
}

// Attending reports whether the RSVP counts towards headcount.
func (r RSVP) Attending() bool {
	return r.IsAttending && !r.IsCancelled
}

// GuestCount is the number of people covered by an attending RSVP.
func (r RSVP) GuestCount() int {
	if !r.Attending() {
		return 0
	}
	return 1 + len(r.AdditionalGuests)
}

// NeedsTransport reports whether any transport leg was requested.
func (r RSVP) NeedsTransport() bool {
	return r.TransportToChurch || r.TransportToReception || r.TransportToHotel
}

// Adults returns the additional guests who are not children.
func (r RSVP) Adults() []AdditionalGuest {
	var out []AdditionalGuest
	for _, g := range r.AdditionalGuests {
		if !g.IsChild {
			out = append(out, g)
		}
	}
	return out
}

// Children returns the additional guests who are children.
func (r RSVP) Children() []AdditionalGuest {
	var out []AdditionalGuest
	for _, g := range r.AdditionalGuests {
		if g.IsChild {
			out = append(out, g)
		}
	}
	return out
}

// StatusOf returns the status for an optional RSVP.
func StatusOf(r *RSVP) Status {
	if r == nil {
		return StatusPending
	}
	return r.Status()
}

// Cancel marks the RSVP cancelled at now.
func Cancel(r RSVP, now time.Time) RSVP {
	r.IsCancelled = true
	r.IsAttending = false
	cancelledAt := now
	r.CancelledAt = &cancelledAt
	r.LastUpdated = now
	return r
}

// Summary is the reply overview shown to a guest.
type Summary struct {
	HasRSVP     bool
	Status      Status
	Editable    bool
	GuestCount  int
	LastUpdated time.Time
}

// SummaryOf builds the overview for an optional RSVP.
func SummaryOf(r *RSVP, cal calendar.Calendar, now time.Time) Summary {
	if r == nil {
		return Summary{Status: StatusPending, Editable: !cal.DeadlinePassed(now)}
	}
	return Summary{
		HasRSVP:     true,
		Status:      r.Status(),
		Editable:    cal.Editable(now),
		GuestCount:  r.GuestCount(),
		LastUpdated: r.LastUpdated,
	}
}
