package templates

import (
	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/calendar"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/report"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/rsvp"
)

// DashboardView is the admin landing page.
type DashboardView struct {
	Dashboard report.Dashboard
	// RSVPLink builds the shareable link of a guest token.
	RSVPLink func(token string) string
}

func (v DashboardView) link(token string) string {
	if v.RSVPLink == nil {
		return routepath.RSVPForm(token)
	}
	return v.RSVPLink(token)
}

// guestColumns are the heading keys of the dashboard guest table.
var guestColumns = []string{
	"admin.field.name", "admin.field.phone", "admin.field.email", "admin.field.language",
	"admin.field.status", "admin.field.guests", "admin.field.hotel", "admin.field.updated",
	"admin.guests.link",
}

func rowUpdated(row report.Row) string {
	if row.LastUpdated == nil {
		return ""
	}
	return calendar.FormatDateTime(*row.LastUpdated)
}

// StatusLabel localizes a reply status.
func StatusLabel(status rsvp.Status, loc Localizer) string {
	return T(loc, "admin.status."+string(status))
}

// GuestFormView backs the add and edit guest pages.
type GuestFormView struct {
	Guest guest.Guest
	IsNew bool
	Error string
}

func (v GuestFormView) title(loc Localizer) string {
	if v.IsNew {
		return T(loc, "admin.guests.add")
	}
	return T(loc, "admin.guests.edit")
}

func (v GuestFormView) action() string {
	if v.IsNew {
		return routepath.AdminGuests
	}
	return routepath.AdminGuest(v.Guest.ID)
}

var guestLanguages = []guest.Language{guest.LanguageSpanish, guest.LanguageEnglish}
