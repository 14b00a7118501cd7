package templates

import (
	"fmt"

	"github.com/louisbranch/wedding.rsvp/internal/services/web/routepath"
	weddingapp "github.com/louisbranch/wedding.rsvp/internal/services/wedding/app"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
)

// groupHeading labels a report group with its size.
func groupHeading(name string, n int) string {
	return fmt.Sprintf("%s (%d)", name, n)
}

func countHeading(heading string, n int) string {
	return fmt.Sprintf("%s: %d", heading, n)
}

// PendingView lists invitations without a reply.
type PendingView struct {
	Guests   []guest.Guest
	RSVPLink func(token string) string
}

func (v PendingView) link(token string) string {
	if v.RSVPLink == nil {
		return routepath.RSVPForm(token)
	}
	return v.RSVPLink(token)
}

// RemindersView is the reminder dashboard.
type RemindersView struct {
	Statistics weddingapp.Statistics
	Schedule   weddingapp.ScheduleStatus
	// Guests are the invitations a manual reminder can go to.
	Guests []guest.Guest
}

// manualLabel names a guest in the manual reminder list, flagging those
// without an email address.
func manualLabel(g guest.Guest, loc Localizer) string {
	if g.Email == "" {
		return g.Name + " (" + T(loc, "admin.reminders.no_email") + ")"
	}
	return g.Name
}
