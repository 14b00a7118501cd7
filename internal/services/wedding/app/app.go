// Package app holds the wedding use-cases shared by the web handlers and
// the operator CLI.
package app

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/message"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
	"github.com/louisbranch/wedding.rsvp/internal/platform/i18n"
	"github.com/louisbranch/wedding.rsvp/internal/platform/i18n/catalog"
	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
	"github.com/louisbranch/wedding.rsvp/internal/platform/telemetry/metrics"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/calendar"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/notify"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/storage"
)

// Settings are the site facts shown to guests and used in emails.
type Settings struct {
	Title         string
	AdminPhone    string
	AdminEmail    string
	PublicBaseURL string
}

// RSVPLink builds the absolute link of a guest's RSVP page.
func (s Settings) RSVPLink(token string) string {
	base := strings.TrimRight(strings.TrimSpace(s.PublicBaseURL), "/")
	return base + "/rsvp/" + url.PathEscape(token)
}

// Deps wires the services.
type Deps struct {
	Store    storage.Store
	Calendar calendar.Calendar
	Settings Settings
	Sender   notify.Sender
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	Clock    func() time.Time
}

func (d Deps) normalized() Deps {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	d.Logger = logging.OrNop(d.Logger)
	if d.Sender == nil {
		d.Sender = notify.NewLogSender(d.Logger)
	}
	return d
}

func (d Deps) now() time.Time {
	loc := d.Calendar.Location
	if loc == nil {
		loc = time.UTC
	}
	return d.Clock().In(loc)
}

// Services groups every use-case.
type Services struct {
	RSVP      *RSVPService
	Guests    *GuestService
	Allergens *AllergenService
	Reports   *ReportService
	Reminders *ReminderService
}

// New builds all services from deps.
func New(deps Deps) *Services {
	deps = deps.normalized()
	return &Services{
		RSVP:      &RSVPService{deps: deps},
		Guests:    &GuestService{deps: deps},
		Allergens: &AllergenService{deps: deps},
		Reports:   &ReportService{deps: deps},
		Reminders: &ReminderService{deps: deps},
	}
}

// printerFor returns the catalog printer of a guest language.
func printerFor(lang guest.Language) *message.Printer {
	tag, ok := i18n.ParseTag(string(lang))
	if !ok {
		tag = i18n.DefaultTag()
	}
	return catalog.Printer(tag)
}

func defaultPrinter() *message.Printer {
	return catalog.Printer(i18n.DefaultTag())
}

// guestNotFound maps storage misses to the guest error code.
func guestNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.Wrap(apperrors.CodeGuestNotFound, "guest not found", err)
	}
	return err
}
