// Package calendar holds the wedding date rules shared by the RSVP workflow,
// reminders and page rendering.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the configuration and storage format for calendar days.
const DateLayout = "2006-01-02"

// DefaultEditCutoff is how long before the wedding RSVPs stop being editable.
const DefaultEditCutoff = 7 * 24 * time.Hour

// Calendar carries the configured wedding dates.
type Calendar struct {
	WeddingDate  time.Time
	RSVPDeadline time.Time
	EditCutoff   time.Duration
	Location     *time.Location
}

// Parse builds a Calendar from YYYY-MM-DD strings interpreted in loc.
func Parse(weddingDate, rsvpDeadline string, loc *time.Location) (Calendar, error) {
	if loc == nil {
		loc = time.Local
	}
	wedding, err := time.ParseInLocation(DateLayout, strings.TrimSpace(weddingDate), loc)
	if err != nil {
		return Calendar{}, fmt.Errorf("parse wedding date %q: %w", weddingDate, err)
	}
	deadline, err := time.ParseInLocation(DateLayout, strings.TrimSpace(rsvpDeadline), loc)
	if err != nil {
		return Calendar{}, fmt.Errorf("parse rsvp deadline %q: %w", rsvpDeadline, err)
	}
	return Calendar{
		WeddingDate:  wedding,
		RSVPDeadline: deadline,
		EditCutoff:   DefaultEditCutoff,
		Location:     loc,
	}, nil
}

// Day truncates t to midnight of its calendar day in the calendar location.
func (c Calendar) Day(t time.Time) time.Time {
	loc := c.location()
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DeadlinePassed reports whether the calendar day of now is after the
// deadline day. The deadline day itself is still open.
func (c Calendar) DeadlinePassed(now time.Time) bool {
	if c.RSVPDeadline.IsZero() {
		return false
	}
	return c.Day(now).After(c.Day(c.RSVPDeadline))
}

// Editable reports whether an existing RSVP may still change.
func (c Calendar) Editable(now time.Time) bool {
	if c.WeddingDate.IsZero() {
		return true
	}
	cutoff := c.EditCutoff
	if cutoff <= 0 {
		cutoff = DefaultEditCutoff
	}
	return now.Before(c.WeddingDate.Add(-cutoff))
}

// DaysUntilDeadline counts calendar days from today to the deadline.
// Negative once the deadline is behind.
func (c Calendar) DaysUntilDeadline(today time.Time) int {
	return DaysBetween(c.Day(today), c.Day(c.RSVPDeadline))
}

// DaysBetween counts whole calendar days from a to b, ignoring DST shifts.
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDate renders a calendar day for display in lang ("en" or "es").
func FormatDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(lang)), "en") {
		return t.Format("January 2, 2006")
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// FormatDateTime renders a timestamp as YYYY-MM-DD HH:MM.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
