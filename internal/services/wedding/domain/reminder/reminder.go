// Package reminder models RSVP reminder schedules, delivery history and
// guest preferences.
package reminder

import (
	"strconv"
	"strings"
	"time"
)

// Type identifies which reminder was sent.
type Type string

const (
	TypeInitial Type = "initial"
	TypeFirst   Type = "first"
	TypeSecond  Type = "second"
	TypeFinal   Type = "final"
	TypeManual  Type = "manual"
)

// Scheduled lists the automatic reminder types in send order.
var Scheduled = []Type{TypeInitial, TypeFirst, TypeSecond, TypeFinal}

// DefaultMaxReminders caps how many reminders one guest receives.
const DefaultMaxReminders = 4

// Senders recorded on history rows and batches.
const (
	SentBySystem    = "system"
	ExecutedByCron  = "scheduler"
	ExecutedByAdmin = "admin"
)

// DaysBefore returns how many days before the deadline t is sent. Manual
// and unknown types report false.
func (t Type) DaysBefore() (int, bool) {
	switch t {
	case TypeInitial:
		return 30, true
	case TypeFirst:
		return 14, true
	case TypeSecond:
		return 7, true
	case TypeFinal:
		return 3, true
	default:
		return 0, false
	}
}

// Number returns the 1-based position of a scheduled type, or 0.
func (t Type) Number() int {
	for i, s := range Scheduled {
		if s == t {
			return i + 1
		}
	}
	return 0
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return t == TypeManual || t.Number() > 0
}

// SubjectKey is the catalog key of the email subject.
func (t Type) SubjectKey() string {
	return "email.reminder.subject." + string(t)
}

// ParseType normalizes a stored or submitted type.
func ParseType(raw string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	return t, t.Valid()
}

// FromNumber maps 1..4 to the scheduled type.
func FromNumber(n int) (Type, bool) {
	if n < 1 || n > len(Scheduled) {
		return "", false
	}
	return Scheduled[n-1], true
}

// ForDay returns the scheduled type due on today, if any. Both dates are
// compared as calendar days.
func ForDay(deadline, today time.Time) (Type, bool) {
	days := daysBetween(today, deadline)
	for _, t := range Scheduled {
		if before, _ := t.DaysBefore(); before == days {
			return t, true
		}
	}
	return "", false
}

// Date is one scheduled reminder and the day it goes out.
type Date struct {
	Type       Type
	Number     int
	Day        time.Time
	DaysBefore int
}

// Key is the JSON key used by the cron endpoints.
func (d Date) Key() string {
	return "reminder_" + strconv.Itoa(d.Number)
}

// ScheduleFrom lists the send dates for deadline.
func ScheduleFrom(deadline time.Time) []Date {
	out := make([]Date, 0, len(Scheduled))
	for i, t := range Scheduled {
		before, _ := t.DaysBefore()
		out = append(out, Date{
			Type:       t,
			Number:     i + 1,
			Day:        deadline.AddDate(0, 0, -before),
			DaysBefore: before,
		})
	}
	return out
}

func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// Status is the delivery state of one history row.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// History is one reminder delivery attempt.
type History struct {
	ID        int64
	GuestID   int64
	Type      Type
	Status    Status
	SentTo    string
	Subject   string
	Error     string
	SentBy    string
	Notes     string
	CreatedAt time.Time
	SentAt    *time.Time
}

// MarkSent records a successful delivery at.
func (h History) MarkSent(at time.Time) History {
	h.Status = StatusSent
	h.SentAt = &at
	h.Error = ""
	return h
}

// MarkFailed records a failed delivery.
func (h History) MarkFailed(reason string) History {
	h.Status = StatusFailed
	h.Error = reason
	return h
}

// BatchKind distinguishes cron runs from admin-triggered runs.
type BatchKind string

const (
	BatchScheduled BatchKind = "scheduled"
	BatchManual    BatchKind = "manual"
)

// KindFor derives the batch kind from who executed it.
func KindFor(executedBy string) BatchKind {
	if executedBy == ExecutedByCron {
		return BatchScheduled
	}
	return BatchManual
}

// Batch summarizes one run over many guests.
type Batch struct {
	ID          int64
	Kind        BatchKind
	Type        Type
	ExecutedBy  string
	DaysBefore  int
	Total       int
	Sent        int
	Failed      int
	Skipped     int
	StartedAt   time.Time
	CompletedAt *time.Time
}

// SuccessRate is the sent share of the batch in percent.
func (b Batch) SuccessRate() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Sent) / float64(b.Total) * 100
}

// Preference tracks how many reminders a guest got and whether they want
// more.
type Preference struct {
	GuestID      int64
	OptOut       bool
	MaxReminders int
	TotalSent    int
	LastSentAt   *time.Time
}

// DefaultPreference is used for guests without a stored preference.
func DefaultPreference(guestID int64) Preference {
	return Preference{GuestID: guestID, MaxReminders: DefaultMaxReminders}
}

// CanSend reports whether another reminder is allowed.
func (p Preference) CanSend() bool {
	return !p.OptOut && p.TotalSent < p.MaxReminders
}

// Candidate is what eligibility needs to know about one guest.
type Candidate struct {
	GuestID    int64
	Email      string
	HasRSVP    bool
	Cancelled  bool
	Preference Preference
	// AlreadySent is true when this type was delivered before.
	AlreadySent bool
}

// Awaiting reports whether the guest still owes a reply.
func (c Candidate) Awaiting() bool {
	return !c.HasRSVP || c.Cancelled
}

// Eligible reports whether c should get a reminder of a scheduled type.
func Eligible(c Candidate) bool {
	return c.Awaiting() &&
		!c.AlreadySent &&
		c.Preference.CanSend() &&
		strings.TrimSpace(c.Email) != ""
}
