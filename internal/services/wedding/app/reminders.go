package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
	"github.com/louisbranch/wedding.rsvp/internal/platform/otel"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/calendar"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/reminder"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/rsvp"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/notify"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/storage"
)

var reminderTracer = otel.Tracer("wedding/reminders")

// recentBatchLimit caps the batches shown in statistics.
const recentBatchLimit = 10

// Detail outcome values.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
	OutcomeDryRun  = "dry_run"
)

// ReminderService sends RSVP reminders by email.
type ReminderService struct {
	deps Deps
}

// Detail is the outcome for one guest.
type Detail struct {
	GuestID int64
	Guest   string
	Phone   string
	Status  string
	Message string
}

// SendResult summarizes a batch or manual send.
type SendResult struct {
	Batch   reminder.Batch
	Total   int
	Sent    int
	Failed  int
	Skipped int
	Details []Detail
}

func (r *SendResult) add(d Detail) {
	switch d.Status {
	case OutcomeSent, OutcomeDryRun:
		r.Sent++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
	r.Details = append(r.Details, d)
}

// Eligible lists the guests due a reminder of type t.
func (s *ReminderService) Eligible(ctx context.Context, t reminder.Type) ([]guest.Guest, error) {
	guests, err := s.deps.Store.ListGuests(ctx)
	if err != nil {
		return nil, err
	}
	replies, err := s.deps.Store.ListRSVPs(ctx)
	if err != nil {
		return nil, err
	}
	sent, err := s.deps.Store.SentTypes(ctx, t)
	if err != nil {
		return nil, err
	}
	prefs, err := s.deps.Store.ListPreferences(ctx)
	if err != nil {
		return nil, err
	}
	type replyState struct{ cancelled bool }
	byGuest := make(map[int64]replyState, len(replies))
	for _, r := range replies {
		byGuest[r.GuestID] = replyState{cancelled: r.IsCancelled}
	}

	var out []guest.Guest
	for _, g := range guests {
		pref, ok := prefs[g.ID]
		if !ok {
			pref = reminder.DefaultPreference(g.ID)
		}
		state, hasRSVP := byGuest[g.ID]
		candidate := reminder.Candidate{
			GuestID:     g.ID,
			Email:       g.Email,
			HasRSVP:     hasRSVP,
			Cancelled:   state.cancelled,
			Preference:  pref,
			AlreadySent: sent[g.ID],
		}
		if reminder.Eligible(candidate) {
			out = append(out, g)
		}
	}
	return out, nil
}

// SendBatch reminds every eligible guest. A dry run records nothing and
// sends nothing.
func (s *ReminderService) SendBatch(ctx context.Context, t reminder.Type, executedBy string, dryRun bool) (SendResult, error) {
	ctx, span := reminderTracer.Start(ctx, "reminders.batch")
	defer span.End()
	span.SetAttributes(attribute.String("reminder.type", string(t)), attribute.Bool("reminder.dry_run", dryRun))

	guests, err := s.Eligible(ctx, t)
	if err != nil {
		return SendResult{}, err
	}
	result := SendResult{Total: len(guests)}
	if dryRun {
		for _, g := range guests {
			result.add(Detail{GuestID: g.ID, Guest: g.Name, Phone: g.Phone, Status: OutcomeDryRun, Message: "Reminder " + string(t)})
		}
		return result, nil
	}

	days, _ := t.DaysBefore()
	batch, err := s.deps.Store.CreateBatch(ctx, reminder.Batch{
		Kind:       reminder.KindFor(executedBy),
		Type:       t,
		ExecutedBy: executedBy,
		DaysBefore: days,
		StartedAt:  s.deps.now(),
	})
	if err != nil {
		return SendResult{}, err
	}

	for _, g := range guests {
		if responded, err := s.responded(ctx, g.ID); err != nil {
			return SendResult{}, err
		} else if responded {
			result.add(Detail{GuestID: g.ID, Guest: g.Name, Phone: g.Phone, Status: OutcomeSkipped, Message: "Already responded"})
			continue
		}
		detail, err := s.send(ctx, g, t, "", executedBy)
		if err != nil {
			return SendResult{}, err
		}
		result.add(detail)
	}

	completed := s.deps.now()
	batch.Total = result.Total
	batch.Sent = result.Sent
	batch.Failed = result.Failed
	batch.Skipped = result.Skipped
	batch.CompletedAt = &completed
	if err := s.deps.Store.UpdateBatch(ctx, batch); err != nil {
		return SendResult{}, err
	}
	result.Batch = batch
	s.deps.Logger.Info("reminder batch completed",
		zap.String("type", string(t)),
		zap.Int("sent", result.Sent),
		zap.Int("total", result.Total),
	)
	return result, nil
}

// SendManual reminds the given guests regardless of schedule.
func (s *ReminderService) SendManual(ctx context.Context, guestIDs []int64, customMessage, sentBy string) (SendResult, error) {
	result := SendResult{Total: len(guestIDs)}
	for _, id := range guestIDs {
		g, err := s.deps.Store.GetGuest(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			result.add(Detail{GuestID: id, Status: OutcomeFailed, Message: "Guest not found"})
			continue
		}
		if err != nil {
			return SendResult{}, err
		}
		detail, err := s.send(ctx, g, reminder.TypeManual, customMessage, sentBy)
		if err != nil {
			return SendResult{}, err
		}
		result.add(detail)
	}
	return result, nil
}

func (s *ReminderService) responded(ctx context.Context, guestID int64) (bool, error) {
	r, err := s.deps.Store.GetRSVPByGuest(ctx, guestID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !r.IsCancelled, nil
}

// send delivers one reminder. Delivery problems become failed details;
// only storage errors are returned.
func (s *ReminderService) send(ctx context.Context, g guest.Guest, t reminder.Type, customMessage, sentBy string) (Detail, error) {
	detail := Detail{GuestID: g.ID, Guest: g.Name, Phone: g.Phone, Status: OutcomeFailed}
	if g.Email == "" {
		detail.Message = fmt.Sprintf("Guest %s has no email address", g.Name)
		return detail, nil
	}
	pref, err := s.deps.Store.GetPreference(ctx, g.ID)
	if err != nil {
		return Detail{}, err
	}
	if !pref.CanSend() {
		detail.Message = fmt.Sprintf("Guest %s has opted out or reached reminder limit", g.Name)
		return detail, nil
	}

	now := s.deps.now()
	history, err := s.deps.Store.CreateHistory(ctx, reminder.History{
		GuestID:   g.ID,
		Type:      t,
		Status:    reminder.StatusPending,
		SentTo:    g.Email,
		SentBy:    sentBy,
		Notes:     customMessage,
		CreatedAt: now,
	})
	if err != nil {
		return Detail{}, err
	}

	msg, err := notify.RenderReminder(ctx, printerFor(g.Language), notify.ReminderInput{
		Title:         s.deps.Settings.Title,
		GuestName:     g.Name,
		Language:      string(g.Language),
		Type:          t,
		Deadline:      s.deps.Calendar.RSVPDeadline,
		Link:          s.deps.Settings.RSVPLink(g.Token),
		CustomMessage: customMessage,
	})
	if err == nil {
		history.Subject = msg.Subject
		msg.To = []string{g.Email}
		err = s.deps.Sender.Send(ctx, msg)
	}
	if err != nil {
		if updateErr := s.deps.Store.UpdateHistory(ctx, history.MarkFailed(err.Error())); updateErr != nil {
			return Detail{}, updateErr
		}
		s.deps.Metrics.RecordReminder(string(t), OutcomeFailed)
		s.deps.Logger.Warn("reminder failed", zap.Int64("guest_id", g.ID), zap.String("type", string(t)), zap.Error(err))
		detail.Message = "Failed to send reminder: " + err.Error()
		return detail, nil
	}

	if err := s.deps.Store.UpdateHistory(ctx, history.MarkSent(now)); err != nil {
		return Detail{}, err
	}
	pref.TotalSent++
	pref.LastSentAt = &now
	if err := s.deps.Store.SavePreference(ctx, pref); err != nil {
		return Detail{}, err
	}
	s.deps.Metrics.RecordReminder(string(t), OutcomeSent)
	s.deps.Logger.Info("reminder sent", zap.Int64("guest_id", g.ID), zap.String("type", string(t)))
	detail.Status = OutcomeSent
	detail.Message = "Reminder sent to " + g.Name
	return detail, nil
}

// OptOut stops further reminders for a guest.
func (s *ReminderService) OptOut(ctx context.Context, guestID int64) error {
	if _, err := s.deps.Store.GetGuest(ctx, guestID); err != nil {
		return guestNotFound(err)
	}
	pref, err := s.deps.Store.GetPreference(ctx, guestID)
	if err != nil {
		return err
	}
	pref.OptOut = true
	if err := s.deps.Store.SavePreference(ctx, pref); err != nil {
		return err
	}
	s.deps.Logger.Info("guest opted out of reminders", zap.Int64("guest_id", guestID))
	return nil
}

// Statistics aggregates reminder activity.
type Statistics struct {
	storage.ReminderCounts
	RecentBatches []reminder.Batch
}

// Statistics returns totals and the most recent batches.
func (s *ReminderService) Statistics(ctx context.Context) (Statistics, error) {
	counts, err := s.deps.Store.CountReminders(ctx)
	if err != nil {
		return Statistics{}, err
	}
	batches, err := s.deps.Store.ListBatches(ctx, recentBatchLimit)
	if err != nil {
		return Statistics{}, err
	}
	return Statistics{ReminderCounts: counts, RecentBatches: batches}, nil
}

// History lists delivery attempts, newest first.
func (s *ReminderService) History(ctx context.Context, guestID int64) ([]reminder.History, error) {
	return s.deps.Store.ListHistory(ctx, guestID)
}

// RunAction is the outcome kind of a scheduled run.
type RunAction string

const (
	RunNoAction  RunAction = "no_action"
	RunNoGuests  RunAction = "no_guests"
	RunCompleted RunAction = "completed"
)

// ScheduledRun is the result of one cron invocation.
type ScheduledRun struct {
	Action    RunAction
	Type      reminder.Type
	Number    int
	Today     time.Time
	Deadline  time.Time
	DaysUntil int
	// Upcoming lists the schedule dates on or after today.
	Upcoming []reminder.Date
	DryRun   bool
	Result   SendResult
}

// RunScheduled sends the reminder due today, or the forced one when force
// is 1..4.
func (s *ReminderService) RunScheduled(ctx context.Context, today time.Time, force int, dryRun bool) (ScheduledRun, error) {
	cal := s.deps.Calendar
	today = cal.Day(today)
	run := ScheduledRun{
		Today:     today,
		Deadline:  cal.RSVPDeadline,
		DaysUntil: cal.DaysUntilDeadline(today),
		DryRun:    dryRun,
	}

	var (
		t  reminder.Type
		ok bool
	)
	if force != 0 {
		t, ok = reminder.FromNumber(force)
		if !ok {
			return ScheduledRun{}, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("force_reminder must be between 1 and %d", len(reminder.Scheduled)))
		}
		s.deps.Logger.Info("forced reminder", zap.Int("number", force))
	} else {
		t, ok = reminder.ForDay(cal.RSVPDeadline, today)
	}
	if !ok {
		run.Action = RunNoAction
		for _, d := range reminder.ScheduleFrom(cal.RSVPDeadline) {
			if !d.Day.Before(today) {
				run.Upcoming = append(run.Upcoming, d)
			}
		}
		return run, nil
	}
	run.Type = t
	run.Number = t.Number()

	eligible, err := s.Eligible(ctx, t)
	if err != nil {
		return ScheduledRun{}, err
	}
	if len(eligible) == 0 {
		run.Action = RunNoGuests
		return run, nil
	}
	result, err := s.SendBatch(ctx, t, reminder.ExecutedByCron, dryRun)
	if err != nil {
		return ScheduledRun{}, err
	}
	run.Action = RunCompleted
	run.Result = result
	return run, nil
}

// ScheduleStatus describes the reminder schedule relative to today.
type ScheduleStatus struct {
	Today       time.Time
	Deadline    time.Time
	DaysUntil   int
	Pending     int
	Schedule    []reminder.Date
	TodayNumber int
}

// DateState classifies a schedule date against today.
func (st ScheduleStatus) DateState(d reminder.Date) string {
	switch {
	case d.Day.Before(st.Today):
		return "past"
	case d.Day.Equal(st.Today):
		return "today"
	default:
		return "upcoming"
	}
}

// Status reports the schedule and how many guests still owe a reply.
func (s *ReminderService) Status(ctx context.Context, today time.Time) (ScheduleStatus, error) {
	cal := s.deps.Calendar
	today = cal.Day(today)
	guests, err := s.deps.Store.ListGuests(ctx)
	if err != nil {
		return ScheduleStatus{}, err
	}
	replies, err := s.deps.Store.ListRSVPs(ctx)
	if err != nil {
		return ScheduleStatus{}, err
	}
	st := ScheduleStatus{
		Today:     today,
		Deadline:  cal.RSVPDeadline,
		DaysUntil: cal.DaysUntilDeadline(today),
		Pending:   awaitingCount(guests, replies),
		Schedule:  reminder.ScheduleFrom(cal.RSVPDeadline),
	}
	if t, ok := reminder.ForDay(cal.RSVPDeadline, today); ok {
		st.TodayNumber = t.Number()
	}
	return st, nil
}

// awaitingCount counts guests without a reply or whose reply was
// cancelled, the same guests a scheduled reminder is meant for.
func awaitingCount(guests []guest.Guest, replies []rsvp.RSVP) int {
	byGuest := make(map[int64]rsvp.RSVP, len(replies))
	for _, r := range replies {
		byGuest[r.GuestID] = r
	}
	n := 0
	for _, g := range guests {
		r, ok := byGuest[g.ID]
		c := reminder.Candidate{HasRSVP: ok, Cancelled: ok && r.IsCancelled}
		if c.Awaiting() {
			n++
		}
	}
	return n
}

// DeadlineLabel formats the deadline for JSON payloads.
func DeadlineLabel(t time.Time) string {
	return t.Format(calendar.DateLayout)
}
