package app

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/reminder"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/rsvp"
)

type reminderGuests struct {
	ana, bea, carlos, diana, elena guest.Guest
}

// seedReminderGuests covers every eligibility branch: Ana and Diana are
// due a reminder, the others are not.
func seedReminderGuests(t *testing.T, f *fixture) reminderGuests {
	t.Helper()
	ctx := context.Background()

	gs := reminderGuests{
		ana:    f.addGuest(t, guest.Guest{Name: "Ana", Email: "ana@example.com", Language: guest.LanguageEnglish}),
		bea:    f.addGuest(t, guest.Guest{Name: "Bea", Email: "bea@example.com"}),
		carlos: f.addGuest(t, guest.Guest{Name: "Carlos"}),
		diana:  f.addGuest(t, guest.Guest{Name: "Diana", Email: "diana@example.com"}),
		elena:  f.addGuest(t, guest.Guest{Name: "Elena", Email: "elena@example.com"}),
	}
	yes := url.Values{rsvp.FieldAttending: {rsvp.AttendingYes}}
	_, err := f.services.RSVP.Submit(ctx, gs.bea.Token, yes)
	require.NoError(t, err)
	_, err = f.services.RSVP.Submit(ctx, gs.diana.Token, yes)
	require.NoError(t, err)
	_, err = f.services.RSVP.Cancel(ctx, gs.diana.Token)
	require.NoError(t, err)
	require.NoError(t, f.services.Reminders.OptOut(ctx, gs.elena.ID))
	return gs
}

func names(gs []guest.Guest) []string {
	out := make([]string, 0, len(gs))
	for _, g := range gs {
		out = append(out, g.Name)
	}
	return out
}

func TestReminderEligible(t *testing.T) {
	t.Parallel()

	f := newFixture(t, day("2026-04-22"))
	seedReminderGuests(t, f)

	eligible, err := f.services.Reminders.Eligible(context.Background(), reminder.TypeFirst)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana", "Diana"}, names(eligible))
}

func TestRunScheduledSendsTodaysReminder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, day("2026-04-22"))
	gs := seedReminderGuests(t, f)
	before := len(f.sender.messages())

	run, err := f.services.Reminders.RunScheduled(ctx, f.now, 0, false)
	require.NoError(t, err)
	assert.Equal(t, RunCompleted, run.Action)
	assert.Equal(t, reminder.TypeFirst, run.Type)
	assert.Equal(t, 2, run.Number)
	assert.Equal(t, 14, run.DaysUntil)
	assert.Equal(t, 2, run.Result.Total)
	assert.Equal(t, 2, run.Result.Sent)
	assert.Zero(t, run.Result.Failed)

	sent := f.sender.messages()[before:]
	require.Len(t, sent, 2)
	assert.Equal(t, []string{"ana@example.com"}, sent[0].To)
	assert.Contains(t, sent[0].Text, "https://wedding.example.com/rsvp/"+gs.ana.Token)

	history, err := f.services.Reminders.History(ctx, gs.ana.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, reminder.StatusSent, history[0].Status)
	assert.Equal(t, sent[0].Subject, history[0].Subject)
	assert.Equal(t, reminder.ExecutedByCron, history[0].SentBy)
	require.NotNil(t, history[0].SentAt)

	pref, err := f.store.GetPreference(ctx, gs.ana.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pref.TotalSent)

	again, err := f.services.Reminders.RunScheduled(ctx, f.now, 0, false)
	require.NoError(t, err)
	assert.Equal(t, RunNoGuests, again.Action)

	stats, err := f.services.Reminders.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Sent)
	assert.Equal(t, 2, stats.ByType[reminder.TypeFirst])
	assert.Equal(t, 1, stats.OptedOut)
	require.Len(t, stats.RecentBatches, 1)
	batch := stats.RecentBatches[0]
	assert.Equal(t, reminder.BatchScheduled, batch.Kind)
	assert.Equal(t, 2, batch.Sent)
	assert.Equal(t, 14, batch.DaysBefore)
	assert.NotNil(t, batch.CompletedAt)
}

func TestRunScheduledNoActionListsUpcoming(t *testing.T) {
	t.Parallel()

	f := newFixture(t, day("2026-04-23"))
	seedReminderGuests(t, f)

	run, err := f.services.Reminders.RunScheduled(context.Background(), f.now, 0, false)
	require.NoError(t, err)
	assert.Equal(t, RunNoAction, run.Action)
	assert.Equal(t, 13, run.DaysUntil)
	require.Len(t, run.Upcoming, 2)
	assert.Equal(t, "reminder_3", run.Upcoming[0].Key())
	assert.Equal(t, "reminder_4", run.Upcoming[1].Key())
}

func TestRunScheduledForcedDryRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, day("2026-04-23"))
	seedReminderGuests(t, f)
	before := len(f.sender.messages())

	run, err := f.services.Reminders.RunScheduled(ctx, f.now, 4, true)
	require.NoError(t, err)
	assert.Equal(t, RunCompleted, run.Action)
	assert.Equal(t, reminder.TypeFinal, run.Type)
	assert.True(t, run.DryRun)
	assert.Equal(t, 2, run.Result.Sent)
	for _, d := range run.Result.Details {
		assert.Equal(t, OutcomeDryRun, d.Status)
	}
	assert.Len(t, f.sender.messages(), before)

	stats, err := f.services.Reminders.Statistics(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats.RecentBatches)
	assert.Zero(t, stats.Sent)

	_, err = f.services.Reminders.RunScheduled(ctx, f.now, 5, false)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
}

func TestSendManualReportsEachGuest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, day("2026-04-23"))
	gs := seedReminderGuests(t, f)

	result, err := f.services.Reminders.SendManual(ctx, []int64{gs.ana.ID, gs.carlos.ID, gs.elena.ID, 9999}, "See you soon!", reminder.ExecutedByAdmin)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 3, result.Failed)

	require.Len(t, result.Details, 4)
	assert.Equal(t, OutcomeSent, result.Details[0].Status)
	assert.Equal(t, "Guest Carlos has no email address", result.Details[1].Message)
	assert.Equal(t, "Guest Elena has opted out or reached reminder limit", result.Details[2].Message)
	assert.Equal(t, "Guest not found", result.Details[3].Message)

	msgs := f.sender.messages()
	assert.Contains(t, msgs[len(msgs)-1].Text, "See you soon!")
}

func TestSendManualRecordsFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, day("2026-04-23"))
	gs := seedReminderGuests(t, f)
	f.sender.err = errSMTPDown

	result, err := f.services.Reminders.SendManual(ctx, []int64{gs.ana.ID}, "", reminder.ExecutedByAdmin)
	require.NoError(t, err)
	require.Len(t, result.Details, 1)
	assert.Equal(t, "Failed to send reminder: smtp down", result.Details[0].Message)

	history, err := f.services.Reminders.History(ctx, gs.ana.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, reminder.StatusFailed, history[0].Status)
	assert.Equal(t, "smtp down", history[0].Error)

	pref, err := f.store.GetPreference(ctx, gs.ana.ID)
	require.NoError(t, err)
	assert.Zero(t, pref.TotalSent)
}

func TestReminderStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t, day("2026-04-29"))
	seedReminderGuests(t, f)

	st, err := f.services.Reminders.Status(context.Background(), f.now)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TodayNumber)
	assert.Equal(t, 7, st.DaysUntil)
	// Ana, Carlos and Elena never replied; Diana cancelled. Bea attends.
	assert.Equal(t, 4, st.Pending)
	require.Len(t, st.Schedule, 4)
	assert.Equal(t, "past", st.DateState(st.Schedule[0]))
	assert.Equal(t, "today", st.DateState(st.Schedule[2]))
	assert.Equal(t, "upcoming", st.DateState(st.Schedule[3]))
}

func TestOptOutUnknownGuest(t *testing.T) {
	t.Parallel()

	f := newFixture(t, day("2026-04-23"))
	err := f.services.Reminders.OptOut(context.Background(), 42)
	assert.Equal(t, apperrors.CodeGuestNotFound, apperrors.CodeOf(err))
}

func TestReminderStatusCountsCancelledAsAwaiting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, day("2026-04-10"))
	ana := f.addGuest(t, guest.Guest{Name: "Ana"})
	bea := f.addGuest(t, guest.Guest{Name: "Bea"})
	f.addGuest(t, guest.Guest{Name: "Carlos"})

	_, err := f.services.RSVP.Submit(ctx, ana.Token, url.Values{rsvp.FieldAttending: {rsvp.AttendingNo}})
	require.NoError(t, err)
	_, err = f.services.RSVP.Submit(ctx, bea.Token, url.Values{rsvp.FieldAttending: {rsvp.AttendingYes}})
	require.NoError(t, err)

	st, err := f.services.Reminders.Status(ctx, f.now)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Pending, "a decline is a reply")

	_, err = f.services.RSVP.Cancel(ctx, bea.Token)
	require.NoError(t, err)
	st, err = f.services.Reminders.Status(ctx, f.now)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Pending)
}
