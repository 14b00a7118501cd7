package app

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/rsvp"
)

func TestRSVPSubmitAndLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, day("2026-04-20"))
	g := f.addGuest(t, guest.Guest{Name: "Ana", HasPlusOne: true, Language: guest.LanguageEnglish})

	saved, err := f.services.RSVP.Submit(ctx, g.Token, url.Values{
		rsvp.FieldAttending:      {rsvp.AttendingYes},
		rsvp.FieldPlusOneName:    {"Bea"},
		rsvp.FieldHotelName:      {"Hotel Sol"},
		rsvp.FieldTransportHotel: {"on"},
	})
	require.NoError(t, err)
	assert.True(t, saved.IsAttending)
	assert.Equal(t, 2, saved.GuestCount())

	page, err := f.services.RSVP.Load(ctx, g.Token)
	require.NoError(t, err)
	require.NotNil(t, page.RSVP)
	assert.True(t, page.Editable)
	assert.True(t, page.Guest.PlusOneUsed)
	assert.Equal(t, rsvp.StatusAttending, page.Summary.Status)
	assert.Equal(t, "Hotel Sol", page.RSVP.HotelName)
	assert.NotEmpty(t, f.logs.FilterMessage("rsvp submitted").All())
}

func TestRSVPSubmitRejectsInvalidForm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, day("2026-04-20"))
	g := f.addGuest(t, guest.Guest{Name: "Ana"})

	_, err := f.services.RSVP.Submit(context.Background(), g.Token, url.Values{
		rsvp.FieldAttending:      {rsvp.AttendingYes},
		rsvp.FieldTransportHotel: {"on"},
	})
	var invalid *rsvp.InvalidError
	require.True(t, errors.As(err, &invalid))
	require.Len(t, invalid.Problems, 1)
	assert.Equal(t, rsvp.ProblemHotelRequired, invalid.Problems[0].Key)
}

func TestRSVPSubmitAfterDeadline(t *testing.T) {
	t.Parallel()

	f := newFixture(t, day("2026-05-07"))
	g := f.addGuest(t, guest.Guest{Name: "Ana"})

	_, err := f.services.RSVP.Submit(context.Background(), g.Token, url.Values{
		rsvp.FieldAttending: {rsvp.AttendingNo},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeRSVPDeadlinePassed, apperrors.CodeOf(err))
}

func TestRSVPLoadUnknownToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t, day("2026-04-20"))
	_, err := f.services.RSVP.Load(context.Background(), "missing")
	assert.Equal(t, apperrors.CodeGuestNotFound, apperrors.CodeOf(err))
}

func TestRSVPCancelNotifiesAdmin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, day("2026-04-20"))
	g := f.addGuest(t, guest.Guest{Name: "Carlos", Phone: "600999888"})

	_, err := f.services.RSVP.Cancel(ctx, g.Token)
	assert.Equal(t, apperrors.CodeRSVPNotFound, apperrors.CodeOf(err))

	_, err = f.services.RSVP.Submit(ctx, g.Token, url.Values{rsvp.FieldAttending: {rsvp.AttendingYes}})
	require.NoError(t, err)

	cancelled, err := f.services.RSVP.Cancel(ctx, g.Token)
	require.NoError(t, err)
	assert.True(t, cancelled.IsCancelled)
	require.NotNil(t, cancelled.CancelledAt)

	sent := f.sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"admin@example.com"}, sent[0].To)
	assert.Contains(t, sent[0].Text, "Carlos")
	assert.Contains(t, sent[0].Text, "600999888")
}

func TestRSVPCancelSurvivesEmailFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, day("2026-04-20"))
	f.sender.err = errSMTPDown
	g := f.addGuest(t, guest.Guest{Name: "Carlos"})

	_, err := f.services.RSVP.Submit(ctx, g.Token, url.Values{rsvp.FieldAttending: {rsvp.AttendingYes}})
	require.NoError(t, err)
	_, err = f.services.RSVP.Cancel(ctx, g.Token)
	require.NoError(t, err)
	assert.Len(t, f.logs.FilterMessage("cancellation notice failed").All(), 1)
}

func TestRSVPLockedNearWedding(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, day("2026-04-20"))
	g := f.addGuest(t, guest.Guest{Name: "Ana"})
	_, err := f.services.RSVP.Submit(ctx, g.Token, url.Values{rsvp.FieldAttending: {rsvp.AttendingYes}})
	require.NoError(t, err)

	// Deadline still open on paper, but the edit cutoff is past.
	f.services.RSVP.deps.Calendar.RSVPDeadline = day("2026-06-05")
	f.now = day("2026-06-01")

	page, err := f.services.RSVP.Load(ctx, g.Token)
	require.NoError(t, err)
	assert.False(t, page.Editable)

	_, err = f.services.RSVP.Submit(ctx, g.Token, url.Values{rsvp.FieldAttending: {rsvp.AttendingNo}})
	assert.Equal(t, apperrors.CodeRSVPNotEditable, apperrors.CodeOf(err))
}
