package app

import (
	"context"
	"errors"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
	"github.com/louisbranch/wedding.rsvp/internal/platform/otel"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/allergen"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/rsvp"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/notify"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/storage"
)

var rsvpTracer = otel.Tracer("wedding/rsvp")

// RSVPService runs the guest reply workflow.
type RSVPService struct {
	deps Deps
}

// RSVPPage is everything the RSVP form needs.
type RSVPPage struct {
	Guest          guest.Guest
	RSVP           *rsvp.RSVP
	Allergens      []allergen.Allergen
	Summary        rsvp.Summary
	DeadlinePassed bool
	// Editable is false once changes are locked; the form renders read-only.
	Editable bool
}

// Load resolves a token into the RSVP page state.
func (s *RSVPService) Load(ctx context.Context, token string) (RSVPPage, error) {
	g, err := s.deps.Store.GetGuestByToken(ctx, token)
	if err != nil {
		return RSVPPage{}, guestNotFound(err)
	}
	var existing *rsvp.RSVP
	r, err := s.deps.Store.GetRSVPByGuest(ctx, g.ID)
	switch {
	case err == nil:
		existing = &r
	case !errors.Is(err, storage.ErrNotFound):
		return RSVPPage{}, err
	}
	allergens, err := s.deps.Store.ListAllergens(ctx)
	if err != nil {
		return RSVPPage{}, err
	}

	now := s.deps.now()
	cal := s.deps.Calendar
	page := RSVPPage{
		Guest:          g,
		RSVP:           existing,
		Allergens:      allergens,
		Summary:        rsvp.SummaryOf(existing, cal, now),
		DeadlinePassed: cal.DeadlinePassed(now),
	}
	page.Editable = !page.DeadlinePassed && (existing == nil || cal.Editable(now))
	return page, nil
}

// Submit validates and stores a reply.
func (s *RSVPService) Submit(ctx context.Context, token string, values url.Values) (rsvp.RSVP, error) {
	ctx, span := rsvpTracer.Start(ctx, "rsvp.submit")
	defer span.End()

	page, err := s.Load(ctx, token)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return rsvp.RSVP{}, err
	}
	if err := s.checkOpen(page); err != nil {
		return rsvp.RSVP{}, err
	}

	sub := rsvp.ParseSubmission(values)
	if problems := rsvp.Validate(sub, page.Guest); len(problems) > 0 {
		return rsvp.RSVP{}, &rsvp.InvalidError{Problems: problems}
	}

	next, g := rsvp.Apply(page.RSVP, sub, page.Guest, allergen.Index(page.Allergens), s.deps.now())
	saved, err := s.deps.Store.SaveRSVP(ctx, next, g)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save rsvp")
		return rsvp.RSVP{}, err
	}

	status := saved.Status()
	span.SetAttributes(attribute.String("rsvp.status", string(status)), attribute.Int("rsvp.guests", saved.GuestCount()))
	s.deps.Metrics.RecordRSVP(string(status))
	s.deps.Logger.Info("rsvp submitted",
		zap.Int64("guest_id", g.ID),
		zap.String("status", string(status)),
		zap.Int("guests", saved.GuestCount()),
	)
	return saved, nil
}

// Cancel withdraws an existing reply and tells the admin.
func (s *RSVPService) Cancel(ctx context.Context, token string) (rsvp.RSVP, error) {
	ctx, span := rsvpTracer.Start(ctx, "rsvp.cancel")
	defer span.End()

	page, err := s.Load(ctx, token)
	if err != nil {
		return rsvp.RSVP{}, err
	}
	if page.RSVP == nil {
		return rsvp.RSVP{}, apperrors.New(apperrors.CodeRSVPNotFound, "no rsvp to cancel")
	}
	if err := s.checkOpen(page); err != nil {
		return rsvp.RSVP{}, err
	}

	cancelled := rsvp.Cancel(*page.RSVP, s.deps.now())
	saved, err := s.deps.Store.SaveRSVP(ctx, cancelled, page.Guest)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save rsvp")
		return rsvp.RSVP{}, err
	}
	s.deps.Metrics.RecordRSVP(string(rsvp.StatusCancelled))
	s.deps.Logger.Info("rsvp cancelled", zap.Int64("guest_id", page.Guest.ID))
	s.notifyCancellation(ctx, page.Guest, saved)
	return saved, nil
}

func (s *RSVPService) checkOpen(page RSVPPage) error {
	if page.DeadlinePassed {
		return apperrors.New(apperrors.CodeRSVPDeadlinePassed, "rsvp deadline passed")
	}
	if !page.Editable {
		return apperrors.New(apperrors.CodeRSVPNotEditable, "rsvp changes are locked")
	}
	return nil
}

// notifyCancellation emails the admin. Failures are logged only.
func (s *RSVPService) notifyCancellation(ctx context.Context, g guest.Guest, r rsvp.RSVP) {
	to := s.deps.Settings.AdminEmail
	if to == "" {
		return
	}
	at := r.LastUpdated
	if r.CancelledAt != nil {
		at = *r.CancelledAt
	}
	msg, err := notify.RenderCancellation(ctx, defaultPrinter(), notify.CancellationInput{
		Title:       s.deps.Settings.Title,
		GuestName:   g.Name,
		Phone:       g.Phone,
		CancelledAt: at,
	})
	if err == nil {
		msg.To = []string{to}
		err = s.deps.Sender.Send(ctx, msg)
	}
	if err != nil {
		s.deps.Logger.Warn("cancellation notice failed", zap.Int64("guest_id", g.ID), zap.Error(err))
	}
}
