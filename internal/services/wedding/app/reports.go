package app

import (
	"context"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/report"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/rsvp"
)

// ReportService builds the admin views.
type ReportService struct {
	deps Deps
}

// Entries pairs every guest with their reply.
func (s *ReportService) Entries(ctx context.Context) ([]report.Entry, error) {
	guests, err := s.deps.Store.ListGuests(ctx)
	if err != nil {
		return nil, err
	}
	replies, err := s.deps.Store.ListRSVPs(ctx)
	if err != nil {
		return nil, err
	}
	byGuest := make(map[int64]*rsvp.RSVP, len(replies))
	for i := range replies {
		byGuest[replies[i].GuestID] = &replies[i]
	}
	entries := make([]report.Entry, 0, len(guests))
	for _, g := range guests {
		entries = append(entries, report.Entry{Guest: g, RSVP: byGuest[g.ID]})
	}
	return entries, nil
}

// Dashboard returns the admin landing summary.
func (s *ReportService) Dashboard(ctx context.Context) (report.Dashboard, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return report.Dashboard{}, err
	}
	return report.BuildDashboard(entries), nil
}

// Dietary returns the catering report.
func (s *ReportService) Dietary(ctx context.Context) (report.Dietary, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return report.Dietary{}, err
	}
	known, err := s.deps.Store.ListAllergens(ctx)
	if err != nil {
		return report.Dietary{}, err
	}
	return report.BuildDietary(entries, known), nil
}

// Transport returns the shuttle report.
func (s *ReportService) Transport(ctx context.Context) (report.Transport, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return report.Transport{}, err
	}
	return report.BuildTransport(entries), nil
}

// Pending lists guests without a reply.
func (s *ReportService) Pending(ctx context.Context) ([]guest.Guest, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return report.Pending(entries), nil
}

// Detailed returns one export row per reply.
func (s *ReportService) Detailed(ctx context.Context) ([]report.DetailedRow, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildDetailed(entries), nil
}
