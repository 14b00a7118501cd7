package app

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/allergen"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/storage"
)

// GuestService manages invitations from the admin.
type GuestService struct {
	deps Deps
}

// Get loads one guest.
func (s *GuestService) Get(ctx context.Context, id int64) (guest.Guest, error) {
	g, err := s.deps.Store.GetGuest(ctx, id)
	if err != nil {
		return guest.Guest{}, guestNotFound(err)
	}
	return g, nil
}

// List returns every guest.
func (s *GuestService) List(ctx context.Context) ([]guest.Guest, error) {
	return s.deps.Store.ListGuests(ctx)
}

// Add validates g, gives it a fresh token and stores it.
func (s *GuestService) Add(ctx context.Context, g guest.Guest) (guest.Guest, error) {
	normalized, err := guest.Normalize(g)
	if err != nil {
		return guest.Guest{}, err
	}
	if err := s.prepare(&normalized); err != nil {
		return guest.Guest{}, err
	}
	created, err := s.deps.Store.CreateGuest(ctx, normalized)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return guest.Guest{}, apperrors.Wrap(apperrors.CodeGuestAlreadyExists, "guest already exists", err)
		}
		return guest.Guest{}, err
	}
	s.deps.Logger.Info("guest added", zap.Int64("guest_id", created.ID))
	return created, nil
}

// Update replaces the editable fields. Token, creation time and plus-one
// usage stay as stored.
func (s *GuestService) Update(ctx context.Context, g guest.Guest) (guest.Guest, error) {
	existing, err := s.Get(ctx, g.ID)
	if err != nil {
		return guest.Guest{}, err
	}
	normalized, err := guest.Normalize(g)
	if err != nil {
		return guest.Guest{}, err
	}
	normalized.ID = existing.ID
	normalized.Token = existing.Token
	normalized.CreatedAt = existing.CreatedAt
	normalized.PlusOneUsed = existing.PlusOneUsed && normalized.HasPlusOne
	if err := s.deps.Store.UpdateGuest(ctx, normalized); err != nil {
		return guest.Guest{}, guestNotFound(err)
	}
	s.deps.Logger.Info("guest updated", zap.Int64("guest_id", normalized.ID))
	return normalized, nil
}

// Delete removes a guest with their reply and reminders.
func (s *GuestService) Delete(ctx context.Context, id int64) error {
	if err := s.deps.Store.DeleteGuest(ctx, id); err != nil {
		return guestNotFound(err)
	}
	s.deps.Logger.Info("guest deleted", zap.Int64("guest_id", id))
	return nil
}

// Import reads a CSV upload and stores every row or none.
func (s *GuestService) Import(ctx context.Context, r io.Reader) ([]guest.Guest, error) {
	parsed, err := guest.ParseCSV(r, guest.DefaultMaxCSVBytes)
	if err != nil {
		return nil, err
	}
	for i := range parsed {
		if err := s.prepare(&parsed[i]); err != nil {
			return nil, err
		}
	}
	created, err := s.deps.Store.CreateGuests(ctx, parsed)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, apperrors.Wrap(apperrors.CodeGuestAlreadyExists, "guest already exists", err)
		}
		return nil, err
	}
	s.deps.Metrics.RecordGuestsImported(len(created))
	s.deps.Logger.Info("guest imported", zap.Int("count", len(created)))
	return created, nil
}

func (s *GuestService) prepare(g *guest.Guest) error {
	token, err := guest.NewToken()
	if err != nil {
		return err
	}
	g.Token = token
	g.CreatedAt = s.deps.now()
	g.PlusOneUsed = false
	return nil
}

// AllergenService manages the selectable allergen list.
type AllergenService struct {
	deps Deps
}

// List returns the allergens in form order.
func (s *AllergenService) List(ctx context.Context) ([]allergen.Allergen, error) {
	return s.deps.Store.ListAllergens(ctx)
}

// Add creates an allergen after normalizing its name.
func (s *AllergenService) Add(ctx context.Context, name string) (allergen.Allergen, error) {
	normalized, err := allergen.NormalizeName(name)
	if err != nil {
		return allergen.Allergen{}, err
	}
	created, err := s.deps.Store.CreateAllergen(ctx, normalized)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return allergen.Allergen{}, apperrors.WithArgs(apperrors.CodeAllergenExists, "allergen already exists", normalized)
	}
	return created, err
}

// EnsureDefaults seeds the standard allergen list and returns how many
// were added.
func (s *AllergenService) EnsureDefaults(ctx context.Context) (int, error) {
	added, err := s.deps.Store.SeedAllergens(ctx, allergen.DefaultNames)
	if err != nil {
		return 0, err
	}
	if added > 0 {
		s.deps.Logger.Info("allergens seeded", zap.Int("count", added))
	}
	return added, nil
}
