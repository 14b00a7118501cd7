// Package storage defines the persistence boundary of the wedding service.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/allergen"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/reminder"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/rsvp"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a write conflicts with a uniqueness constraint.
	ErrAlreadyExists = errors.New("record already exists")
)

// GuestStore persists invitations.
type GuestStore interface {
	CreateGuest(ctx context.Context, g guest.Guest) (guest.Guest, error)
	// CreateGuests inserts all guests or none.
	CreateGuests(ctx context.Context, guests []guest.Guest) ([]guest.Guest, error)
	UpdateGuest(ctx context.Context, g guest.Guest) error
	// DeleteGuest removes the guest and everything hanging off it.
	DeleteGuest(ctx context.Context, id int64) error
	GetGuest(ctx context.Context, id int64) (guest.Guest, error)
	GetGuestByToken(ctx context.Context, token string) (guest.Guest, error)
	ListGuests(ctx context.Context) ([]guest.Guest, error)
}

// RSVPStore persists replies with their additional guests and allergens.
type RSVPStore interface {
	GetRSVPByGuest(ctx context.Context, guestID int64) (rsvp.RSVP, error)
	// SaveRSVP writes r, replacing its additional guests and allergens, and
	// the guest's plus-one flag in one transaction.
	SaveRSVP(ctx context.Context, r rsvp.RSVP, g guest.Guest) (rsvp.RSVP, error)
	ListRSVPs(ctx context.Context) ([]rsvp.RSVP, error)
}

// AllergenStore persists the selectable allergen list.
type AllergenStore interface {
	ListAllergens(ctx context.Context) ([]allergen.Allergen, error)
	CreateAllergen(ctx context.Context, name string) (allergen.Allergen, error)
	// SeedAllergens inserts the names not yet present and returns how many
	// were added.
	SeedAllergens(ctx context.Context, names []string) (int, error)
}

// ReminderCounts aggregates reminder history.
type ReminderCounts struct {
	Sent     int
	Failed   int
	Pending  int
	ByType   map[reminder.Type]int
	OptedOut int
}

// ReminderStore persists reminder history, batches and preferences.
type ReminderStore interface {
	CreateHistory(ctx context.Context, h reminder.History) (reminder.History, error)
	UpdateHistory(ctx context.Context, h reminder.History) error
	ListHistory(ctx context.Context, guestID int64) ([]reminder.History, error)
	// SentTypes returns the types delivered successfully per guest.
	SentTypes(ctx context.Context, t reminder.Type) (map[int64]bool, error)
	// GetPreference returns the default preference when none is stored.
	GetPreference(ctx context.Context, guestID int64) (reminder.Preference, error)
	ListPreferences(ctx context.Context) (map[int64]reminder.Preference, error)
	SavePreference(ctx context.Context, p reminder.Preference) error
	CreateBatch(ctx context.Context, b reminder.Batch) (reminder.Batch, error)
	UpdateBatch(ctx context.Context, b reminder.Batch) error
	ListBatches(ctx context.Context, limit int) ([]reminder.Batch, error)
	CountReminders(ctx context.Context) (ReminderCounts, error)
}

// Store is everything the wedding service persists.
type Store interface {
	GuestStore
	RSVPStore
	AllergenStore
	ReminderStore
	Ping(ctx context.Context) error
	Close() error
}

