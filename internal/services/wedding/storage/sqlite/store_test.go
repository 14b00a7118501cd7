package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/allergen"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/reminder"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/rsvp"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/storage"
)

var now = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "wedding.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func createGuest(t *testing.T, store *Store, name, token string) guest.Guest {
	t.Helper()

	g, err := store.CreateGuest(context.Background(), guest.Guest{
		Name:      name,
		Phone:     "600000000",
		Email:     name + "@example.com",
		Token:     token,
		Language:  guest.LanguageEnglish,
		CreatedAt: now,
	})
	require.NoError(t, err)
	return g
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), " ")
	require.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wedding.db")
	first, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Ping(context.Background()))
}

func TestGuestLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)

	ana := createGuest(t, store, "ana", "tok-ana")
	assert.NotZero(t, ana.ID)

	_, err := store.CreateGuest(ctx, guest.Guest{Name: "dup", Phone: "1", Token: "tok-ana", CreatedAt: now})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	byToken, err := store.GetGuestByToken(ctx, "tok-ana")
	require.NoError(t, err)
	assert.Equal(t, ana, byToken)

	ana.Name = "Ana María"
	ana.HasPlusOne = true
	require.NoError(t, store.UpdateGuest(ctx, ana))
	got, err := store.GetGuest(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", got.Name)
	assert.True(t, got.HasPlusOne)

	_, err = store.GetGuestByToken(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.ErrorIs(t, store.UpdateGuest(ctx, guest.Guest{ID: 999}), storage.ErrNotFound)
	require.ErrorIs(t, store.DeleteGuest(ctx, 999), storage.ErrNotFound)
}

func TestCreateGuestsIsAtomic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)

	_, err := store.CreateGuests(ctx, []guest.Guest{
		{Name: "Ana", Phone: "1", Token: "t1", CreatedAt: now},
		{Name: "Bea", Phone: "2", Token: "t1", CreatedAt: now},
	})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	guests, err := store.ListGuests(ctx)
	require.NoError(t, err)
	assert.Empty(t, guests)

	created, err := store.CreateGuests(ctx, []guest.Guest{
		{Name: "bea", Phone: "2", Token: "t2", CreatedAt: now},
		{Name: "Ana", Phone: "1", Token: "t1", CreatedAt: now},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	guests, err = store.ListGuests(ctx)
	require.NoError(t, err)
	require.Len(t, guests, 2)
	assert.Equal(t, "Ana", guests[0].Name)
}

func TestSaveRSVPReplacesDetails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)

	added, err := store.SeedAllergens(ctx, allergen.DefaultNames)
	require.NoError(t, err)
	assert.Equal(t, len(allergen.DefaultNames), added)
	again, err := store.SeedAllergens(ctx, allergen.DefaultNames)
	require.NoError(t, err)
	assert.Zero(t, again)

	known, err := store.ListAllergens(ctx)
	require.NoError(t, err)
	gluten := known[0].ID

	g := createGuest(t, store, "ana", "tok")
	g.PlusOneUsed = true
	saved, err := store.SaveRSVP(ctx, rsvp.RSVP{
		GuestID:           g.ID,
		IsAttending:       true,
		HotelName:         "Hotel Mar",
		TransportToChurch: true,
		PlusOneName:       "Bea",
		AdditionalGuests:  []rsvp.AdditionalGuest{{Name: "Bea"}, {Name: "Leo", IsChild: true, NeedsMenu: true}},
		Allergens: []allergen.GuestAllergen{
			{GuestName: "ana", AllergenID: &gluten},
			{GuestName: "Bea", Custom: "kiwi"},
		},
		CreatedAt:   now,
		LastUpdated: now,
	}, g)
	require.NoError(t, err)
	require.NotZero(t, saved.ID)

	loaded, err := store.GetRSVPByGuest(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsAttending)
	assert.Equal(t, "Hotel Mar", loaded.HotelName)
	require.Len(t, loaded.AdditionalGuests, 2)
	assert.True(t, loaded.AdditionalGuests[1].NeedsMenu)
	require.Len(t, loaded.Allergens, 2)
	assert.Equal(t, "Gluten", loaded.Allergens[0].Name)
	assert.Equal(t, "Gluten", loaded.Allergens[0].Label())
	assert.Equal(t, "kiwi", loaded.Allergens[1].Label())

	stored, err := store.GetGuest(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, stored.PlusOneUsed)

	cancelled := rsvp.Cancel(loaded, now.Add(time.Hour))
	cancelled.AdditionalGuests = nil
	cancelled.Allergens = nil
	_, err = store.SaveRSVP(ctx, cancelled, stored)
	require.NoError(t, err)

	all, err := store.ListRSVPs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsCancelled)
	require.NotNil(t, all[0].CancelledAt)
	assert.Empty(t, all[0].AdditionalGuests)
	assert.Empty(t, all[0].Allergens)
	assert.Equal(t, saved.ID, all[0].ID)
}

func TestSaveRSVPRejectsSecondReplyForGuest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	g := createGuest(t, store, "ana", "tok")

	_, err := store.SaveRSVP(ctx, rsvp.RSVP{GuestID: g.ID, CreatedAt: now, LastUpdated: now}, g)
	require.NoError(t, err)
	_, err = store.SaveRSVP(ctx, rsvp.RSVP{GuestID: g.ID, CreatedAt: now, LastUpdated: now}, g)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestDeleteGuestCascades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	g := createGuest(t, store, "ana", "tok")

	_, err := store.SaveRSVP(ctx, rsvp.RSVP{
		GuestID:          g.ID,
		IsAttending:      true,
		AdditionalGuests: []rsvp.AdditionalGuest{{Name: "Bea"}},
		Allergens:        []allergen.GuestAllergen{{GuestName: "Bea", Custom: "kiwi"}},
		CreatedAt:        now,
		LastUpdated:      now,
	}, g)
	require.NoError(t, err)
	_, err = store.CreateHistory(ctx, reminder.History{GuestID: g.ID, Type: reminder.TypeInitial, Status: reminder.StatusSent, CreatedAt: now})
	require.NoError(t, err)
	require.NoError(t, store.SavePreference(ctx, reminder.DefaultPreference(g.ID)))

	require.NoError(t, store.DeleteGuest(ctx, g.ID))

	_, err = store.GetRSVPByGuest(ctx, g.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	for _, table := range []string{"additional_guests", "guest_allergens", "reminder_history", "reminder_preferences"} {
		var n int
		require.NoError(t, store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func TestCreateAllergen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)

	a, err := store.CreateAllergen(ctx, "Corn")
	require.NoError(t, err)
	assert.NotZero(t, a.ID)
	_, err = store.CreateAllergen(ctx, "Corn")
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestReminderRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	ana := createGuest(t, store, "ana", "t1")
	bea := createGuest(t, store, "bea", "t2")

	pref, err := store.GetPreference(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, reminder.DefaultMaxReminders, pref.MaxReminders)

	h, err := store.CreateHistory(ctx, reminder.History{GuestID: ana.ID, Type: reminder.TypeInitial, Status: reminder.StatusPending, CreatedAt: now})
	require.NoError(t, err)
	require.NoError(t, store.UpdateHistory(ctx, h.MarkSent(now)))
	_, err = store.CreateHistory(ctx, reminder.History{GuestID: bea.ID, Type: reminder.TypeInitial, Status: reminder.StatusFailed, Error: "smtp down", CreatedAt: now.Add(time.Minute)})
	require.NoError(t, err)

	sent, err := store.SentTypes(ctx, reminder.TypeInitial)
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{ana.ID: true}, sent)

	history, err := store.ListHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, bea.ID, history[0].GuestID)
	assert.Equal(t, "smtp down", history[0].Error)

	require.NoError(t, store.SavePreference(ctx, reminder.Preference{GuestID: bea.ID, OptOut: true, MaxReminders: 4}))
	prefs, err := store.ListPreferences(ctx)
	require.NoError(t, err)
	assert.True(t, prefs[bea.ID].OptOut)

	counts, err := store.CountReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Sent)
	assert.Equal(t, 1, counts.Failed)
	assert.Equal(t, 1, counts.ByType[reminder.TypeInitial])
	assert.Equal(t, 0, counts.ByType[reminder.TypeFinal])
	assert.Equal(t, 1, counts.OptedOut)

	batch, err := store.CreateBatch(ctx, reminder.Batch{Kind: reminder.BatchScheduled, Type: reminder.TypeInitial, ExecutedBy: reminder.ExecutedByCron, StartedAt: now})
	require.NoError(t, err)
	completed := now.Add(time.Minute)
	batch.Total, batch.Sent, batch.Failed, batch.CompletedAt = 2, 1, 1, &completed
	require.NoError(t, store.UpdateBatch(ctx, batch))

	batches, err := store.ListBatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 2, batches[0].Total)
	require.NotNil(t, batches[0].CompletedAt)
	assert.True(t, batches[0].CompletedAt.Equal(completed))
}
