package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/calendar"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/notify"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/storage/sqlite"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) messages() []notify.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Message(nil), f.sent...)
}

type fixture struct {
	services *Services
	store    *sqlite.Store
	sender   *fakeSender
	logs     *observer.ObservedLogs
	now      time.Time
}

func day(value string) time.Time {
	t, err := time.ParseInLocation(calendar.DateLayout, value, time.UTC)
	if err != nil {
		panic(err)
	}
	return t.Add(10 * time.Hour)
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "wedding.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cal, err := calendar.Parse("2026-06-06", "2026-05-06", time.UTC)
	require.NoError(t, err)

	core, logs := observer.New(zap.DebugLevel)
	f := &fixture{store: store, sender: &fakeSender{}, logs: logs, now: now}
	f.services = New(Deps{
		Store:    store,
		Calendar: cal,
		Settings: Settings{
			Title:         "Ana & Luis",
			AdminPhone:    "+34 600 000 000",
			AdminEmail:    "admin@example.com",
			PublicBaseURL: "https://wedding.example.com/",
		},
		Sender: f.sender,
		Logger: zap.New(core),
		Clock:  func() time.Time { return f.now },
	})
	_, err = f.services.Allergens.EnsureDefaults(ctx)
	require.NoError(t, err)
	return f
}

func (f *fixture) addGuest(t *testing.T, g guest.Guest) guest.Guest {
	t.Helper()
	if g.Phone == "" {
		g.Phone = "600111222"
	}
	created, err := f.services.Guests.Add(context.Background(), g)
	require.NoError(t, err)
	return created
}

var errSMTPDown = errors.New("smtp down")

func TestSettingsRSVPLink(t *testing.T) {
	t.Parallel()

	s := Settings{PublicBaseURL: " https://wedding.example.com/ "}
	require.Equal(t, "https://wedding.example.com/rsvp/a%2Fb", s.RSVPLink("a/b"))
}
