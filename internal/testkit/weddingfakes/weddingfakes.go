// Package weddingfakes wires web dependencies over a temporary database
// for handler tests.
package weddingfakes

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/louisbranch/wedding.rsvp/internal/platform/telemetry/metrics"
	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/sessioncookie"
	weddingapp "github.com/louisbranch/wedding.rsvp/internal/services/wedding/app"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/calendar"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/notify"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/storage/sqlite"
)

// Fixture constants shared by handler tests.
const (
	AdminPassword = "correct horse"
	CronSecret    = "cron-secret"
	AdminPhone    = "+34 600 000 000"
	WeddingDate   = "2026-06-06"
	RSVPDeadline  = "2026-05-06"
)

// Sender records outgoing messages.
type Sender struct {
	mu   sync.Mutex
	sent []notify.Message
	// Err fails every send when set.
	Err error
}

// Send records msg or returns Err.
func (s *Sender) Send(_ context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.sent = append(s.sent, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (s *Sender) Messages() []notify.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Message(nil), s.sent...)
}

// Env is a complete dependency set for one test.
type Env struct {
	Store  *sqlite.Store
	Sender *Sender
	Logs   *observer.ObservedLogs
	Deps   module.Dependencies

	mu  sync.Mutex
	now time.Time
}

// NewEnv opens a fresh database and wires services with the clock at now.
func NewEnv(t testing.TB, now time.Time) *Env {
	t.Helper()

	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "wedding.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cal, err := calendar.Parse(WeddingDate, RSVPDeadline, time.UTC)
	if err != nil {
		t.Fatalf("parse calendar: %v", err)
	}

	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	env := &Env{Store: store, Sender: &Sender{}, Logs: logs, now: now}

	settings := weddingapp.Settings{
		Title:         "Ana & Luis",
		AdminPhone:    AdminPhone,
		AdminEmail:    "admin@example.com",
		PublicBaseURL: "https://wedding.example.com",
	}
	m := metrics.New()
	services := weddingapp.New(weddingapp.Deps{
		Store:    store,
		Calendar: cal,
		Settings: settings,
		Sender:   env.Sender,
		Metrics:  m,
		Logger:   logger,
		Clock:    env.Now,
	})
	if _, err := services.Allergens.EnsureDefaults(ctx); err != nil {
		t.Fatalf("seed allergens: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	auth, err := weddingapp.NewAuth(weddingapp.AuthConfig{
		PasswordHash: string(hash),
		Secret:       []byte("0123456789abcdef0123456789abcdef"),
	}, m, logger, env.Now)
	if err != nil {
		t.Fatalf("new auth: %v", err)
	}

	env.Deps = module.Dependencies{
		Services:   services,
		Auth:       auth,
		Calendar:   cal,
		Settings:   settings,
		Metrics:    m,
		Logger:     logger,
		CronSecret: CronSecret,
		Ping:       func(r *http.Request) error { return store.Ping(r.Context()) },
		Clock:      env.Now,
	}
	return env
}

// Now returns the fixture clock.
func (e *Env) Now() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

// SetNow moves the fixture clock.
func (e *Env) SetNow(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// AddGuest stores g, filling a phone number when missing.
func (e *Env) AddGuest(t testing.TB, g guest.Guest) guest.Guest {
	t.Helper()
	if g.Phone == "" {
		g.Phone = "600111222"
	}
	created, err := e.Deps.Services.Guests.Add(context.Background(), g)
	if err != nil {
		t.Fatalf("add guest: %v", err)
	}
	return created
}

// AdminCookie returns a valid admin session cookie.
func (e *Env) AdminCookie(t testing.TB) *http.Cookie {
	t.Helper()
	token, err := e.Deps.Auth.Issue()
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return &http.Cookie{Name: sessioncookie.Name, Value: token}
}

// Day returns 10:00 UTC on a YYYY-MM-DD date.
func Day(value string) time.Time {
	t, err := time.ParseInLocation(calendar.DateLayout, value, time.UTC)
	if err != nil {
		panic(err)
	}
	return t.Add(10 * time.Hour)
}
