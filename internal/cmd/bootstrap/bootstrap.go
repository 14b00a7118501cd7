// Package bootstrap opens the wedding database and wires the use-case
// services shared by the site server and the operator CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
	"github.com/louisbranch/wedding.rsvp/internal/platform/telemetry/metrics"
	weddingapp "github.com/louisbranch/wedding.rsvp/internal/services/wedding/app"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/calendar"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/notify"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/storage/sqlite"
)

// Config holds the settings every command needs to reach the guest list.
type Config struct {
	DBPath        string `env:"WEDDING_DB_PATH" envDefault:"wedding.db"`
	PublicBaseURL string `env:"WEDDING_PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	WeddingDate   string `env:"WEDDING_WEDDING_DATE"`
	RSVPDeadline  string `env:"WEDDING_RSVP_DEADLINE"`
	Timezone      string `env:"WEDDING_TIMEZONE" envDefault:"Europe/Madrid"`
	Title         string `env:"WEDDING_TITLE" envDefault:"Our Wedding"`
	AdminPhone    string `env:"WEDDING_ADMIN_PHONE"`
	AdminEmail    string `env:"WEDDING_ADMIN_EMAIL"`
	// WarningCutoffDays is how many days before the wedding replies lock.
	WarningCutoffDays int `env:"WEDDING_WARNING_CUTOFF_DAYS" envDefault:"7"`

	SMTP notify.SMTPConfig
	Log  logging.Config
}

// Validate reports missing required settings.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.DBPath) == "" {
		problems = append(problems, "database path is required")
	}
	if strings.TrimSpace(c.WeddingDate) == "" {
		problems = append(problems, "WEDDING_WEDDING_DATE is required")
	}
	if strings.TrimSpace(c.RSVPDeadline) == "" {
		problems = append(problems, "WEDDING_RSVP_DEADLINE is required")
	}
	if c.WarningCutoffDays < 0 {
		problems = append(problems, "WEDDING_WARNING_CUTOFF_DAYS must not be negative")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Calendar parses the configured dates in the configured time zone.
func (c Config) Calendar() (calendar.Calendar, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(c.Timezone))
	if err != nil {
		return calendar.Calendar{}, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	cal, err := calendar.Parse(c.WeddingDate, c.RSVPDeadline, loc)
	if err != nil {
		return calendar.Calendar{}, err
	}
	if c.WarningCutoffDays > 0 {
		cal.EditCutoff = time.Duration(c.WarningCutoffDays) * 24 * time.Hour
	}
	return cal, nil
}

// Settings returns the site facts shown to guests.
func (c Config) Settings() weddingapp.Settings {
	return weddingapp.Settings{
		Title:         strings.TrimSpace(c.Title),
		AdminPhone:    strings.TrimSpace(c.AdminPhone),
		AdminEmail:    strings.TrimSpace(c.AdminEmail),
		PublicBaseURL: strings.TrimSpace(c.PublicBaseURL),
	}
}

// Options carries process collaborators into Open.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Clock   func() time.Time
	// Sender overrides the sender chosen from the SMTP settings.
	Sender notify.Sender
}

// Runtime is an open database with services wired over it.
type Runtime struct {
	Store    *sqlite.Store
	Calendar calendar.Calendar
	Settings weddingapp.Settings
	Services *weddingapp.Services
	Sender   notify.Sender
}

// Open validates cfg, opens the database and builds the services.
func Open(ctx context.Context, cfg Config, opts Options) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.OrNop(opts.Logger)
	cal, err := cfg.Calendar()
	if err != nil {
		return nil, err
	}
	sender, err := newSender(cfg.SMTP, opts.Sender, logger)
	if err != nil {
		return nil, err
	}
	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	settings := cfg.Settings()
	services := weddingapp.New(weddingapp.Deps{
		Store:    store,
		Calendar: cal,
		Settings: settings,
		Sender:   sender,
		Metrics:  opts.Metrics,
		Logger:   logger,
		Clock:    opts.Clock,
	})
	return &Runtime{
		Store:    store,
		Calendar: cal,
		Settings: settings,
		Services: services,
		Sender:   sender,
	}, nil
}

// Close releases the database.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	return r.Store.Close()
}

func newSender(cfg notify.SMTPConfig, override notify.Sender, logger *zap.Logger) (notify.Sender, error) {
	if override != nil {
		return override, nil
	}
	if !cfg.Enabled() {
		logger.Warn("smtp not configured, emails will only be logged")
		return notify.NewLogSender(logger), nil
	}
	sender, err := notify.NewSMTPSender(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure smtp: %w", err)
	}
	return sender, nil
}
