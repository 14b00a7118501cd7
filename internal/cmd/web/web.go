// Package web wires configuration and collaborators for the site server.
package web

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/louisbranch/wedding.rsvp/internal/cmd/bootstrap"
	platformcmd "github.com/louisbranch/wedding.rsvp/internal/platform/cmd"
	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
	"github.com/louisbranch/wedding.rsvp/internal/platform/ratelimit"
	"github.com/louisbranch/wedding.rsvp/internal/platform/telemetry/metrics"
	"github.com/louisbranch/wedding.rsvp/internal/platform/timeouts"
	"github.com/louisbranch/wedding.rsvp/internal/services/web"
	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/requestmeta"
	weddingapp "github.com/louisbranch/wedding.rsvp/internal/services/wedding/app"
)

// Config holds the web command configuration.
type Config struct {
	bootstrap.Config

	HTTPAddr            string        `env:"WEDDING_HTTP_ADDR" envDefault:"localhost:8080"`
	AdminPassword       string        `env:"WEDDING_ADMIN_PASSWORD"`
	AdminPasswordHash   string        `env:"WEDDING_ADMIN_PASSWORD_HASH"`
	SessionSecret       string        `env:"WEDDING_SESSION_SECRET"`
	CronSecret          string        `env:"WEDDING_CRON_SECRET_KEY"`
	TrustForwardedProto bool          `env:"WEDDING_TRUST_FORWARDED_PROTO"`
	RateLimitRequests   int           `env:"WEDDING_RATE_LIMIT_REQUESTS" envDefault:"30"`
	RateLimitWindow     time.Duration `env:"WEDDING_RATE_LIMIT_WINDOW" envDefault:"5m"`
	LoginRateLimit      int           `env:"WEDDING_LOGIN_RATE_LIMIT" envDefault:"5"`
}

// ParseConfig loads environment defaults and applies flag overrides.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.PublicBaseURL, "public-base-url", cfg.PublicBaseURL, "Absolute site URL used in emails")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level (debug, info, warn, error)")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the site server and blocks until ctx is done.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(platformcmd.ServiceWeb, cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return platformcmd.Run(ctx, platformcmd.ServiceWeb, logger, func(ctx context.Context) error {
		deps, runtime, err := NewDependencies(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := runtime.Close(); err != nil {
				logger.Warn("close database", zap.Error(err))
			}
		}()

		server, err := web.NewServer(web.Config{HTTPAddr: cfg.HTTPAddr}, deps)
		if err != nil {
			return fmt.Errorf("init web server: %w", err)
		}
		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve web: %w", err)
		}
		return nil
	})
}

// NewDependencies opens the database, seeds the allergen list on first
// start and builds the module dependencies. Callers close the runtime.
func NewDependencies(ctx context.Context, cfg Config, logger *zap.Logger) (module.Dependencies, *bootstrap.Runtime, error) {
	logger = logging.OrNop(logger)
	m := metrics.New()
	runtime, err := bootstrap.Open(ctx, cfg.Config, bootstrap.Options{Logger: logger, Metrics: m})
	if err != nil {
		return module.Dependencies{}, nil, err
	}

	if _, err := runtime.Services.Allergens.EnsureDefaults(ctx); err != nil {
		_ = runtime.Close()
		return module.Dependencies{}, nil, fmt.Errorf("seed allergens: %w", err)
	}

	auth, err := weddingapp.NewAuth(weddingapp.AuthConfig{
		PasswordHash: cfg.AdminPasswordHash,
		Password:     cfg.AdminPassword,
		Secret:       []byte(cfg.SessionSecret),
	}, m, logger, nil)
	if err != nil {
		_ = runtime.Close()
		return module.Dependencies{}, nil, fmt.Errorf("configure admin auth: %w", err)
	}
	if cfg.CronSecret == "" {
		logger.Warn("cron secret not configured, cron endpoints will refuse requests")
	}

	store := runtime.Store
	deps := module.Dependencies{
		Services:     runtime.Services,
		Auth:         auth,
		Calendar:     runtime.Calendar,
		Settings:     runtime.Settings,
		Metrics:      m,
		Logger:       logger,
		Policy:       requestmeta.SchemePolicy{TrustForwardedProto: cfg.TrustForwardedProto},
		Limiter:      ratelimit.New(cfg.RateLimitRequests, cfg.RateLimitWindow),
		LoginLimiter: ratelimit.New(cfg.LoginRateLimit, cfg.RateLimitWindow),
		CronSecret:   cfg.CronSecret,
		Ping: func(r *http.Request) error {
			ctx, cancel := context.WithTimeout(r.Context(), timeouts.HealthCheck)
			defer cancel()
			return store.Ping(ctx)
		},
	}
	return deps, runtime, nil
}
