// Package web assembles the site handler and runs the HTTP server.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
	"github.com/louisbranch/wedding.rsvp/internal/platform/ratelimit"
	"github.com/louisbranch/wedding.rsvp/internal/platform/timeouts"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/app"
	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/modules"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/httpx"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/observability"
)

// defaultPruneInterval controls how often idle rate limiter entries are
// evicted.
const defaultPruneInterval = time.Minute

// Config defines the inputs for the web server.
type Config struct {
	HTTPAddr string
	// PruneInterval overrides defaultPruneInterval.
	PruneInterval time.Duration
}

// Server hosts the site HTTP handler.
type Server struct {
	httpAddr      string
	httpServer    *http.Server
	limiters      []*ratelimit.MapLimiter
	pruneInterval time.Duration
	clock         func() time.Time
	logger        *zap.Logger
}

// NewHandler composes every module behind the shared middleware stack.
func NewHandler(deps module.Dependencies) (http.Handler, error) {
	if deps.Services == nil {
		return nil, errors.New("wedding services are required")
	}
	if deps.Auth == nil {
		return nil, errors.New("admin authenticator is required")
	}
	deps.Logger = logging.OrNop(deps.Logger)
	root, err := app.Compose(app.ComposeInput{
		PublicModules:    modules.DefaultPublicModules(deps),
		ProtectedModules: modules.DefaultProtectedModules(deps),
		Sessions:         deps.Auth,
		Policy:           deps.Policy,
		Logger:           deps.Logger,
		Clock:            deps.Clock,
	})
	if err != nil {
		return nil, fmt.Errorf("compose modules: %w", err)
	}
	return httpx.Chain(root,
		httpx.RecoverPanic(deps.Logger),
		httpx.RequestID(),
		observability.RequestLogger(deps.Logger),
		deps.Metrics.Middleware,
	), nil
}

// NewServer builds a configured web server.
func NewServer(config Config, deps module.Dependencies) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(deps)
	if err != nil {
		return nil, err
	}
	pruneInterval := config.PruneInterval
	if pruneInterval <= 0 {
		pruneInterval = defaultPruneInterval
	}
	var limiters []*ratelimit.MapLimiter
	for _, limiter := range []*ratelimit.MapLimiter{deps.Limiter, deps.LoginLimiter} {
		if limiter != nil {
			limiters = append(limiters, limiter)
		}
	}
	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		limiters:      limiters,
		pruneInterval: pruneInterval,
		clock:         deps.Now,
		logger:        logging.OrNop(deps.Logger),
	}, nil
}

// Handler returns the composed root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe listens on the configured address until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	listener, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpAddr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is done, then shuts the
// server down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	g, gctx := errgroup.WithContext(ctx)
	serveErr := make(chan error, 1)
	s.logger.Info("web listening", zap.String("addr", listener.Addr().String()))
	g.Go(func() error {
		err := s.httpServer.Serve(listener)
		serveErr <- err
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	})
	g.Go(func() error {
		s.pruneLimiters(gctx)
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-serveErr:
			return nil
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) pruneLimiters(ctx context.Context) {
	if len(s.limiters) == 0 {
		return
	}
	ticker := time.NewTicker(s.pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.clock()
			for _, limiter := range s.limiters {
				limiter.Prune(now)
			}
		}
	}
}
