// Package cmd holds startup helpers shared by the site server and the
// operator CLI.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/louisbranch/wedding.rsvp/internal/platform/config"
	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
	"github.com/louisbranch/wedding.rsvp/internal/platform/otel"
	"github.com/louisbranch/wedding.rsvp/internal/platform/timeouts"
)

// Service names reported to the trace collector and the logger.
const (
	ServiceWeb = "web"
	ServiceCtl = "weddingctl"
)

// ParseConfig fills cfg from WEDDING_* environment variables.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs applies command-line flags on top of the environment values
// already bound to fs.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// Run starts tracing for service, calls fn and flushes pending spans once
// fn returns. Flush failures are logged, never returned.
func Run(ctx context.Context, service string, logger *zap.Logger, fn func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if fn == nil {
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger = logging.OrNop(logger)

	shutdown, err := otel.SetupFromEnv(ctx, service)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("flush traces", zap.String("service", service), zap.Error(err))
		}
	}()
	return fn(ctx)
}
