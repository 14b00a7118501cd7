// Package main runs the wedding operator CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/wedding.rsvp/internal/cmd/weddingctl"
	"github.com/louisbranch/wedding.rsvp/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := weddingctl.Execute(ctx, os.Args[1:], weddingctl.Options{}); err != nil {
		config.Exitf("weddingctl: %v", err)
	}
}
