// Package main provides the terminal front-end for the homelab dashboard.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/homelabdash/homelabdash/internal/app"
	"github.com/homelabdash/homelabdash/internal/config"
	"github.com/homelabdash/homelabdash/internal/source"
	"github.com/homelabdash/homelabdash/internal/tui"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	const serviceName = "homelab-dashboard-tui"

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The alternate screen owns stdout, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	log := app.NewLogger(out, cfg, serviceName, Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := app.OpenSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer src.Close()

	loader := source.NewLoader(source.LoaderConfig{Source: src.Source, Logger: log})

	return tui.Run(ctx, tui.New(tui.Config{Loader: loader, Logger: log}))
}
