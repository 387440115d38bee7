// Package app wires configuration into the pieces both binaries share.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/homelabdash/homelabdash/internal/api/handler"
	"github.com/homelabdash/homelabdash/internal/config"
	"github.com/homelabdash/homelabdash/internal/database"
	"github.com/homelabdash/homelabdash/internal/source"
	"github.com/homelabdash/homelabdash/internal/source/resilience"
)

// NewLogger builds the process logger. An unparseable LOG_LEVEL falls back
// to info.
func NewLogger(w io.Writer, cfg config.Config, service, version string) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Str("version", version).
		Logger()
}

// Source is the configured data source plus what the ops endpoints report
// about it.
type Source struct {
	Source   source.Source
	Registry *resilience.Registry
	Checks   []handler.Check

	close func()
}

// Close releases the source's resources.
func (s *Source) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenSource selects the source named by DASHBOARD_SOURCE. The database mode
// connects before returning.
func OpenSource(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Source, error) {
	registry := resilience.NewRegistry()

	switch cfg.SourceMode {
	case config.SourceStatic:
		logger.Info().Str("mode", string(cfg.SourceMode)).Msg("using bundled services")
		return &Source{Source: source.NewStatic(nil), Registry: registry}, nil

	case config.SourceFetch:
		fetched := source.NewFetched(source.FetchedConfig{
			BaseURL:  cfg.SourceURL,
			Registry: registry,
		})
		logger.Info().
			Str("mode", string(cfg.SourceMode)).
			Str("url", fetched.URL()).
			Msg("fetching services document")
		return &Source{Source: fetched, Registry: registry}, nil

	case config.SourceDatabase:
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		logger.Info().
			Str("mode", string(cfg.SourceMode)).
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.Database).
			Msg("database connected")

		return &Source{
			Source:   source.NewDatabase(source.NewPostgresRepository(pool)),
			Registry: registry,
			Checks:   []handler.Check{{Name: "postgres", Run: pool.Ping}},
			close:    pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", config.ErrInvalidSourceMode, cfg.SourceMode)
}
