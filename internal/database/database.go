// Package database manages the PostgreSQL pool behind the database source.
package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds database connection configuration.
type Config struct {
	Host            string        `env:"DB_HOST"              envDefault:"localhost"`
	Port            int           `env:"DB_PORT"              envDefault:"5432"`
	User            string        `env:"DB_USER"              envDefault:"homelab"`
	Password        string        `env:"DB_PASSWORD"          envDefault:"localdev"`
	Database        string        `env:"DB_NAME"              envDefault:"homelab"`
	SSLMode         string        `env:"DB_SSL_MODE"          envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS"    envDefault:"4"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS"    envDefault:"1"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`

	// ConnectAttempts bounds the startup ping; ConnectBackoff is the first
	// delay between attempts, doubling up to maxConnectBackoff.
	ConnectAttempts int           `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`
	ConnectBackoff  time.Duration `env:"DB_CONNECT_BACKOFF"  envDefault:"500ms"`
}

const maxConnectBackoff = 5 * time.Second

// ConfigFromEnv reads the DB_* environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse database env: %w", err)
	}
	return cfg, nil
}

// ConnectionString returns the PostgreSQL URL. Credentials are escaped.
func (c Config) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Connect creates a pool and verifies it with a ping, retrying with
// exponential backoff up to ConnectAttempts times.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns) //nolint:gosec // small configured value
	poolConfig.MinConns = int32(cfg.MaxIdleConns) //nolint:gosec // small configured value
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	attempts := 0
	ping := func() error {
		attempts++
		return pool.Ping(ctx)
	}
	if err := backoff.Retry(ping, cfg.connectPolicy(ctx)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database after %d attempts: %w", attempts, err)
	}

	return pool, nil
}

// connectPolicy retries the startup ping while the database comes up.
func (c Config) connectPolicy(ctx context.Context) backoff.BackOffContext {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.ConnectBackoff
	if bo.InitialInterval <= 0 {
		bo.InitialInterval = 500 * time.Millisecond
	}
	bo.MaxInterval = maxConnectBackoff
	bo.MaxElapsedTime = 0

	retries := uint64(0)
	if c.ConnectAttempts > 1 {
		retries = uint64(c.ConnectAttempts - 1)
	}
	return backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx)
}
