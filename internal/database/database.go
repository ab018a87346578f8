// Package database opens the Postgres pool shared by the wine store and the
// raw SQL executor.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	// Registers the "postgres" driver.
	_ "github.com/lib/pq"

	"github.com/hupe1980/winemesh/logging"
)

// ErrNotConfigured is returned when required connection settings are missing.
var ErrNotConfigured = errors.New("database not configured")

// Config describes the connection and pool settings.
type Config struct {
	Driver   string
	Name     string
	User     string
	Password string
	Host     string
	Port     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	// CommandTimeout bounds every statement issued through DB.
	CommandTimeout time.Duration
}

// DefaultConfig returns the pool settings used in production.
func DefaultConfig() Config {
	return Config{
		Driver:          "postgres",
		SSLMode:         "require",
		MaxOpenConns:    10,
		MaxIdleConns:    1,
		ConnMaxIdleTime: 300 * time.Second,
		CommandTimeout:  60 * time.Second,
	}
}

// Missing lists the names of required settings that are empty.
func (c Config) Missing() []string {
	var missing []string
	for _, kv := range []struct{ key, val string }{
		{"DATABASE", c.Name},
		{"DB_USER", c.User},
		{"DB_PASSWORD", c.Password},
		{"DB_HOST", c.Host},
		{"DB_PORT", c.Port},
	} {
		if kv.val == "" {
			missing = append(missing, kv.key)
		}
	}
	return missing
}

// DSN renders a lib/pq connection URL.
func (c Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

// DB is a pooled connection with a per-statement timeout.
type DB struct {
	*sql.DB
	timeout time.Duration
}

// Open connects and pings the database.
func Open(ctx context.Context, cfg Config, logger logging.Logger) (*DB, error) {
	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}
	if cfg.Driver == "" {
		cfg.Driver = "postgres"
	}

	sqlDB, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db := New(sqlDB, cfg.CommandTimeout)
	if err := db.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		logger.Error("database.connect.failed", "host", cfg.Host, "database", cfg.Name, "error", err)
		return nil, err
	}

	logger.Info("database.connected", "host", cfg.Host, "database", cfg.Name, "max_open", cfg.MaxOpenConns)
	return db, nil
}

// New wraps an existing handle. A non-positive timeout disables the
// per-statement deadline.
func New(sqlDB *sql.DB, timeout time.Duration) *DB {
	return &DB{DB: sqlDB, timeout: timeout}
}

// WithTimeout derives the statement context.
func (db *DB) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, db.timeout)
}

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}
