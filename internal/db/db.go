// Package db owns the connection pool lifecycle and the static schema.
// The pool is created explicitly with Open and closed by its owner; nothing
// in this package keeps process-wide state.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/cts/internal/config"
)

// Options configures a connection pool.
type Options struct {
	Driver          string // config.DriverSQLite or config.DriverPostgres
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// OptionsFrom maps the database section of the config.
func OptionsFrom(c config.DatabaseConfig) Options {
	return Options{
		Driver:          c.Driver,
		URL:             c.URL,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
	}
}

// DriverName maps a configured driver to its database/sql driver name.
func DriverName(driver string) (string, error) {
	switch driver {
	case config.DriverSQLite, "sqlite3":
		return "sqlite3", nil
	case config.DriverPostgres, "pgx":
		return "pgx", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// Open creates the pool, verifies connectivity and applies pending
// migrations. The caller owns the returned pool and must Close it.
func Open(ctx context.Context, opts Options) (*sqlx.DB, error) {
	name, err := DriverName(opts.Driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.URL) == "" {
		return nil, fmt.Errorf("database url required")
	}

	url := opts.URL
	if name == "sqlite3" {
		url = sqliteDSN(url)
	}

	database, err := sqlx.Open(name, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		database.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		database.SetMaxIdleConns(opts.MaxIdleConns)
	}
	database.SetConnMaxLifetime(opts.ConnMaxLifetime)
	database.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	if name == "sqlite3" && strings.Contains(url, ":memory:") {
		// every connection to :memory: is a separate database
		database.SetMaxOpenConns(1)
		database.SetConnMaxLifetime(0)
		database.SetConnMaxIdleTime(0)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(ctx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return database, nil
}

// sqliteDSN turns a plain path into a DSN with foreign keys and a busy
// timeout enabled. DSNs that already carry options are left alone.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}
