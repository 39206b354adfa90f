// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package database reads the track catalog through database/sql.
//
// Two drivers are supported:
//   - duckdb: a CSV or Parquet file read in place by DuckDB, or a table inside
//     a DuckDB database file
//   - sqlite3: a table inside a SQLite database file
//
// Every cell is scanned as a nullable string so the catalog builder sees the
// data exactly as stored; NULL becomes the empty string.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/config"
)

// Supported drivers.
const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite3"
)

var (
	// ErrUnsupportedDriver is returned for drivers other than duckdb and sqlite3.
	ErrUnsupportedDriver = errors.New("unsupported catalog driver")

	// ErrInvalidIdentifier is returned when a table name is not a plain SQL identifier.
	ErrInvalidIdentifier = errors.New("invalid table identifier")

	// ErrUnsupportedFormat is returned when a file read by duckdb is neither CSV nor Parquet.
	ErrUnsupportedFormat = errors.New("unsupported catalog file format")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DB is an open catalog source.
type DB struct {
	conn   *sql.DB
	cfg    config.CatalogConfig
	logger zerolog.Logger
}

// Open opens the catalog source described by cfg and verifies the connection.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg *config.CatalogConfig, logger zerolog.Logger) (*DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("catalog config is nil")
	}
	if cfg.Table != "" && !identifierPattern.MatchString(cfg.Table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, cfg.Table)
	}

	var dsn string
	switch cfg.Driver {
	case DriverDuckDB:
		if cfg.Table == "" {
			// Files are read in place from an in-memory database.
			dsn = ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false"
		} else {
			dsn = cfg.Path + "?access_mode=read_only"
		}
	case DriverSQLite:
		if cfg.Table == "" {
			return nil, fmt.Errorf("sqlite3 catalog requires a table name")
		}
		dsn = "file:" + cfg.Path + "?mode=ro"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	conn, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s catalog: %w", cfg.Driver, err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{
		conn:   conn,
		cfg:    *cfg,
		logger: logger.With().Str("component", "database").Str("driver", cfg.Driver).Logger(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping %s catalog: %w", cfg.Driver, err)
	}
	return db, nil
}

// Ping checks that the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Close closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// sourceQuery returns the SELECT statement reading the whole catalog.
func (db *DB) sourceQuery() (string, error) {
	if db.cfg.Table != "" {
		return "SELECT * FROM " + quoteIdentifier(db.cfg.Table), nil
	}

	path := quoteLiteral(db.cfg.Path)
	switch strings.ToLower(filepath.Ext(db.cfg.Path)) {
	case ".csv", ".tsv", ".txt":
		return "SELECT * FROM read_csv_auto(" + path + ", header=true, all_varchar=true)", nil
	case ".parquet":
		return "SELECT * FROM read_parquet(" + path + ")", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, db.cfg.Path)
	}
}

func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// closeQuietly closes a resource in error paths where the close error is not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
