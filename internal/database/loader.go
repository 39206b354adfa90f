// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/config"
)

// LoadTable reads every row of the catalog source into a catalog.Table.
func (db *DB) LoadTable(ctx context.Context) (*catalog.Table, error) {
	query, err := db.sourceQuery()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog columns: %w", err)
	}

	table := &catalog.Table{Columns: columns}
	cells := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range cells {
		dest[i] = &cells[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row %d: %w", len(table.Rows)+1, err)
		}
		record := make([]string, len(columns))
		for i, c := range cells {
			if c.Valid {
				record[i] = c.String
			}
		}
		table.Rows = append(table.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog rows: %w", err)
	}

	db.logger.Info().
		Str("path", db.cfg.Path).
		Str("table", db.cfg.Table).
		Int("columns", len(columns)).
		Int("rows", len(table.Rows)).
		Dur("duration", time.Since(start)).
		Msg("Catalog table loaded")

	return table, nil
}

// LoadCatalogTable opens the source described by cfg, reads it and closes it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func LoadCatalogTable(ctx context.Context, cfg *config.CatalogConfig, logger zerolog.Logger) (*catalog.Table, error) {
	db, err := Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := db.Close(); err != nil {
			db.logger.Warn().Err(err).Msg("Failed to close catalog source")
		}
	}()
	return db.LoadTable(ctx)
}
