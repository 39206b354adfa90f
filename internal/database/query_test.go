// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package database

import (
	"errors"
	"testing"

	"github.com/tomtom215/encore/internal/config"
)

func TestSourceQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.CatalogConfig
		want    string
		wantErr error
	}{
		{"table", config.CatalogConfig{Table: "tracks"}, `SELECT * FROM "tracks"`, nil},
		{"csv", config.CatalogConfig{Path: "/data/dataset.csv"}, "SELECT * FROM read_csv_auto('/data/dataset.csv', header=true, all_varchar=true)", nil},
		{"upper case parquet", config.CatalogConfig{Path: "/data/Tracks.PARQUET"}, "SELECT * FROM read_parquet('/data/Tracks.PARQUET')", nil},
		{"quote in path", config.CatalogConfig{Path: "/data/o'neil.csv"}, "SELECT * FROM read_csv_auto('/data/o''neil.csv', header=true, all_varchar=true)", nil},
		{"no extension", config.CatalogConfig{Path: "/data/tracks"}, "", ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		db := &DB{cfg: tt.cfg}
		got, err := db.sourceQuery()
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: query = %q, want %q", tt.name, got, tt.want)
		}
	}
}
