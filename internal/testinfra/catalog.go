// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package testinfra provides catalog fixtures shared by package tests.
//
// Tests describe tracks with TrackSpec and turn them into a catalog.Table,
// a built *catalog.Catalog, or files on disk for the storage loaders:
//
//	cat := testinfra.MustCatalog(t,
//	    testinfra.TrackSpec{ID: "a", Artists: "X", Genre: "rock", Popularity: 90, Features: testinfra.Flat(0.5)},
//	)
package testinfra

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/catalog"
)

// TrackSpec describes one fixture row. Empty Name defaults to "Track <ID>".
type TrackSpec struct {
	ID         string
	Name       string
	Album      string
	Artists    string
	Genre      string
	Popularity float64
	Features   [catalog.Dim]float64
}

// Columns is the fixture table header in dataset order.
func Columns() []string {
	cols := []string{
		catalog.ColumnTrackID,
		catalog.ColumnArtists,
		catalog.ColumnAlbumName,
		catalog.ColumnTrackName,
		catalog.ColumnPopularity,
	}
	cols = append(cols, catalog.FeatureNames...)
	return append(cols, catalog.ColumnGenre)
}

// Row renders a spec as table cells matching Columns.
func (s TrackSpec) Row() []string {
	name := s.Name
	if name == "" {
		name = "Track " + s.ID
	}
	row := []string{s.ID, s.Artists, s.Album, name, formatFloat(s.Popularity)}
	for _, f := range s.Features {
		row = append(row, formatFloat(f))
	}
	return append(row, s.Genre)
}

// Table renders specs as a catalog table.
func Table(specs ...TrackSpec) *catalog.Table {
	t := &catalog.Table{Columns: Columns(), Rows: make([][]string, 0, len(specs))}
	for _, s := range specs {
		t.Rows = append(t.Rows, s.Row())
	}
	return t
}

// MustCatalog builds a catalog from specs and fails the test on error.
func MustCatalog(t testing.TB, specs ...TrackSpec) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Build(Table(specs...), zerolog.Nop())
	if err != nil {
		t.Fatalf("catalog.Build: %v", err)
	}
	return c
}

// Flat returns a feature array with every bounded feature set to v and
// loudness and tempo at 0.
func Flat(v float64) [catalog.Dim]float64 {
	var f [catalog.Dim]float64
	for i := 0; i < 7; i++ {
		f[i] = v
	}
	return f
}

// Features returns a feature array from the bounded features; loudness and
// tempo are left at 0.
func Features(bounded ...float64) [catalog.Dim]float64 {
	var f [catalog.Dim]float64
	copy(f[:7], bounded)
	return f
}

// WriteCSV writes the table to dir/name and returns the path.
func WriteCSV(t testing.TB, dir, name string, table *catalog.Table) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := w.WriteAll(table.Rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	return path
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
