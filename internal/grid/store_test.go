// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package grid

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/wneessen/dist2coast/internal/geo"
)

const (
	testGridFile      = "../../testdata/dist2coast_sample.txt"
	testGridFileBZ2   = "../../testdata/dist2coast_sample.txt.bz2"
	testGridFileCSV   = "../../testdata/dist2coast_sample.csv"
	testGridIncomplet = "../../testdata/dist2coast_incomplete.txt"
	testGridInvalid   = "../../testdata/dist2coast_invalid.txt"
)

var testBounds = Bounds{MinLat: 29.9, MaxLat: 30.1, MinLon: -90.1, MaxLon: -89.9}

func testStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := LoadFile(path, LoadOptions{Bounds: testBounds, Precision: 2})
	if err != nil {
		t.Fatalf("failed to load grid file: %s", err)
	}
	return store
}

func TestLoadFile(t *testing.T) {
	for _, path := range []string{testGridFile, testGridFileBZ2, testGridFileCSV} {
		t.Run("loading "+path+" succeeds", func(t *testing.T) {
			store := testStore(t, path)
			if store.Len() != 16 {
				t.Errorf("expected 16 grid points, got %d", store.Len())
			}
			if !strings.HasPrefix(store.Name(), "file:dist2coast_sample") {
				t.Errorf("unexpected store name: %s", store.Name())
			}
			if err := store.Validate(0.04); err != nil {
				t.Errorf("expected grid to be consistent, got %s", err)
			}
		})
	}
	t.Run("loading without bounds keeps points outside the region", func(t *testing.T) {
		store, err := LoadFile(testGridFile, LoadOptions{Precision: 2})
		if err != nil {
			t.Fatalf("failed to load grid file: %s", err)
		}
		if store.Len() != 17 {
			t.Errorf("expected 17 grid points, got %d", store.Len())
		}
		if err = store.Validate(0.04); !errors.Is(err, ErrInconsistentGrid) {
			t.Errorf("expected inconsistent grid error, got %v", err)
		}
	})
	t.Run("loading a non-existent file fails", func(t *testing.T) {
		if _, err := LoadFile("non-existent.txt", LoadOptions{}); err == nil {
			t.Error("expected error, but didn't get one")
		}
	})
	t.Run("loading an invalid file fails", func(t *testing.T) {
		_, err := LoadFile(testGridInvalid, LoadOptions{Precision: 2})
		if err == nil {
			t.Fatal("expected error, but didn't get one")
		}
		if !strings.Contains(err.Error(), "line 2") {
			t.Errorf("expected error to name line 2, got %s", err)
		}
	})
	t.Run("an incomplete lattice fails validation", func(t *testing.T) {
		store := testStore(t, testGridIncomplet)
		if err := store.Validate(0.04); !errors.Is(err, ErrInconsistentGrid) {
			t.Errorf("expected inconsistent grid error, got %v", err)
		}
	})
	t.Run("a region without points fails", func(t *testing.T) {
		_, err := LoadFile(testGridFile, LoadOptions{Bounds: Bounds{MinLat: 0, MaxLat: 1, MinLon: 0, MaxLon: 1}})
		if !errors.Is(err, ErrEmptyGrid) {
			t.Errorf("expected empty grid error, got %v", err)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("fields may be separated by spaces and commas", func(t *testing.T) {
		data := "longitude latitude distance\n-90.02 29.98 1.5\n-89.98, 29.98, -2.5\n"
		store, err := Load(strings.NewReader(data), LoadOptions{Precision: 2})
		if err != nil {
			t.Fatalf("failed to load grid data: %s", err)
		}
		dist, err := store.DistanceToCoast(t.Context(), geo.Coordinate{Lat: 29.98, Lon: -89.98})
		if err != nil {
			t.Fatalf("failed to look up grid point: %s", err)
		}
		if dist != 2.5 {
			t.Errorf("expected land distance to be stored as magnitude 2.5, got %f", dist)
		}
	})
	t.Run("a header after data lines fails", func(t *testing.T) {
		data := "-90.02 29.98 1.5\nlongitude latitude distance\n"
		if _, err := Load(strings.NewReader(data), LoadOptions{Precision: 2}); err == nil {
			t.Error("expected error, but didn't get one")
		}
	})
	t.Run("invalid coordinates fail", func(t *testing.T) {
		if _, err := Load(strings.NewReader("-200 29.98 1.5\n"), LoadOptions{Precision: 2}); err == nil {
			t.Error("expected error, but didn't get one")
		}
	})
}

func TestStore_DistanceToCoast(t *testing.T) {
	store := testStore(t, testGridFile)
	tests := []struct {
		name  string
		coord geo.Coordinate
		want  float64
	}{
		{"ocean point", geo.Coordinate{Lat: 29.98, Lon: -90.02}, 19.0},
		{"land point", geo.Coordinate{Lat: 30.02, Lon: -89.98}, 18.0},
		{"point with float drift", geo.Coordinate{Lat: 25.02 + 125*0.04, Lon: -124.98 + 874*0.04}, 16.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.DistanceToCoast(t.Context(), tc.coord)
			if err != nil {
				t.Fatalf("failed to look up grid point: %s", err)
			}
			if got != tc.want {
				t.Errorf("expected distance %f, got %f", tc.want, got)
			}
		})
	}
	t.Run("a point outside the region is not found", func(t *testing.T) {
		_, err := store.DistanceToCoast(t.Context(), geo.Coordinate{Lat: 45.02, Lon: -80.02})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected not found error, got %v", err)
		}
	})
}

func TestStore_Extent(t *testing.T) {
	store := testStore(t, testGridFile)
	want := Bounds{MinLat: 29.94, MaxLat: 30.06, MinLon: -90.06, MaxLon: -89.94}
	if store.Extent() != want {
		t.Errorf("expected extent %+v, got %+v", want, store.Extent())
	}
	if origin := store.Origin(); origin != (geo.Coordinate{Lat: 29.94, Lon: -90.06}) {
		t.Errorf("unexpected origin: %s", origin)
	}
}

func TestStore_WriteCSV(t *testing.T) {
	store := testStore(t, testGridFile)
	buf := bytes.NewBuffer(nil)
	if err := store.WriteCSV(buf); err != nil {
		t.Fatalf("failed to write CSV: %s", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 17 {
		t.Fatalf("expected 17 lines, got %d", len(lines))
	}
	if lines[0] != "longitude,latitude,distance" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "-90.06,29.94,20" {
		t.Errorf("expected first record to be the south-west most point, got %s", lines[1])
	}

	reloaded, err := Load(strings.NewReader(strings.Join(lines, "\n")), LoadOptions{Precision: 2})
	if err != nil {
		t.Fatalf("failed to load exported CSV: %s", err)
	}
	if reloaded.Len() != store.Len() {
		t.Errorf("expected %d points after reload, got %d", store.Len(), reloaded.Len())
	}
}

func TestBounds_Contains(t *testing.T) {
	if !(Bounds{}).Contains(geo.Coordinate{Lat: 89, Lon: 179}) {
		t.Error("expected zero bounds to contain everything")
	}
	if !testBounds.Contains(geo.Coordinate{Lat: 29.9, Lon: -89.9}) {
		t.Error("expected bounds to include their edges")
	}
	if testBounds.Contains(geo.Coordinate{Lat: 30.2, Lon: -90}) {
		t.Error("expected point north of the bounds to be excluded")
	}
}
