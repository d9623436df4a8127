// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package grid

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/wneessen/dist2coast/internal/geo"
)

var testSpec = Spec{
	Origin:    geo.Coordinate{Lat: 25.02, Lon: -124.98},
	Spacing:   0.04,
	Precision: 2,
}

func TestSpec_Locate(t *testing.T) {
	t.Run("address point resolves to the cell of its nearest lattice point", func(t *testing.T) {
		cell := testSpec.Locate(geo.Coordinate{Lat: 30.0, Lon: -90.0})
		want := Cell{
			NW: {Lat: 30.06, Lon: -90.02},
			NE: {Lat: 30.06, Lon: -89.98},
			SW: {Lat: 30.02, Lon: -90.02},
			SE: {Lat: 30.02, Lon: -89.98},
		}
		if cell != want {
			t.Errorf("expected cell %v, got %v", want, cell)
		}
	})
	t.Run("nearest snapping rounds the unrounded increment count", func(t *testing.T) {
		tests := []struct {
			name  string
			point geo.Coordinate
			want  geo.Coordinate
		}{
			// 124.50000000000001 and 874.4999999999999 increments
			{"just above and just below the half", geo.Coordinate{Lat: 30.0, Lon: -90.0}, geo.Coordinate{Lat: 30.02, Lon: -90.02}},
			{"above the half", geo.Coordinate{Lat: 30.01, Lon: -90.01}, geo.Coordinate{Lat: 30.02, Lon: -90.02}},
			{"below the half", geo.Coordinate{Lat: 29.99, Lon: -90.01}, geo.Coordinate{Lat: 29.98, Lon: -90.02}},
			{"exact half rounds away from zero", geo.Coordinate{Lat: 25.02, Lon: -125.0}, geo.Coordinate{Lat: 25.02, Lon: -125.02}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				cell := testSpec.Locate(tc.point)
				if cell[SW] != tc.want {
					t.Errorf("expected south-west corner %s, got %s", tc.want, cell[SW])
				}
			})
		}
	})
	t.Run("floor snapping resolves to the enclosing cell", func(t *testing.T) {
		spec := testSpec
		spec.Snap = SnapFloor
		cell := spec.Locate(geo.Coordinate{Lat: 30.0, Lon: -90.0})
		want := Cell{
			NW: {Lat: 30.02, Lon: -90.02},
			NE: {Lat: 30.02, Lon: -89.98},
			SW: {Lat: 29.98, Lon: -90.02},
			SE: {Lat: 29.98, Lon: -89.98},
		}
		if cell != want {
			t.Errorf("expected cell %v, got %v", want, cell)
		}
	})
	t.Run("address point on a lattice point becomes the south-west corner", func(t *testing.T) {
		for _, mode := range []SnapMode{SnapFloor, SnapNearest} {
			spec := testSpec
			spec.Snap = mode
			point := geo.Coordinate{Lat: 29.98, Lon: -90.02}
			cell := spec.Locate(point)
			if cell[SW] != point {
				t.Errorf("%s: expected south-west corner %s, got %s", mode, point, cell[SW])
			}
			seen := make(map[geo.Coordinate]struct{})
			for _, c := range cell {
				seen[c] = struct{}{}
			}
			if len(seen) != 4 {
				t.Errorf("%s: expected 4 distinct corners, got %d", mode, len(seen))
			}
		}
	})
	t.Run("address point on the origin", func(t *testing.T) {
		cell := testSpec.Locate(testSpec.Origin)
		if cell[SW] != testSpec.Origin {
			t.Errorf("expected south-west corner %s, got %s", testSpec.Origin, cell[SW])
		}
	})
	t.Run("address point west and south of the origin", func(t *testing.T) {
		for _, mode := range []SnapMode{SnapFloor, SnapNearest} {
			spec := testSpec
			spec.Snap = mode
			cell := spec.Locate(geo.Coordinate{Lat: 24.99, Lon: -125.01})
			if want := (geo.Coordinate{Lat: 24.98, Lon: -125.02}); cell[SW] != want {
				t.Errorf("%s: expected south-west corner %s, got %s", mode, want, cell[SW])
			}
		}
	})
	t.Run("corners form a square of spacing on random points", func(t *testing.T) {
		// address deltas are rounded to the grid precision before snapping
		tol := 0.5*math.Pow(10, -float64(testSpec.Precision)) + 1e-9
		for _, mode := range []SnapMode{SnapFloor, SnapNearest} {
			spec := testSpec
			spec.Snap = mode
			// floor encloses the point, nearest keeps it within half a spacing of the south-west corner
			below, above := tol, spec.Spacing+tol
			if mode == SnapNearest {
				below, above = spec.Spacing/2+tol, spec.Spacing/2+tol
			}
			rnd := rand.New(rand.NewPCG(1, 2))
			for i := 0; i < 1000; i++ {
				point := geo.Coordinate{Lat: 25 + rnd.Float64()*25, Lon: -125 + rnd.Float64()*60}
				cell := spec.Locate(point)
				assertCellShape(t, cell, spec)
				if point.Lat < cell[SW].Lat-below || point.Lat > cell[SW].Lat+above {
					t.Fatalf("%s: latitude %f too far from cell %v", mode, point.Lat, cell)
				}
				if point.Lon < cell[SW].Lon-below || point.Lon > cell[SW].Lon+above {
					t.Fatalf("%s: longitude %f too far from cell %v", mode, point.Lon, cell)
				}
				for _, corner := range cell {
					if !spec.Contains(corner) {
						t.Fatalf("%s: corner %s is not a lattice coordinate", mode, corner)
					}
				}
			}
		}
	})
}

func assertCellShape(t *testing.T, cell Cell, spec Spec) {
	t.Helper()
	if cell[NW].Lon != cell[SW].Lon || cell[NE].Lon != cell[SE].Lon {
		t.Fatalf("western or eastern corners do not share longitude: %v", cell)
	}
	if cell[NW].Lat != cell[NE].Lat || cell[SW].Lat != cell[SE].Lat {
		t.Fatalf("northern or southern corners do not share latitude: %v", cell)
	}
	if d := geo.Round(cell[NW].Lat-cell[SW].Lat, spec.Precision); d != spec.Spacing {
		t.Fatalf("expected latitude difference %v, got %v", spec.Spacing, d)
	}
	if d := geo.Round(cell[NE].Lon-cell[NW].Lon, spec.Precision); d != spec.Spacing {
		t.Fatalf("expected longitude difference %v, got %v", spec.Spacing, d)
	}
}

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{"valid spec", testSpec, false},
		{"zero spacing", Spec{Origin: testSpec.Origin, Precision: 2}, true},
		{"negative spacing", Spec{Origin: testSpec.Origin, Spacing: -0.04, Precision: 2}, true},
		{"spacing too fine for precision", Spec{Origin: testSpec.Origin, Spacing: 0.005, Precision: 2}, true},
		{"invalid origin", Spec{Origin: geo.Coordinate{Lat: 91}, Spacing: 0.04, Precision: 2}, true},
		{"negative precision", Spec{Origin: testSpec.Origin, Spacing: 1, Precision: -1}, true},
		{"highest precision", Spec{Origin: testSpec.Origin, Spacing: 0.04, Precision: 7}, false},
		{"precision overflows keys", Spec{Origin: testSpec.Origin, Spacing: 0.04, Precision: 8}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error, but didn't get one")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected no error, got %s", err)
			}
		})
	}
}

func TestParseSnapMode(t *testing.T) {
	tests := []struct {
		mode    string
		want    SnapMode
		wantErr bool
	}{
		{"", SnapNearest, false},
		{"floor", SnapFloor, false},
		{"Nearest", SnapNearest, false},
		{"ceil", SnapNearest, true},
	}
	for _, tc := range tests {
		t.Run(tc.mode, func(t *testing.T) {
			got, err := ParseSnapMode(tc.mode)
			if tc.wantErr != (err != nil) {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestCorner_String(t *testing.T) {
	want := []string{"nw", "ne", "sw", "se"}
	for i, corner := range Corners {
		if corner.String() != want[i] {
			t.Errorf("expected %s, got %s", want[i], corner)
		}
	}
	if Corner(7).String() != "corner(7)" {
		t.Errorf("unexpected label for unknown corner: %s", Corner(7))
	}
}

func TestKey(t *testing.T) {
	t.Run("coordinates with float drift share a key", func(t *testing.T) {
		a := NewKey(geo.Coordinate{Lat: 25.02 + 125*0.04, Lon: -124.98 + 874*0.04}, 2)
		b := NewKey(geo.Coordinate{Lat: 30.02, Lon: -90.02}, 2)
		if a != b {
			t.Errorf("expected keys to be equal, got %v and %v", a, b)
		}
	})
	t.Run("key converts back to coordinate", func(t *testing.T) {
		c := geo.Coordinate{Lat: -12.34, Lon: 170.06}
		if got := NewKey(c, 2).Coordinate(2); got != c {
			t.Errorf("expected %s, got %s", c, got)
		}
	})
	t.Run("keys hold the antimeridian at the highest precision", func(t *testing.T) {
		for _, c := range []geo.Coordinate{{Lat: 90, Lon: 180}, {Lat: -90, Lon: -180}, {Lat: 45.1234567, Lon: -179.9999999}} {
			k := NewKey(c, maxPrecision)
			if (k.LonQ < 0) != (c.Lon < 0) || (k.LatQ < 0) != (c.Lat < 0) {
				t.Fatalf("key %v overflowed for %s", k, c)
			}
			if got := k.Coordinate(maxPrecision); got != c {
				t.Errorf("expected %s, got %s", c, got)
			}
		}
	})
	t.Run("keys differ between neighbours", func(t *testing.T) {
		a := NewKey(geo.Coordinate{Lat: 30.02, Lon: -90.02}, 2)
		b := NewKey(geo.Coordinate{Lat: 30.02, Lon: -90.06}, 2)
		if a == b || math.Abs(float64(a.LonQ-b.LonQ)) != 4 {
			t.Errorf("expected neighbouring keys 4 apart, got %v and %v", a, b)
		}
	})
}
