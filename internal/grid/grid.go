// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package grid implements the reference lattice of precomputed distances to coast: locating the
// cell that surrounds an address point and looking up the distance values of its corners.
package grid

import (
	"fmt"
	"math"
	"strings"

	"github.com/wneessen/dist2coast/internal/geo"
)

// quotientPrecision is the number of decimals the increment count is rounded to before
// flooring and lattice checks, so that 123.99999999999999 counts as 124.
const quotientPrecision = 6

// maxPrecision bounds the key precision so that quantized coordinates fit a Key.
const maxPrecision = 7

// SnapMode selects how the increment count between origin and address point is turned
// into a lattice index.
type SnapMode int

const (
	// SnapNearest selects the cell whose south-west corner is the lattice point nearest to the
	// address point. The unrounded increment count is rounded, halves away from zero. The
	// address point may lie up to half a spacing south or west of the cell. This is the default.
	SnapNearest SnapMode = iota
	// SnapFloor selects the cell whose south-west corner lies at or below the address point,
	// so the cell always encloses it.
	SnapFloor
)

// ParseSnapMode parses "nearest" or "floor". An empty mode selects SnapNearest.
func ParseSnapMode(mode string) (SnapMode, error) {
	switch strings.ToLower(mode) {
	case "nearest", "":
		return SnapNearest, nil
	case "floor":
		return SnapFloor, nil
	default:
		return SnapNearest, fmt.Errorf("unsupported snap mode: %s", mode)
	}
}

// String satisfies the fmt.Stringer interface.
func (m SnapMode) String() string {
	if m == SnapFloor {
		return "floor"
	}
	return "nearest"
}

func (m SnapMode) snap(q float64) float64 {
	if m == SnapFloor {
		return math.Floor(geo.Round(q, quotientPrecision))
	}
	return math.Round(q)
}

// Corner identifies one of the four lattice points of a cell.
type Corner int

const (
	NW Corner = iota
	NE
	SW
	SE
)

// Corners lists all corners in iteration order.
var Corners = [4]Corner{NW, NE, SW, SE}

// String returns the compass label of the corner.
func (c Corner) String() string {
	switch c {
	case NW:
		return "nw"
	case NE:
		return "ne"
	case SW:
		return "sw"
	case SE:
		return "se"
	default:
		return fmt.Sprintf("corner(%d)", int(c))
	}
}

// Cell holds the coordinates of the four lattice points surrounding an address point,
// indexed by Corner.
type Cell [4]geo.Coordinate

// Spec describes a regular lattice: the coordinate of lattice point (0,0), the uniform
// spacing in degrees on both axes, and the number of decimals lattice coordinates are
// keyed at.
type Spec struct {
	Origin    geo.Coordinate
	Spacing   float64
	Precision int
	Snap      SnapMode
}

// Validate checks that the lattice can be used for locating cells.
func (s Spec) Validate() error {
	if !s.Origin.Valid() {
		return fmt.Errorf("invalid grid origin: %s", s.Origin)
	}
	if s.Spacing <= 0 || math.IsNaN(s.Spacing) || math.IsInf(s.Spacing, 0) {
		return fmt.Errorf("invalid grid spacing: %v", s.Spacing)
	}
	if s.Precision < 0 || s.Precision > maxPrecision {
		return fmt.Errorf("invalid grid precision: %d", s.Precision)
	}
	if geo.Round(s.Spacing, s.Precision) != s.Spacing {
		return fmt.Errorf("grid spacing %v cannot be represented with %d decimals", s.Spacing, s.Precision)
	}
	return nil
}

// Locate returns the lattice cell for the given address point. It performs no bounds
// checking; a cell outside the covered region surfaces as ErrNotFound on lookup.
func (s Spec) Locate(c geo.Coordinate) Cell {
	lat1 := s.axis(c.Lat, s.Origin.Lat)
	lon1 := s.axis(c.Lon, s.Origin.Lon)
	lat2 := geo.Round(lat1+s.Spacing, s.Precision)
	lon2 := geo.Round(lon1+s.Spacing, s.Precision)

	var cell Cell
	cell[NW] = geo.Coordinate{Lat: lat2, Lon: lon1}
	cell[NE] = geo.Coordinate{Lat: lat2, Lon: lon2}
	cell[SW] = geo.Coordinate{Lat: lat1, Lon: lon1}
	cell[SE] = geo.Coordinate{Lat: lat1, Lon: lon2}
	return cell
}

// axis returns the lower lattice value along one axis.
func (s Spec) axis(val, origin float64) float64 {
	delta := geo.Round(val-origin, s.Precision)
	increments := s.Snap.snap(delta / s.Spacing)
	return geo.Round(origin+geo.Round(increments*s.Spacing, s.Precision), s.Precision)
}

// Contains reports whether c is a lattice coordinate of this spec.
func (s Spec) Contains(c geo.Coordinate) bool {
	for _, v := range [2]float64{c.Lat - s.Origin.Lat, c.Lon - s.Origin.Lon} {
		q := geo.Round(geo.Round(v, s.Precision)/s.Spacing, quotientPrecision)
		if q != math.Trunc(q) {
			return false
		}
	}
	return true
}
