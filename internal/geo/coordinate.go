// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geo provides the coordinate type and the distance functions used to relate
// address points to the reference grid.
package geo

import (
	"fmt"
	"math"
)

// Coordinate represents a geographic coordinate in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid checks if the coordinate is within the EPSG:4326 value range.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Round returns the coordinate with both axes rounded to the given number of decimals.
func (c Coordinate) Round(precision int) Coordinate {
	return Coordinate{Lat: Round(c.Lat, precision), Lon: Round(c.Lon, precision)}
}

// String returns the coordinate as "lat,lon".
func (c Coordinate) String() string {
	return fmt.Sprintf("%g,%g", c.Lat, c.Lon)
}

// Round rounds x to the given number of decimals. Halves are rounded away from zero.
func Round(x float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(x*p) / p
}
