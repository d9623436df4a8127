// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package grid

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/wneessen/dist2coast/internal/geo"
)

// ErrNotFound is returned if a lattice coordinate is not part of the reference grid.
var ErrNotFound = errors.New("lattice coordinate not found in reference grid")

// Lookup returns the precomputed distance to coast in kilometers for a lattice coordinate.
// Implementations must be safe for concurrent use.
type Lookup interface {
	Name() string
	DistanceToCoast(ctx context.Context, c geo.Coordinate) (float64, error)
}

// Key is a lattice coordinate quantized to integers at a fixed precision. Keys avoid
// floating point comparisons when indexing grid values.
type Key struct {
	LatQ int32
	LonQ int32
}

// NewKey quantizes c with the given number of decimals. A longitude of 180 fits a Key up to
// 7 decimals, the highest precision Spec.Validate accepts.
func NewKey(c geo.Coordinate, precision int) Key {
	p := math.Pow(10, float64(precision))
	return Key{
		LatQ: int32(math.Round(c.Lat * p)),
		LonQ: int32(math.Round(c.Lon * p)),
	}
}

// Coordinate converts the key back into a coordinate.
func (k Key) Coordinate(precision int) geo.Coordinate {
	p := math.Pow(10, float64(precision))
	return geo.Coordinate{
		Lat: geo.Round(float64(k.LatQ)/p, precision),
		Lon: geo.Round(float64(k.LonQ)/p, precision),
	}
}

// NotFoundError wraps ErrNotFound with the coordinate that was missing.
func NotFoundError(c geo.Coordinate) error {
	return fmt.Errorf("%w: %s", ErrNotFound, c)
}
