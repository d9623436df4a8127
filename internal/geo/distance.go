// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geo

import (
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/geodesic"
)

const (
	// EarthRadius is the mean earth radius in kilometers used by Haversine.
	EarthRadius = 6371.0

	MethodWGS84     = "wgs84"
	MethodHaversine = "haversine"
)

// DistanceFunc returns the distance between two coordinates in kilometers.
type DistanceFunc func(a, b Coordinate) float64

// Geodesic returns the distance in kilometers between a and b on the WGS-84 ellipsoid.
func Geodesic(a, b Coordinate) float64 {
	if a == b {
		return 0
	}
	var meters float64
	geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon, &meters, nil, nil)
	return meters / 1000
}

// Haversine returns the great-circle distance in kilometers between a and b on a sphere
// with the mean earth radius.
func Haversine(a, b Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadius * math.Asin(math.Sqrt(h))
}

// NewDistanceFunc returns the DistanceFunc for the given method name.
func NewDistanceFunc(method string) (DistanceFunc, error) {
	switch strings.ToLower(method) {
	case MethodWGS84, "":
		return Geodesic, nil
	case MethodHaversine:
		return Haversine, nil
	default:
		return nil, fmt.Errorf("unsupported distance method: %s", method)
	}
}
