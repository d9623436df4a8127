// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package estimate interpolates the distance to coast of an address point from the four
// surrounding points of a reference grid.
package estimate

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/wneessen/dist2coast/internal/geo"
	"github.com/wneessen/dist2coast/internal/grid"
)

var (
	// ErrDegenerateWeights is returned if all corners coincide with the address point.
	ErrDegenerateWeights = errors.New("sum of distances to address point is zero")

	// ErrNegativeDistance is returned if a grid value or a measured distance is negative.
	ErrNegativeDistance = errors.New("negative distance")

	// ErrInvalidDistance is returned if a distance is not a finite number.
	ErrInvalidDistance = errors.New("distance is not a finite number")

	// ErrInvalidCoordinate is returned for address points outside the EPSG:4326 value range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// Point is a lattice point enriched with its distance to coast and its distance to the
// address point, both in kilometers.
type Point struct {
	Coord         geo.Coordinate `json:"coord"`
	DistToCoast   float64        `json:"distance_to_coast"`
	DistToAddress float64        `json:"distance_to_address"`
}

// Quad holds the four enriched corners of a cell, indexed by grid.Corner.
type Quad [4]Point

// Pair is an unordered pair of corners.
type Pair struct {
	G1, G2 grid.Corner
}

// Pairs returns all six unordered corner pairs of the quad, each exactly once, in the
// order (nw,ne) (nw,sw) (nw,se) (ne,sw) (ne,se) (sw,se).
func (q Quad) Pairs() [6]Pair {
	var pairs [6]Pair
	n := 0
	for i := 0; i < len(grid.Corners); i++ {
		for j := i + 1; j < len(grid.Corners); j++ {
			pairs[n] = Pair{G1: grid.Corners[i], G2: grid.Corners[j]}
			n++
		}
	}
	return pairs
}

// Set holds the four estimates of an address point's distance to coast.
type Set struct {
	Closest         float64 `json:"closest"`
	SimpleAverage   float64 `json:"simple_average"`
	WeightedAverage float64 `json:"weighted_average"`
	Trigonometric   float64 `json:"trigonometric"`
}

// In converts a Set in kilometers into the given unit.
func (s Set) In(unit Unit) Set {
	return Set{
		Closest:         unit.FromKilometers(s.Closest),
		SimpleAverage:   unit.FromKilometers(s.SimpleAverage),
		WeightedAverage: unit.FromKilometers(s.WeightedAverage),
		Trigonometric:   unit.FromKilometers(s.Trigonometric),
	}
}

// Round rounds all estimates to the given number of decimals.
func (s Set) Round(precision int) Set {
	return Set{
		Closest:         geo.Round(s.Closest, precision),
		SimpleAverage:   geo.Round(s.SimpleAverage, precision),
		WeightedAverage: geo.Round(s.WeightedAverage, precision),
		Trigonometric:   geo.Round(s.Trigonometric, precision),
	}
}

// Values returns the estimates in output order.
func (s Set) Values() [4]float64 {
	return [4]float64{s.Closest, s.SimpleAverage, s.WeightedAverage, s.Trigonometric}
}

// Enrich looks up the distance to coast of each corner of cell and measures its distance
// to query. A lookup failure is returned as is, wrapped with the corner that failed.
func Enrich(ctx context.Context, query geo.Coordinate, cell grid.Cell, lookup grid.Lookup,
	dist geo.DistanceFunc,
) (Quad, error) {
	var quad Quad
	for _, corner := range grid.Corners {
		coord := cell[corner]
		d2c, err := lookup.DistanceToCoast(ctx, coord)
		if err != nil {
			return quad, fmt.Errorf("failed to look up %s corner: %w", corner, err)
		}
		d2a := dist(query, coord)
		if err = checkDistance(d2c); err != nil {
			return quad, fmt.Errorf("distance to coast of %s corner %s: %w", corner, coord, err)
		}
		if err = checkDistance(d2a); err != nil {
			return quad, fmt.Errorf("distance to address of %s corner %s: %w", corner, coord, err)
		}
		quad[corner] = Point{Coord: coord, DistToCoast: d2c, DistToAddress: d2a}
	}
	return quad, nil
}

func checkDistance(d float64) error {
	switch {
	case math.IsNaN(d) || math.IsInf(d, 0):
		return ErrInvalidDistance
	case d < 0:
		return ErrNegativeDistance
	}
	return nil
}

// Result is the outcome of a single estimation.
type Result struct {
	Query     geo.Coordinate `json:"query"`
	Cell      grid.Cell      `json:"-"`
	Quad      Quad           `json:"corners"`
	Regimes   [6]Regime      `json:"-"`
	Estimates Set            `json:"estimates"`
}

// Estimator runs the locate, enrich and estimate pipeline for address points. It holds no
// mutable state and is safe for concurrent use if its Lookup is.
type Estimator struct {
	spec     grid.Spec
	lookup   grid.Lookup
	dist     geo.DistanceFunc
	observer RegimeObserver
}

// RegimeObserver is called with the regime of every corner pair an Estimator solves.
type RegimeObserver func(Regime)

// Option configures an Estimator.
type Option func(*Estimator)

// WithRegimeObserver registers an observer for the trigonometric regimes.
func WithRegimeObserver(observer RegimeObserver) Option {
	return func(e *Estimator) {
		e.observer = observer
	}
}

// New returns an Estimator for the given lattice, lookup and distance function.
func New(spec grid.Spec, lookup grid.Lookup, dist geo.DistanceFunc, opts ...Option) (*Estimator, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if lookup == nil {
		return nil, errors.New("grid lookup must not be nil")
	}
	if dist == nil {
		return nil, errors.New("distance function must not be nil")
	}
	estimator := &Estimator{spec: spec, lookup: lookup, dist: dist}
	for _, opt := range opts {
		opt(estimator)
	}
	return estimator, nil
}

// Spec returns the lattice of the estimator.
func (e *Estimator) Spec() grid.Spec {
	return e.spec
}

// Estimate computes all four estimates, in kilometers, for the address point query.
// Either all four estimates are produced or an error is returned.
func (e *Estimator) Estimate(ctx context.Context, query geo.Coordinate) (Result, error) {
	result := Result{Query: query}
	if !query.Valid() {
		return result, fmt.Errorf("%w: %s", ErrInvalidCoordinate, query)
	}

	result.Cell = e.spec.Locate(query)
	quad, err := Enrich(ctx, query, result.Cell, e.lookup, e.dist)
	if err != nil {
		return result, err
	}
	result.Quad = quad

	weighted, err := WeightedAverage(quad)
	if err != nil {
		return result, err
	}
	trig, regimes := Trigonometric(quad, weighted, e.dist)
	if err = checkDistance(trig); err != nil {
		return result, fmt.Errorf("trigonometric estimate: %w", err)
	}
	result.Regimes = regimes
	if e.observer != nil {
		for _, regime := range regimes {
			e.observer(regime)
		}
	}
	result.Estimates = Set{
		Closest:         Closest(quad),
		SimpleAverage:   SimpleAverage(quad),
		WeightedAverage: weighted,
		Trigonometric:   trig,
	}
	return result, nil
}

// EstimateDistanceToCoast estimates the distance to coast of query, in kilometers.
func EstimateDistanceToCoast(ctx context.Context, query geo.Coordinate, spec grid.Spec, lookup grid.Lookup,
	dist geo.DistanceFunc,
) (Set, error) {
	estimator, err := New(spec, lookup, dist)
	if err != nil {
		return Set{}, err
	}
	result, err := estimator.Estimate(ctx, query)
	if err != nil {
		return Set{}, err
	}
	return result.Estimates, nil
}
