// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package estimate

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/wneessen/dist2coast/internal/geo"
)

const planeTolerance = 1e-9

// euclid is a planar distance function. It makes the law of cosines solves exact, so the
// expected result of every regime is the true distance between A and C.
func euclid(a, b geo.Coordinate) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon)
}

func pt(x, y float64) geo.Coordinate {
	return geo.Coordinate{Lat: x, Lon: y}
}

func planeSides(g1, g2, a, c geo.Coordinate) Sides {
	return Sides{
		G1G2: euclid(g1, g2),
		G1A:  euclid(g1, a),
		G1C:  euclid(g1, c),
		G2A:  euclid(g2, a),
		G2C:  euclid(g2, c),
	}
}

func TestSolve(t *testing.T) {
	address := pt(0.3, 0.6)
	tests := []struct {
		name   string
		sides  Sides
		base   float64
		regime Regime
		want   float64
	}{
		{
			"coast beyond G1", planeSides(pt(1, 0), pt(0, 0), address, pt(5, 0)), 0,
			CollinearCG1G2, euclid(address, pt(5, 0)),
		},
		{
			"coast beyond G2", planeSides(pt(0, 0), pt(1, 0), address, pt(5, 0)), 0,
			CollinearCG2G1, euclid(address, pt(5, 0)),
		},
		{
			"coast between G1 and G2", planeSides(pt(0, 0), pt(1, 0), address, pt(0.4, 0)), 0,
			CollinearG1CG2, math.Sqrt(0.37),
		},
		{
			"triangle inequality violated",
			Sides{G1G2: 1, G1A: math.Sqrt(0.45), G1C: 0.3, G2A: math.Sqrt(0.85), G2C: 0.5}, 0,
			Degenerate, math.Sqrt(0.37),
		},
		{
			"address between G1 and G2", planeSides(pt(0, 0), pt(1, 0), pt(0.3, 0), pt(0.5, 3)), 0,
			CollinearG1AG2, math.Sqrt(9.04),
		},
		{
			"address on G1", planeSides(pt(0, 0), pt(1, 0), pt(0, 0), pt(0.5, 3)), 0,
			CollinearG1AG2, math.Sqrt(9.25),
		},
		{
			"general with base on the same side", planeSides(pt(0, 0), pt(1, 0), address, pt(0.5, 3)), 2.5,
			General, math.Sqrt(5.8),
		},
		{
			"general with base on opposite sides", planeSides(pt(0, 0), pt(1, 0), address, pt(0.5, 3)), 3.5,
			General, math.Sqrt(13),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, regime := Solve(tc.sides, tc.base)
			if regime != tc.regime {
				t.Errorf("expected regime %s, got %s", tc.regime, regime)
			}
			if math.Abs(got-tc.want) > planeTolerance {
				t.Errorf("expected distance %.12f, got %.12f", tc.want, got)
			}
		})
	}
}

func TestClosestScalar(t *testing.T) {
	tests := []struct {
		name          string
		first, second float64
		v             float64
		want          float64
	}{
		{"first is closer", 2, 4, 2.5, 2},
		{"second is closer", 2, 4, 3.5, 4},
		{"tie picks the first value", 2, 4, 3, 2},
		{"tie with swapped values picks the first value", 4, 2, 3, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := closest(tc.first, tc.second, tc.v); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	t.Run("every random configuration matches exactly its first regime", func(t *testing.T) {
		predicates := map[Regime]func(s Sides) bool{
			CollinearCG1G2: func(s Sides) bool { return math.Abs(s.G1C+s.G1G2-s.G2C)/s.G2C <= 1e-4 },
			CollinearCG2G1: func(s Sides) bool { return math.Abs(s.G2C+s.G1G2-s.G1C)/s.G1C <= 1e-4 },
			CollinearG1CG2: func(s Sides) bool { return math.Abs(s.G1C+s.G2C-s.G1G2)/s.G1G2 <= 1e-4 },
			Degenerate:     func(s Sides) bool { return s.G1C+s.G2C < s.G1G2 },
			CollinearG1AG2: func(s Sides) bool { return math.Abs(s.G1A+s.G2A-s.G1G2)/s.G1G2 <= 1e-4 },
		}
		rng := rand.New(rand.NewPCG(4326, 2))
		seen := make(map[Regime]int)
		for i := 0; i < 20000; i++ {
			s := randomSides(rng)
			regime := Classify(s)
			seen[regime]++
			for _, earlier := range Regimes {
				if earlier == regime {
					break
				}
				if predicates[earlier](s) {
					t.Fatalf("sides %+v classified as %s, but %s applies first", s, regime, earlier)
				}
			}
			if regime != General && !predicates[regime](s) {
				t.Fatalf("sides %+v classified as %s without matching it", s, regime)
			}
			got, _ := Solve(s, s.G1C)
			if math.IsNaN(got) || math.IsInf(got, 0) || got < 0 {
				t.Fatalf("sides %+v solved to invalid distance %v", s, got)
			}
		}
		for _, regime := range Regimes {
			if seen[regime] == 0 {
				t.Errorf("expected random configurations to hit regime %s", regime)
			}
		}
	})
}

// randomSides returns side lengths of random planar configurations. Some configurations
// are collinear by construction and some violate the triangle inequality.
func randomSides(rng *rand.Rand) Sides {
	g1, g2 := pt(0, 0), pt(1, 0)
	a := pt(rng.Float64()*2-0.5, rng.Float64()*2-1)
	c := pt(rng.Float64()*20-10, rng.Float64()*20-10)
	switch rng.IntN(6) {
	case 0:
		c = pt(1+rng.Float64()*10, 0)
	case 1:
		c = pt(-rng.Float64()*10, 0)
	case 2:
		c = pt(rng.Float64(), 0)
	case 3:
		a = pt(rng.Float64(), 0)
	}
	s := planeSides(g1, g2, a, c)
	if rng.IntN(10) == 0 {
		s.G1C, s.G2C = rng.Float64()*0.4+0.01, rng.Float64()*0.4+0.01
	}
	return s
}

func TestAngle(t *testing.T) {
	t.Run("right angle", func(t *testing.T) {
		if got := angle(3, 4, 5); math.Abs(got-math.Pi/2) > planeTolerance {
			t.Errorf("expected pi/2, got %v", got)
		}
	})
	t.Run("overshooting cosine is clamped", func(t *testing.T) {
		if got := angle(1, 1, 2.0000001); got != math.Pi {
			t.Errorf("expected pi, got %v", got)
		}
		if got := angle(1, 1, 0); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})
	t.Run("zero length side yields zero angle", func(t *testing.T) {
		if got := angle(0, 1, 1); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
		if got := angle(1, 0, 1); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})
}

func TestRegime_String(t *testing.T) {
	seen := make(map[string]bool)
	for _, regime := range Regimes {
		label := regime.String()
		if seen[label] {
			t.Errorf("duplicate regime label %q", label)
		}
		seen[label] = true
	}
	if got := Regime(42).String(); got != "regime(42)" {
		t.Errorf("expected regime(42), got %q", got)
	}
}
