// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package estimate

import (
	"fmt"
	"math"

	"github.com/wneessen/dist2coast/internal/geo"
)

// collinearTolerance is the relative tolerance under which three points count as collinear.
const collinearTolerance = 1e-4

// Regime is the geometric configuration of a corner pair G1, G2, the address point A and
// the coastal point C. It selects the law of cosines solve for the pair.
type Regime int

const (
	// CollinearCG1G2 means C, G1 and G2 lie on a line with C beyond G1.
	CollinearCG1G2 Regime = iota
	// CollinearCG2G1 means C, G2 and G1 lie on a line with C beyond G2.
	CollinearCG2G1
	// CollinearG1CG2 means C lies on the segment between G1 and G2.
	CollinearG1CG2
	// Degenerate means G1, G2 and C violate the triangle inequality.
	Degenerate
	// CollinearG1AG2 means A lies on the segment between G1 and G2.
	CollinearG1AG2
	// General means that neither A nor C is collinear with G1 and G2.
	General
)

// Regimes lists all regimes in classification order.
var Regimes = [...]Regime{
	CollinearCG1G2, CollinearCG2G1, CollinearG1CG2, Degenerate, CollinearG1AG2, General,
}

// String returns the label of the regime.
func (r Regime) String() string {
	switch r {
	case CollinearCG1G2:
		return "collinear_c_g1_g2"
	case CollinearCG2G1:
		return "collinear_c_g2_g1"
	case CollinearG1CG2:
		return "collinear_g1_c_g2"
	case Degenerate:
		return "degenerate"
	case CollinearG1AG2:
		return "collinear_g1_a_g2"
	case General:
		return "general"
	default:
		return fmt.Sprintf("regime(%d)", int(r))
	}
}

// Sides holds the known side lengths between the corners G1 and G2, the address point A
// and the coastal point C.
type Sides struct {
	G1G2 float64
	G1A  float64
	G1C  float64
	G2A  float64
	G2C  float64
}

// SidesOf builds the sides of a corner pair of the quad.
func SidesOf(q Quad, pair Pair, dist geo.DistanceFunc) Sides {
	g1, g2 := q[pair.G1], q[pair.G2]
	return Sides{
		G1G2: dist(g1.Coord, g2.Coord),
		G1A:  g1.DistToAddress,
		G1C:  g1.DistToCoast,
		G2A:  g2.DistToAddress,
		G2C:  g2.DistToCoast,
	}
}

// collinear reports whether |sum - whole| <= tolerance * whole.
func collinear(sum, whole float64) bool {
	return math.Abs(sum-whole) <= collinearTolerance*whole
}

// Classify returns the first regime in classification order that applies to s.
func Classify(s Sides) Regime {
	switch {
	case collinear(s.G1C+s.G1G2, s.G2C):
		return CollinearCG1G2
	case collinear(s.G2C+s.G1G2, s.G1C):
		return CollinearCG2G1
	case collinear(s.G1C+s.G2C, s.G1G2):
		return CollinearG1CG2
	case s.G1C+s.G2C < s.G1G2:
		return Degenerate
	case collinear(s.G1A+s.G2A, s.G1G2):
		return CollinearG1AG2
	default:
		return General
	}
}

// Solve estimates the distance between A and C for a corner pair. base resolves the side
// of G1G2 on which A lies relative to C in the General regime.
func Solve(s Sides, base float64) (float64, Regime) {
	regime := Classify(s)
	switch regime {
	case CollinearCG1G2:
		return solveCollinearC(s), regime
	case CollinearCG2G1:
		return solveCollinearC(s.swap()), regime
	case CollinearG1CG2:
		return solveBetween(s), regime
	case Degenerate:
		excess := (s.G1G2 - s.G1C - s.G2C) / 2
		s.G1C += excess
		s.G2C += excess
		return solveBetween(s), regime
	case CollinearG1AG2:
		return mean(
			lawOfCosines(s.G1A, s.G1C, angle(s.G1G2, s.G1C, s.G2C)),
			lawOfCosines(s.G2A, s.G2C, angle(s.G1G2, s.G2C, s.G1C)),
		), regime
	default:
		return solveGeneral(s, base), regime
	}
}

// swap exchanges the roles of G1 and G2.
func (s Sides) swap() Sides {
	return Sides{G1G2: s.G1G2, G1A: s.G2A, G1C: s.G2C, G2A: s.G1A, G2C: s.G1C}
}

// solveCollinearC solves C, G1, G2 on a line with C beyond G1. Seen from G2, C lies in the
// direction of G1; seen from G1, C lies opposite of G2.
func solveCollinearC(s Sides) float64 {
	atG2 := angle(s.G1G2, s.G2A, s.G1A)
	atG1 := math.Pi - angle(s.G1G2, s.G1A, s.G2A)
	return mean(
		lawOfCosines(s.G2A, s.G2C, atG2),
		lawOfCosines(s.G1A, s.G1C, atG1),
	)
}

// solveBetween solves C on the segment G1G2, so the angles A-G1-C and A-G2-C equal the
// angles of triangle A, G1, G2.
func solveBetween(s Sides) float64 {
	return mean(
		lawOfCosines(s.G1A, s.G1C, angle(s.G1G2, s.G1A, s.G2A)),
		lawOfCosines(s.G2A, s.G2C, angle(s.G1G2, s.G2A, s.G1A)),
	)
}

// solveGeneral places A and C either on opposite sides of G1G2 (angle sum) or on the same
// side (angle difference) and returns the candidate closer to base.
func solveGeneral(s Sides, base float64) float64 {
	aG1 := angle(s.G1G2, s.G1A, s.G2A)
	cG1 := angle(s.G1G2, s.G1C, s.G2C)
	aG2 := angle(s.G1G2, s.G2A, s.G1A)
	cG2 := angle(s.G1G2, s.G2C, s.G1C)

	sameSide := mean(
		lawOfCosines(s.G1A, s.G1C, math.Abs(aG1-cG1)),
		lawOfCosines(s.G2A, s.G2C, math.Abs(aG2-cG2)),
	)
	oppositeSides := mean(
		lawOfCosines(s.G1A, s.G1C, aG1+cG1),
		lawOfCosines(s.G2A, s.G2C, aG2+cG2),
	)
	return closest(oppositeSides, sameSide, base)
}

// closest returns whichever of first and second is closer to v. A tie returns first.
func closest(first, second, v float64) float64 {
	if math.Abs(second-v) < math.Abs(first-v) {
		return second
	}
	return first
}

// angle returns the angle between the sides adj1 and adj2 of a triangle whose third side is
// opposite. The angle next to a zero length side is 0.
func angle(adj1, adj2, opposite float64) float64 {
	if adj1 == 0 || adj2 == 0 {
		return 0
	}
	cos := (adj1*adj1 + adj2*adj2 - opposite*opposite) / (2 * adj1 * adj2)
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}

// lawOfCosines returns the side opposite of angle theta between the sides b and c.
func lawOfCosines(b, c, theta float64) float64 {
	return math.Sqrt(math.Max(0, b*b+c*c-2*b*c*math.Cos(theta)))
}

func mean(a, b float64) float64 {
	return (a + b) / 2
}

// Trigonometric returns the mean of the six pairwise law of cosines estimates of the quad,
// together with the regime of each pair in Quad.Pairs order. base is the weighted average
// estimate of the quad.
func Trigonometric(q Quad, base float64, dist geo.DistanceFunc) (float64, [6]Regime) {
	var regimes [6]Regime
	var sum float64
	for i, pair := range q.Pairs() {
		estimate, regime := Solve(SidesOf(q, pair, dist), base)
		regimes[i] = regime
		sum += estimate
	}
	return sum / float64(len(regimes)), regimes
}
