// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package estimate

import (
	"github.com/wneessen/dist2coast/internal/grid"
)

// Closest returns the distance to coast of the corner nearest to the address point. If
// several corners are equally near, the first one in nw, ne, sw, se order wins.
func Closest(q Quad) float64 {
	closest := grid.NW
	for _, corner := range grid.Corners[1:] {
		if q[corner].DistToAddress < q[closest].DistToAddress {
			closest = corner
		}
	}
	return q[closest].DistToCoast
}

// SimpleAverage returns the mean distance to coast of the four corners.
func SimpleAverage(q Quad) float64 {
	var sum float64
	for _, p := range q {
		sum += p.DistToCoast
	}
	return sum / float64(len(q))
}

// WeightedAverage returns the mean distance to coast of the four corners, weighted by
// proximity to the address point. Corner i gets the weight (total - d_i) / (3 * total),
// where total is the sum of all distances to the address point; the weights sum to one.
func WeightedAverage(q Quad) (float64, error) {
	var total float64
	for _, p := range q {
		total += p.DistToAddress
	}
	if total == 0 {
		return 0, ErrDegenerateWeights
	}

	var sum float64
	for _, p := range q {
		sum += p.DistToCoast * (total - p.DistToAddress) / (3 * total)
	}
	return sum, nil
}
