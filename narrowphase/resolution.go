// Package narrowphase decides exact overlap between two shapes and computes
// the penetration needed to separate them.
//
// Resolvers hold reusable scratch buffers and are not safe for concurrent
// use; each collision manager owns its own.
package narrowphase

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Resolution describes how two overlapping shapes A and B interpenetrate.
type Resolution struct {
	// Penetration is the distance A must travel along Displacement to exit B.
	Penetration float64
	// Direction is a unit vector pointing from A toward B.
	Direction r2.Vec
	// Displacement is the unit vector along which A should move to exit B.
	Displacement r2.Vec
}

// Reverse returns the resolution seen from B: directions are swapped and the
// penetration is unchanged.
func (r Resolution) Reverse() Resolution {
	return Resolution{
		Penetration:  r.Penetration,
		Direction:    r.Displacement,
		Displacement: r.Direction,
	}
}

// separation measures how far A has to travel along (or against) an axis to
// stop overlapping B, given both projections on that axis.
//
// Moving A against the axis costs maxA-minB, moving it along the axis costs
// maxB-minA. For partially overlapping intervals the cheaper of the two is
// the shared length; when one interval is nested in the other it is the
// shared length plus the smaller boundary gap, so an engulfed shape still
// gets pushed out through the nearer side. flip reports that moving along
// the axis is cheaper.
//
// Zero-length intervals (lines seen edge-on) overlap when they lie inside
// the other interval; their depth is the distance to the nearer boundary.
func separation(minA, maxA, minB, maxB float64) (depth float64, flip, ok bool) {
	if minA == maxA || minB == maxB {
		if maxA < minB || maxB < minA {
			return 0, false, false
		}
	} else if math.Min(maxA, maxB)-math.Max(minA, minB) <= 0 {
		return 0, false, false
	}

	against := maxA - minB
	along := maxB - minA
	if along < against {
		depth, flip = along, true
	} else {
		depth = against
	}
	if depth <= 0 {
		return 0, false, false
	}
	return depth, flip, true
}
