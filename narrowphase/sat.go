package narrowphase

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/geom"
)

// SATResolver tests convex shapes with the separating-axis theorem.
// The zero value is ready to use. Not reentrant.
type SATResolver struct {
	axes []r2.Vec
}

// Resolve projects both shapes on every candidate axis and keeps the axis of
// minimum overlap. A circle contributes the axis toward the nearest vertex of
// the other shape.
func (s *SATResolver) Resolve(a, b *geom.Shape) (Resolution, bool) {
	s.axes = append(s.axes[:0], a.Axes...)
	s.axes = append(s.axes, b.Axes...)
	if a.Kind == geom.Circle {
		if axis, ok := b.NearestVertexAxis(a.Position); ok {
			s.axes = append(s.axes, axis)
		}
	}
	if b.Kind == geom.Circle {
		if axis, ok := a.NearestVertexAxis(b.Position); ok {
			s.axes = append(s.axes, axis)
		}
	}
	if len(s.axes) == 0 {
		return Resolution{}, false
	}

	best := math.Inf(1)
	var bestAxis r2.Vec
	for _, axis := range s.axes {
		minA, maxA := a.Project(axis)
		minB, maxB := b.Project(axis)
		depth, flip, ok := separation(minA, maxA, minB, maxB)
		if !ok {
			return Resolution{}, false
		}
		if depth < best {
			best = depth
			bestAxis = axis
			if flip {
				bestAxis = geom.Neg(axis)
			}
		}
	}

	return Resolution{
		Penetration:  best,
		Direction:    bestAxis,
		Displacement: geom.Neg(bestAxis),
	}, true
}
