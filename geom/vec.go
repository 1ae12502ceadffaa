package geom

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

// Unit returns v scaled to length 1. The second result is false for the zero
// vector, in which case the zero vector is returned instead of NaNs.
func Unit(v r2.Vec) (r2.Vec, bool) {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{}, false
	}
	return r2.Scale(1/n, v), true
}

// Perp returns v rotated a quarter turn counter-clockwise.
func Perp(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.Y, Y: v.X}
}

// Neg returns -v.
func Neg(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.X, Y: -v.Y}
}

// Component returns the x (axis 0) or y (axis 1) component of v.
func Component(v r2.Vec, axis int) float64 {
	if axis == 0 {
		return v.X
	}
	return v.Y
}

// AxisVec returns a vector with only the given component set.
func AxisVec(axis int, value float64) r2.Vec {
	if axis == 0 {
		return r2.Vec{X: value}
	}
	return r2.Vec{Y: value}
}

// ApproxEqual reports whether a and b are equal within tol on both components.
func ApproxEqual(a, b r2.Vec, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) && scalar.EqualWithinAbs(a.Y, b.Y, tol)
}

// Overlaps reports whether two boxes intersect, counting touching edges.
func Overlaps(a, b r2.Box) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y
}

// EmptyBox is the identity for Union: it contains nothing and any union with
// it yields the other operand.
func EmptyBox() r2.Box {
	inf := math.Inf(1)
	return r2.Box{
		Min: r2.Vec{X: inf, Y: inf},
		Max: r2.Vec{X: -inf, Y: -inf},
	}
}

// Union returns the smallest box enclosing a and b.
func Union(a, b r2.Box) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y)},
		Max: r2.Vec{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y)},
	}
}

// BoxEqual reports whether two boxes have identical corners.
func BoxEqual(a, b r2.Box) bool {
	return a.Min == b.Min && a.Max == b.Max
}
