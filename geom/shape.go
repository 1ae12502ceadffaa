// Package geom provides the shape model used by the collision pipeline.
//
// A Shape is a closed tagged union over Polygon, Circle and Line. Derived
// fields (Vertices, Bounds, Axes, Center) are only valid after Update has been
// called following a change to Position or Rotation.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Kind identifies the variant of a Shape.
type Kind uint8

const (
	Polygon Kind = iota
	Circle
	Line
)

func (k Kind) String() string {
	switch k {
	case Polygon:
		return "polygon"
	case Circle:
		return "circle"
	case Line:
		return "line"
	}
	return "unknown"
}

// Shape is a convex polygon, a circle or a line segment in world space.
type Shape struct {
	Kind Kind

	// Local is the vertex template relative to Position (polygon and line).
	Local []r2.Vec
	// Radius is used by circles only.
	Radius float64

	Position r2.Vec
	Rotation float64 // radians

	// Derived by Update.
	Vertices []r2.Vec
	Axes     []r2.Vec
	Bounds   r2.Box
	Center   r2.Vec

	rect bool
}

// NewPolygon creates a convex polygon from a local vertex template.
// Vertices are expected in winding order.
func NewPolygon(local ...r2.Vec) *Shape {
	s := &Shape{Kind: Polygon, Local: append([]r2.Vec(nil), local...)}
	s.Update()
	return s
}

// NewRectangle creates an axis-centered rectangle of the given size.
// Rectangles only carry two separating axes since opposite edges share a normal.
func NewRectangle(width, height float64) *Shape {
	hw, hh := width/2, height/2
	s := &Shape{
		Kind: Polygon,
		Local: []r2.Vec{
			{X: -hw, Y: -hh},
			{X: hw, Y: -hh},
			{X: hw, Y: hh},
			{X: -hw, Y: hh},
		},
		rect: true,
	}
	s.Update()
	return s
}

// NewCircle creates a circle centered on its position.
func NewCircle(radius float64) *Shape {
	s := &Shape{Kind: Circle, Radius: radius}
	s.Update()
	return s
}

// NewLine creates a line segment between two local points.
func NewLine(a, b r2.Vec) *Shape {
	s := &Shape{Kind: Line, Local: []r2.Vec{a, b}}
	s.Update()
	return s
}

// IsRectangle reports whether the shape was built by NewRectangle.
func (s *Shape) IsRectangle() bool { return s.rect }

// Update recomputes world vertices, bounding box, center and axes from the
// local template, position and rotation.
func (s *Shape) Update() {
	switch s.Kind {
	case Circle:
		s.Vertices = append(s.Vertices[:0], s.Position)
		s.Axes = s.Axes[:0]
		s.Center = s.Position
		s.Bounds = r2.Box{
			Min: r2.Vec{X: s.Position.X - s.Radius, Y: s.Position.Y - s.Radius},
			Max: r2.Vec{X: s.Position.X + s.Radius, Y: s.Position.Y + s.Radius},
		}
	case Polygon, Line:
		s.transform()
		s.computeBounds()
		s.computeAxes()
	}
}

func (s *Shape) transform() {
	rot := r2.NewRotation(s.Rotation, r2.Vec{})
	if cap(s.Vertices) < len(s.Local) {
		s.Vertices = make([]r2.Vec, len(s.Local))
	}
	s.Vertices = s.Vertices[:len(s.Local)]

	var sum r2.Vec
	for i, v := range s.Local {
		w := r2.Add(rot.Rotate(v), s.Position)
		s.Vertices[i] = w
		sum = r2.Add(sum, w)
	}
	if n := len(s.Vertices); n > 0 {
		s.Center = r2.Scale(1/float64(n), sum)
	} else {
		s.Center = s.Position
	}
}

func (s *Shape) computeBounds() {
	if len(s.Vertices) == 0 {
		s.Bounds = r2.Box{Min: s.Position, Max: s.Position}
		return
	}
	minV, maxV := s.Vertices[0], s.Vertices[0]
	for _, v := range s.Vertices[1:] {
		minV.X = math.Min(minV.X, v.X)
		minV.Y = math.Min(minV.Y, v.Y)
		maxV.X = math.Max(maxV.X, v.X)
		maxV.Y = math.Max(maxV.Y, v.Y)
	}
	s.Bounds = r2.Box{Min: minV, Max: maxV}
}

func (s *Shape) computeAxes() {
	s.Axes = s.Axes[:0]

	if s.rect {
		rot := r2.NewRotation(s.Rotation, r2.Vec{})
		s.Axes = append(s.Axes,
			rot.Rotate(r2.Vec{X: 1}),
			rot.Rotate(r2.Vec{Y: 1}),
		)
		return
	}

	n := len(s.Vertices)
	edges := n
	if s.Kind == Line {
		edges = 1
	}
	for i := 0; i < edges && n > 1; i++ {
		e := r2.Sub(s.Vertices[(i+1)%n], s.Vertices[i])
		normal, ok := Unit(Perp(e))
		if !ok {
			continue // zero-length edge
		}
		s.Axes = append(s.Axes, normal)
	}
}

// Project returns the interval covered by the shape on a unit axis.
func (s *Shape) Project(axis r2.Vec) (lo, hi float64) {
	if s.Kind == Circle {
		c := r2.Dot(s.Position, axis)
		return c - s.Radius, c + s.Radius
	}
	if len(s.Vertices) == 0 {
		p := r2.Dot(s.Position, axis)
		return p, p
	}
	lo = r2.Dot(s.Vertices[0], axis)
	hi = lo
	for _, v := range s.Vertices[1:] {
		p := r2.Dot(v, axis)
		if p < lo {
			lo = p
		} else if p > hi {
			hi = p
		}
	}
	return lo, hi
}

// NearestVertexAxis returns the unit axis from point toward the closest
// vertex of s. For a circle the closest "vertex" is its center. The second
// result is false when point coincides with that vertex.
func (s *Shape) NearestVertexAxis(point r2.Vec) (r2.Vec, bool) {
	if s.Kind == Circle || len(s.Vertices) == 0 {
		return Unit(r2.Sub(s.Position, point))
	}
	best := s.Vertices[0]
	bestDist := r2.Norm2(r2.Sub(best, point))
	for _, v := range s.Vertices[1:] {
		if d := r2.Norm2(r2.Sub(v, point)); d < bestDist {
			best, bestDist = v, d
		}
	}
	return Unit(r2.Sub(best, point))
}

// Contains reports whether point lies inside the shape. Lines contain nothing.
func (s *Shape) Contains(point r2.Vec) bool {
	switch s.Kind {
	case Circle:
		return r2.Norm2(r2.Sub(point, s.Position)) <= s.Radius*s.Radius
	case Polygon:
		n := len(s.Vertices)
		if n < 3 {
			return false
		}
		var sign float64
		for i := 0; i < n; i++ {
			a, b := s.Vertices[i], s.Vertices[(i+1)%n]
			c := r2.Cross(r2.Sub(b, a), r2.Sub(point, a))
			if c == 0 {
				continue
			}
			if sign == 0 {
				sign = c
			} else if (c > 0) != (sign > 0) {
				return false
			}
		}
		return true
	case Line:
		return false
	}
	return false
}

// Translate moves the shape by delta. Derived fields are stale until Update.
func (s *Shape) Translate(delta r2.Vec) {
	s.Position = r2.Add(s.Position, delta)
}
