package narrowphase

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/geom"
)

// ResolveAABB compares the bounding boxes of a and b on x and y only.
func ResolveAABB(a, b *geom.Shape) (Resolution, bool) {
	ba, bb := a.Bounds, b.Bounds

	dx, flipX, ok := separation(ba.Min.X, ba.Max.X, bb.Min.X, bb.Max.X)
	if !ok {
		return Resolution{}, false
	}
	dy, flipY, ok := separation(ba.Min.Y, ba.Max.Y, bb.Min.Y, bb.Max.Y)
	if !ok {
		return Resolution{}, false
	}

	axis, depth, flip := 0, dx, flipX
	if dy < dx {
		axis, depth, flip = 1, dy, flipY
	}
	sign := 1.0
	if flip {
		sign = -1
	}
	dir := geom.AxisVec(axis, sign)
	return Resolution{
		Penetration:  depth,
		Direction:    dir,
		Displacement: geom.Neg(dir),
	}, true
}

// ResolveCircles tests two circles by center distance.
func ResolveCircles(a, b *geom.Shape) (Resolution, bool) {
	d := r2.Sub(b.Position, a.Position)
	dist := r2.Norm(d)
	sum := a.Radius + b.Radius
	if dist > sum {
		return Resolution{}, false
	}

	dir, ok := geom.Unit(d)
	if !ok {
		dir = r2.Vec{X: 1} // coincident centers
	}
	return Resolution{
		Penetration:  sum - dist,
		Direction:    dir,
		Displacement: geom.Neg(dir),
	}, true
}

// ResolveCircleBox tests a circle against the bounding box of a polygon or
// line. Either argument may be the circle; the result is expressed for a.
func ResolveCircleBox(a, b *geom.Shape) (Resolution, bool) {
	if a.Kind == geom.Circle {
		return circleBox(a, b.Bounds)
	}
	res, ok := circleBox(b, a.Bounds)
	if !ok {
		return Resolution{}, false
	}
	return res.Reverse(), true
}

func circleBox(c *geom.Shape, box r2.Box) (Resolution, bool) {
	p := c.Position
	closest := r2.Vec{
		X: min(max(p.X, box.Min.X), box.Max.X),
		Y: min(max(p.Y, box.Min.Y), box.Max.Y),
	}
	d := r2.Sub(closest, p)
	dist2 := r2.Norm2(d)
	if dist2 > c.Radius*c.Radius {
		return Resolution{}, false
	}

	if dist2 > 0 {
		dist := r2.Norm(d)
		dir := r2.Scale(1/dist, d)
		return Resolution{
			Penetration:  c.Radius - dist,
			Direction:    dir,
			Displacement: geom.Neg(dir),
		}, true
	}

	// Center inside the box: leave through the nearest side.
	exits := [4]struct {
		gap float64
		out r2.Vec
	}{
		{p.X - box.Min.X, r2.Vec{X: -1}},
		{box.Max.X - p.X, r2.Vec{X: 1}},
		{p.Y - box.Min.Y, r2.Vec{Y: -1}},
		{box.Max.Y - p.Y, r2.Vec{Y: 1}},
	}
	best := exits[0]
	for _, e := range exits[1:] {
		if e.gap < best.gap {
			best = e
		}
	}
	return Resolution{
		Penetration:  best.gap + c.Radius,
		Direction:    geom.Neg(best.out),
		Displacement: best.out,
	}, true
}
