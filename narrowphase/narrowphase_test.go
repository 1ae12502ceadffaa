package narrowphase

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/geom"
)

const tol = 1e-9

func at(s *geom.Shape, x, y float64) *geom.Shape {
	s.Position = r2.Vec{X: x, Y: y}
	s.Update()
	return s
}

func checkResolution(t *testing.T, got Resolution, ok bool, wantPen float64, wantDir r2.Vec) {
	t.Helper()
	if !ok {
		t.Fatal("expected a collision")
	}
	if !scalar.EqualWithinAbs(got.Penetration, wantPen, 1e-6) {
		t.Errorf("penetration = %f, want %f", got.Penetration, wantPen)
	}
	if !geom.ApproxEqual(got.Direction, wantDir, 1e-6) {
		t.Errorf("direction = %+v, want %+v", got.Direction, wantDir)
	}
	if !geom.ApproxEqual(got.Displacement, geom.Neg(wantDir), 1e-6) {
		t.Errorf("displacement = %+v, want %+v", got.Displacement, geom.Neg(wantDir))
	}
}

func TestResolveCircles(t *testing.T) {
	a := at(geom.NewCircle(5), 0, 0)
	b := at(geom.NewCircle(5), 8, 0)
	res, ok := ResolveCircles(a, b)
	checkResolution(t, res, ok, 2, r2.Vec{X: 1})

	far := at(geom.NewCircle(5), 11, 0)
	if _, ok := ResolveCircles(a, far); ok {
		t.Error("circles 11 apart with radii 5 should not collide")
	}

	same := at(geom.NewCircle(2), 0, 0)
	res, ok = ResolveCircles(a, same)
	checkResolution(t, res, ok, 7, r2.Vec{X: 1})
}

func TestSeparation(t *testing.T) {
	tests := []struct {
		name                   string
		minA, maxA, minB, maxB float64
		wantDepth              float64
		wantFlip, wantOK       bool
	}{
		{"b ahead", 0, 2, 1, 3, 1, false, true},
		{"b behind", 1, 3, 0, 2, 1, true, true},
		{"disjoint", 0, 1, 2, 3, 0, false, false},
		{"touching", 0, 1, 1, 2, 0, false, false},
		{"a nested near low side", 1, 2, 0, 10, 2, false, true},
		{"a nested near high side", 7, 8, 0, 10, 3, true, true},
		{"b nested in a", 0, 10, 6, 7, 4, false, true},
		{"degenerate inside", 0.8, 0.8, -1, 1, 0.2, true, true},
		{"degenerate outside", 2, 2, -1, 1, 0, false, false},
		{"degenerate on edge", 1, 1, -1, 1, 0, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			depth, flip, ok := separation(tc.minA, tc.maxA, tc.minB, tc.maxB)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if !scalar.EqualWithinAbs(depth, tc.wantDepth, tol) {
				t.Errorf("depth = %f, want %f", depth, tc.wantDepth)
			}
			if flip != tc.wantFlip {
				t.Errorf("flip = %v, want %v", flip, tc.wantFlip)
			}
		})
	}
}

func TestSATRectangles(t *testing.T) {
	var sat SATResolver
	a := at(geom.NewRectangle(2, 2), 0, 0)
	b := at(geom.NewRectangle(2, 2), 1.5, 0.5)
	res, ok := sat.Resolve(a, b)
	checkResolution(t, res, ok, 0.5, r2.Vec{X: 1})

	res, ok = sat.Resolve(b, a)
	checkResolution(t, res, ok, 0.5, r2.Vec{X: -1})
}

func TestSATRotatedSeparation(t *testing.T) {
	var sat SATResolver
	// Bounding boxes overlap but a rotated diamond clears the corner.
	a := at(geom.NewRectangle(2, 2), 0, 0)
	b := geom.NewRectangle(2, 2)
	b.Rotation = math.Pi / 4
	at(b, 2.3, 2.3)
	if !geom.Overlaps(a.Bounds, b.Bounds) {
		t.Fatal("test setup: bounds should overlap")
	}
	if _, ok := sat.Resolve(a, b); ok {
		t.Error("SAT should find the diagonal separating axis")
	}
	if _, ok := ResolveAABB(a, b); !ok {
		t.Error("AABB should report the bounding-box overlap")
	}
}

func TestSATContainment(t *testing.T) {
	var sat SATResolver
	small := at(geom.NewRectangle(1, 1), 0.8, 0)
	big := at(geom.NewRectangle(4, 4), 0, 0)

	res, ok := sat.Resolve(small, big)
	checkResolution(t, res, ok, 1.7, r2.Vec{X: -1})

	res, ok = ResolveAABB(small, big)
	checkResolution(t, res, ok, 1.7, r2.Vec{X: -1})
}

func TestLineAgainstRectangle(t *testing.T) {
	var sat SATResolver
	line := at(geom.NewLine(r2.Vec{X: -5}, r2.Vec{X: 5}), 0, 0.8)
	box := at(geom.NewRectangle(2, 2), 0, 0)

	res, ok := sat.Resolve(line, box)
	checkResolution(t, res, ok, 0.2, r2.Vec{Y: -1})

	res, ok = ResolveAABB(line, box)
	checkResolution(t, res, ok, 0.2, r2.Vec{Y: -1})

	above := at(geom.NewLine(r2.Vec{X: -5}, r2.Vec{X: 5}), 0, 1.5)
	if _, ok := sat.Resolve(above, box); ok {
		t.Error("line above the box should not collide")
	}
	if _, ok := ResolveAABB(above, box); ok {
		t.Error("line above the box should not collide (AABB)")
	}
}

func TestCircleAgainstRectangle(t *testing.T) {
	var sat SATResolver
	circle := at(geom.NewCircle(1), 1.5, 0)
	box := at(geom.NewRectangle(2, 2), 0, 0)

	res, ok := sat.Resolve(circle, box)
	checkResolution(t, res, ok, 0.5, r2.Vec{X: -1})

	res, ok = ResolveCircleBox(circle, box)
	checkResolution(t, res, ok, 0.5, r2.Vec{X: -1})

	res, ok = ResolveCircleBox(box, circle)
	checkResolution(t, res, ok, 0.5, r2.Vec{X: 1})

	corner := at(geom.NewCircle(1), 2, 2)
	if _, ok := sat.Resolve(corner, box); ok {
		t.Error("circle off the corner should be separated by the vertex axis")
	}
	if _, ok := ResolveCircleBox(corner, box); ok {
		t.Error("circle off the corner should not touch the box")
	}
}

func TestCircleInsideBox(t *testing.T) {
	circle := at(geom.NewCircle(0.5), 0.8, 0)
	box := at(geom.NewRectangle(4, 4), 0, 0)
	res, ok := ResolveCircleBox(circle, box)
	checkResolution(t, res, ok, 1.7, r2.Vec{X: -1})
}

func TestAABBAgreesWithSATOnAxisAlignedBoxes(t *testing.T) {
	tests := []struct {
		name   string
		aw, ah float64
		bx, by float64
		bw, bh float64
	}{
		{"overlap right", 2, 2, 1.5, 0.5, 2, 2},
		{"overlap left below", 2, 2, -1.2, -1.7, 2, 2},
		{"wide over tall", 6, 1, 0.5, 0.2, 1, 6},
		{"separated x", 2, 2, 3, 0, 2, 2},
		{"separated y", 2, 2, 0, -2.5, 2, 2},
		{"nested", 10, 10, 3, -1, 1, 1},
	}
	var sat SATResolver
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := at(geom.NewRectangle(tc.aw, tc.ah), 0, 0)
			b := at(geom.NewRectangle(tc.bw, tc.bh), tc.bx, tc.by)

			sr, sok := sat.Resolve(a, b)
			ar, aok := ResolveAABB(a, b)
			if sok != aok {
				t.Fatalf("SAT ok = %v, AABB ok = %v", sok, aok)
			}
			if !sok {
				return
			}
			if !scalar.EqualWithinAbs(sr.Penetration, ar.Penetration, 1e-9) {
				t.Errorf("penetration SAT %f vs AABB %f", sr.Penetration, ar.Penetration)
			}
			if !geom.ApproxEqual(sr.Direction, ar.Direction, 1e-9) {
				t.Errorf("direction SAT %+v vs AABB %+v", sr.Direction, ar.Direction)
			}
		})
	}
}

func TestReverse(t *testing.T) {
	r := Resolution{Penetration: 3, Direction: r2.Vec{X: 1}, Displacement: r2.Vec{X: -1}}
	rev := r.Reverse()
	if rev.Penetration != 3 || rev.Direction != r.Displacement || rev.Displacement != r.Direction {
		t.Errorf("Reverse() = %+v", rev)
	}
}

func TestMethodDispatch(t *testing.T) {
	c1 := at(geom.NewCircle(5), 0, 0)
	c2 := at(geom.NewCircle(5), 8, 0)
	box := at(geom.NewRectangle(2, 2), 5.5, 0)

	for _, kind := range []MethodKind{SAT, AABB} {
		t.Run(kind.String(), func(t *testing.T) {
			m := NewMethod(kind)
			if m.Kind() != kind {
				t.Fatalf("Kind() = %v, want %v", m.Kind(), kind)
			}
			res, ok := m.Resolve(c1, c2)
			checkResolution(t, res, ok, 2, r2.Vec{X: 1})

			res, ok = m.Resolve(c1, box)
			checkResolution(t, res, ok, 0.5, r2.Vec{X: 1})
		})
	}
}

func TestParseMethod(t *testing.T) {
	if k, err := ParseMethod("aabb"); err != nil || k != AABB {
		t.Errorf("ParseMethod(aabb) = %v, %v", k, err)
	}
	if k, err := ParseMethod("sat"); err != nil || k != SAT {
		t.Errorf("ParseMethod(sat) = %v, %v", k, err)
	}
	if _, err := ParseMethod("gjk"); err == nil {
		t.Error("expected an error for an unknown method")
	}
}
