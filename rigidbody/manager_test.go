package rigidbody

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/collision"
	"github.com/pthm-cable/collide2d/geom"
	"github.com/pthm-cable/collide2d/narrowphase"
)

type fixture struct {
	colliders *collision.Manager
	bodies    *Manager
}

func newFixture() *fixture {
	cm := collision.NewManager(collision.Options{Method: narrowphase.SAT})
	return &fixture{colliders: cm, bodies: NewManager(cm, 10, nil)}
}

func (f *fixture) collider(t *testing.T, shape *geom.Shape, x, y float64, physics bool) *collision.Collider {
	t.Helper()
	c, err := f.colliders.Add(collision.Descriptor{
		Shape:            shape,
		Layer:            "world",
		Physics:          physics,
		UpdateCollisions: true,
		Position:         &r2.Vec{X: x, Y: y},
	})
	if err != nil {
		t.Fatalf("add collider: %v", err)
	}
	return c
}

func (f *fixture) body(t *testing.T, desc Descriptor) *Body {
	t.Helper()
	b, err := f.bodies.Add(desc)
	if err != nil {
		t.Fatalf("add body: %v", err)
	}
	return b
}

func (f *fixture) step(dt float64) {
	f.colliders.Resolve()
	f.bodies.Resolve(dt)
}

func TestFallingBodyLands(t *testing.T) {
	f := newFixture()
	ground := f.collider(t, geom.NewRectangle(20, 2), 0, 0, true)
	ball := f.collider(t, geom.NewCircle(1), 0, 4, true)
	f.body(t, Descriptor{Kind: Static, ColliderIDs: []collision.ID{ground.ID()}})
	b := f.body(t, Descriptor{Kind: Dynamic, ColliderIDs: []collision.ID{ball.ID()}})

	const dt = 0.05
	landed := -1
	for tick := 0; tick < 200; tick++ {
		before := b.Velocity.Y
		f.step(dt)
		if before < 0 && b.Velocity.Y == 0 {
			landed = tick
			break
		}
		if b.Velocity.Y >= 0 {
			t.Fatalf("tick %d: velocity %f should stay negative while falling", tick, b.Velocity.Y)
		}
	}
	if landed < 0 {
		t.Fatal("body never landed")
	}

	if !scalar.EqualWithinAbs(b.Position.Y, 2, 1e-9) {
		t.Errorf("body y = %f, want 2 (resting on the ground)", b.Position.Y)
	}
	if !scalar.EqualWithinAbs(ball.Shape.Position.Y, b.Position.Y, 1e-12) {
		t.Errorf("collider y = %f, body y = %f", ball.Shape.Position.Y, b.Position.Y)
	}
	if ground.Shape.Position != (r2.Vec{}) {
		t.Errorf("static ground moved to %+v", ground.Shape.Position)
	}

	for i := 0; i < 10; i++ {
		f.step(dt)
		if b.Velocity.Y != 0 {
			t.Fatalf("resting body velocity = %f, want 0", b.Velocity.Y)
		}
		if !scalar.EqualWithinAbs(b.Position.Y, 2, 1e-9) {
			t.Fatalf("resting body drifted to y = %f", b.Position.Y)
		}
	}
}

func TestDeepestCorrectionWins(t *testing.T) {
	f := newFixture()
	f.collider(t, geom.NewRectangle(2, 2), 0, -1.5, true)
	f.collider(t, geom.NewRectangle(2, 2), 0, 1.8, true)
	ball := f.collider(t, geom.NewCircle(1), 0, 0, true)
	b := f.body(t, Descriptor{Kind: Dynamic, ColliderIDs: []collision.ID{ball.ID()}})

	f.colliders.Resolve()
	if got := f.bodies.correction(b, 1); !scalar.EqualWithinAbs(got, 0.5, 1e-9) {
		t.Errorf("vertical correction = %f, want 0.5", got)
	}
	if got := f.bodies.correction(b, 0); got != 0 {
		t.Errorf("horizontal correction = %f, want 0", got)
	}
}

func TestNonPhysicsCollidersDoNotPush(t *testing.T) {
	f := newFixture()
	sensor := f.collider(t, geom.NewRectangle(20, 2), 0, 0, false)
	ball := f.collider(t, geom.NewCircle(1), 0, 1.5, true)
	b := f.body(t, Descriptor{Kind: Dynamic, ColliderIDs: []collision.ID{ball.ID()}})

	f.step(0.1)

	if b.Velocity.Y != -1 {
		t.Errorf("velocity = %f, want -1", b.Velocity.Y)
	}
	if !scalar.EqualWithinAbs(b.Position.Y, 1.4, 1e-12) {
		t.Errorf("y = %f, want 1.4", b.Position.Y)
	}
	if len(f.colliders.CollisionsFor(sensor.ID())) != 1 {
		t.Error("sensor should still report the overlap")
	}
}

func TestOwnCollidersIgnored(t *testing.T) {
	f := newFixture()
	a := f.collider(t, geom.NewCircle(1), 0, 0, true)
	c := f.collider(t, geom.NewCircle(1), 1, 0, true)
	zero := 0.0
	b := f.body(t, Descriptor{
		Kind:        Dynamic,
		ColliderIDs: []collision.ID{a.ID(), c.ID()},
		Gravity:     &zero,
		Velocity:    r2.Vec{X: 2},
	})

	f.step(0.5)

	if b.Position != (r2.Vec{X: 1}) {
		t.Errorf("position = %+v, want (1,0)", b.Position)
	}
	if b.Velocity != (r2.Vec{X: 2}) {
		t.Errorf("velocity = %+v, want unchanged", b.Velocity)
	}
	if a.Shape.Position != (r2.Vec{X: 1}) || c.Shape.Position != (r2.Vec{X: 2}) {
		t.Errorf("colliders at %+v and %+v", a.Shape.Position, c.Shape.Position)
	}
}

func TestKinematicIgnoresGravityAndContacts(t *testing.T) {
	f := newFixture()
	f.collider(t, geom.NewRectangle(20, 2), 0, 0, true)
	ball := f.collider(t, geom.NewCircle(1), 0, 1.5, true)
	b := f.body(t, Descriptor{
		Kind:        Kinematic,
		ColliderIDs: []collision.ID{ball.ID()},
		Velocity:    r2.Vec{X: 1, Y: -1},
	})

	f.step(0.25)

	if b.Velocity != (r2.Vec{X: 1, Y: -1}) {
		t.Errorf("velocity = %+v, want unchanged", b.Velocity)
	}
	want := r2.Vec{X: 0.25, Y: 1.25}
	if !geom.ApproxEqual(b.Position, want, 1e-12) {
		t.Errorf("position = %+v, want %+v", b.Position, want)
	}
	cols := f.colliders.CollisionsFor(ball.ID())
	if len(cols) != 1 || !scalar.EqualWithinAbs(cols[0].Resolution.Penetration, 0.75, 1e-9) {
		t.Errorf("refreshed contacts = %+v, want one with penetration 0.75", cols)
	}
}

func TestOnResolveAndInactive(t *testing.T) {
	f := newFixture()
	ball := f.collider(t, geom.NewCircle(1), 0, 10, true)
	calls := 0
	b := f.body(t, Descriptor{
		Kind:        Dynamic,
		ColliderIDs: []collision.ID{ball.ID()},
		OnResolve:   func(*Body) { calls++ },
	})

	f.step(0.1)
	b.Active = false
	f.step(0.1)

	if calls != 1 {
		t.Errorf("OnResolve calls = %d, want 1", calls)
	}
	if b.Velocity.Y != -1 {
		t.Errorf("inactive body kept integrating: v = %f", b.Velocity.Y)
	}
}

func TestAddValidation(t *testing.T) {
	f := newFixture()
	if _, err := f.bodies.Add(Descriptor{Kind: Dynamic}); err != ErrNoColliders {
		t.Errorf("err = %v, want ErrNoColliders", err)
	}

	c := f.collider(t, geom.NewCircle(1), 3, 4, true)
	b := f.body(t, Descriptor{Kind: Dynamic, ColliderIDs: []collision.ID{c.ID()}})
	if b.Position != (r2.Vec{X: 3, Y: 4}) {
		t.Errorf("default position = %+v, want the collider's", b.Position)
	}
	if b.Gravity != 10 {
		t.Errorf("default gravity = %f, want 10", b.Gravity)
	}

	id := b.ID()
	if !f.bodies.Remove(id) || f.bodies.Get(id) != nil {
		t.Error("Remove did not drop the body")
	}
	if f.colliders.Get(c.ID()) == nil {
		t.Error("removing a body should keep its colliders")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Static, Dynamic, Kinematic} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k, got, err)
		}
	}
	if _, err := ParseKind("floating"); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}
