package physics

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/collision"
	"github.com/pthm-cable/collide2d/geom"
	"github.com/pthm-cable/collide2d/rigidbody"
	"github.com/pthm-cable/collide2d/telemetry"
)

// Snapshot captures every collider and body. Callbacks are not captured.
func (w *World) Snapshot(seed int64) *telemetry.Snapshot {
	s := &telemetry.Snapshot{
		Version:    telemetry.SnapshotVersion,
		Seed:       seed,
		Tick:       w.tick,
		Method:     w.opts.Method.String(),
		BroadPhase: w.opts.BroadPhase.String(),
	}

	index := make(map[collision.ID]int)
	w.colliders.Colliders(func(c *collision.Collider) {
		index[c.ID()] = len(s.Colliders)
		s.Colliders = append(s.Colliders, colliderState(c))
	})
	w.bodies.Bodies(func(b *rigidbody.Body) {
		bs := telemetry.BodyState{
			Kind:     b.Kind.String(),
			Position: point(b.Position),
			Velocity: point(b.Velocity),
			Gravity:  b.Gravity,
			Active:   b.Active,
		}
		for _, id := range b.ColliderIDs {
			if i, ok := index[id]; ok {
				bs.Colliders = append(bs.Colliders, i)
			}
		}
		if len(bs.Colliders) > 0 {
			s.Bodies = append(s.Bodies, bs)
		}
	})
	return s
}

// Mapping relates snapshot indexes to the handles assigned by Restore.
type Mapping struct {
	Colliders []collision.ID
	Bodies    []rigidbody.ID
}

// Restore clears the world and registers everything in s. The world keeps
// its own method and broad phase.
func (w *World) Restore(s *telemetry.Snapshot) (Mapping, error) {
	w.Clear()
	w.tick = s.Tick

	var m Mapping
	for i, cs := range s.Colliders {
		shape, err := shapeFromState(cs)
		if err != nil {
			return m, fmt.Errorf("collider %d: %w", i, err)
		}
		pos := vec(cs.Position)
		rot := cs.Rotation
		c, err := w.colliders.Add(collision.Descriptor{
			Shape:            shape,
			Layer:            cs.Layer,
			Group:            cs.Group,
			Physics:          cs.Physics,
			UpdateCollisions: cs.UpdateCollisions,
			Position:         &pos,
			Rotation:         &rot,
		})
		if err != nil {
			return m, fmt.Errorf("collider %d: %w", i, err)
		}
		c.Active = cs.Active
		m.Colliders = append(m.Colliders, c.ID())
	}

	for i, bs := range s.Bodies {
		kind, err := rigidbody.ParseKind(bs.Kind)
		if err != nil {
			return m, fmt.Errorf("body %d: %w", i, err)
		}
		ids := make([]collision.ID, 0, len(bs.Colliders))
		for _, ci := range bs.Colliders {
			if ci < 0 || ci >= len(m.Colliders) {
				return m, fmt.Errorf("body %d: collider index %d out of range", i, ci)
			}
			ids = append(ids, m.Colliders[ci])
		}
		pos := vec(bs.Position)
		gravity := bs.Gravity
		b, err := w.bodies.Add(rigidbody.Descriptor{
			Kind:        kind,
			ColliderIDs: ids,
			Position:    &pos,
			Gravity:     &gravity,
			Velocity:    vec(bs.Velocity),
		})
		if err != nil {
			return m, fmt.Errorf("body %d: %w", i, err)
		}
		b.Active = bs.Active
		m.Bodies = append(m.Bodies, b.ID())
	}

	w.logger.Info("snapshot restored", "tick", s.Tick, "colliders", len(m.Colliders), "bodies", len(m.Bodies))
	return m, nil
}

func colliderState(c *collision.Collider) telemetry.ColliderState {
	s := c.Shape
	cs := telemetry.ColliderState{
		Shape:            s.Kind.String(),
		Rect:             s.IsRectangle(),
		Radius:           s.Radius,
		Position:         point(s.Position),
		Rotation:         s.Rotation,
		Layer:            c.Layer,
		Group:            c.Group,
		Physics:          c.Physics,
		UpdateCollisions: c.UpdateCollisions,
		Active:           c.Active,
	}
	for _, p := range s.Local {
		cs.Points = append(cs.Points, point(p))
	}
	return cs
}

func shapeFromState(cs telemetry.ColliderState) (*geom.Shape, error) {
	switch cs.Shape {
	case geom.Circle.String():
		return geom.NewCircle(cs.Radius), nil
	case geom.Line.String():
		if len(cs.Points) != 2 {
			return nil, fmt.Errorf("line needs 2 points, got %d", len(cs.Points))
		}
		return geom.NewLine(vec(cs.Points[0]), vec(cs.Points[1])), nil
	case geom.Polygon.String():
		if cs.Rect && len(cs.Points) == 4 {
			return geom.NewRectangle(cs.Points[2].X-cs.Points[0].X, cs.Points[2].Y-cs.Points[0].Y), nil
		}
		if len(cs.Points) < 3 {
			return nil, fmt.Errorf("polygon needs 3 points, got %d", len(cs.Points))
		}
		pts := make([]r2.Vec, len(cs.Points))
		for i, p := range cs.Points {
			pts[i] = vec(p)
		}
		return geom.NewPolygon(pts...), nil
	}
	return nil, fmt.Errorf("unknown shape %q", cs.Shape)
}

func point(v r2.Vec) telemetry.Point { return telemetry.Point{X: v.X, Y: v.Y} }

func vec(p telemetry.Point) r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Remap relates handles of a world to the handles of its rebuilt copy.
type Remap struct {
	Colliders map[collision.ID]collision.ID
	Bodies    map[rigidbody.ID]rigidbody.ID
}

// Rebuild copies the world into a new one created with opts, for example to
// switch the collision method between runs. Callbacks are not carried over.
func (w *World) Rebuild(opts Options) (*World, Remap, error) {
	var oldColliders []collision.ID
	w.colliders.Colliders(func(c *collision.Collider) {
		oldColliders = append(oldColliders, c.ID())
	})
	var oldBodies []rigidbody.ID
	w.bodies.Bodies(func(b *rigidbody.Body) {
		if slices.ContainsFunc(b.ColliderIDs, func(id collision.ID) bool { return w.colliders.Get(id) != nil }) {
			oldBodies = append(oldBodies, b.ID())
		}
	})

	next := New(opts)
	m, err := next.Restore(w.Snapshot(0))
	if err != nil {
		return nil, Remap{}, err
	}

	r := Remap{
		Colliders: make(map[collision.ID]collision.ID, len(oldColliders)),
		Bodies:    make(map[rigidbody.ID]rigidbody.ID, len(oldBodies)),
	}
	for i, id := range oldColliders {
		r.Colliders[id] = m.Colliders[i]
	}
	for i, id := range oldBodies {
		r.Bodies[id] = m.Bodies[i]
	}
	return next, r, nil
}
