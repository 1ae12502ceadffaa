package rigidbody

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/collision"
	"github.com/pthm-cable/collide2d/geom"
)

type slot struct {
	body *Body
	gen  uint32
}

// Manager integrates every registered body against a collision manager.
type Manager struct {
	colliders *collision.Manager
	gravity   float64
	logger    *slog.Logger

	slots []slot
	free  []uint32
	count int
}

// NewManager creates a body manager that moves colliders owned by colliders.
// gravity is used for bodies that do not set their own.
func NewManager(colliders *collision.Manager, gravity float64, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		colliders: colliders,
		gravity:   gravity,
		logger:    logger,
	}
}

// Add registers a body. The body starts active.
func (m *Manager) Add(desc Descriptor) (*Body, error) {
	if len(desc.ColliderIDs) == 0 {
		return nil, ErrNoColliders
	}

	b := &Body{
		Kind:        desc.Kind,
		ColliderIDs: append([]collision.ID(nil), desc.ColliderIDs...),
		Velocity:    desc.Velocity,
		Gravity:     m.gravity,
		Active:      true,
		OnResolve:   desc.OnResolve,
	}
	if desc.Gravity != nil {
		b.Gravity = *desc.Gravity
	}
	switch {
	case desc.Position != nil:
		b.Position = *desc.Position
	default:
		if c := m.colliders.Get(b.ColliderIDs[0]); c != nil {
			b.Position = c.Shape.Position
		}
	}

	var idx uint32
	if n := len(m.free); n > 0 {
		idx = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		idx = uint32(len(m.slots))
		m.slots = append(m.slots, slot{})
	}
	s := &m.slots[idx]
	s.gen++
	s.body = b
	b.id = ID{Index: idx, Gen: s.gen}
	m.count++

	m.logger.Debug("body added", "id", b.id.String(), "kind", b.Kind.String(), "colliders", len(b.ColliderIDs))
	return b, nil
}

// Get returns the body for id, or nil if it was removed.
func (m *Manager) Get(id ID) *Body {
	if int(id.Index) >= len(m.slots) {
		return nil
	}
	s := m.slots[id.Index]
	if s.body == nil || s.gen != id.Gen {
		return nil
	}
	return s.body
}

// Remove unregisters a body. Its colliders stay registered.
func (m *Manager) Remove(id ID) bool {
	if m.Get(id) == nil {
		return false
	}
	m.slots[id.Index].body = nil
	m.free = append(m.free, id.Index)
	m.count--
	return true
}

// Clear removes every body.
func (m *Manager) Clear() {
	for i := range m.slots {
		if m.slots[i].body != nil {
			m.slots[i].body = nil
			m.free = append(m.free, uint32(i))
		}
	}
	m.count = 0
}

// Len returns the number of registered bodies.
func (m *Manager) Len() int { return m.count }

// Bodies calls fn for every registered body in slot order.
func (m *Manager) Bodies(fn func(*Body)) {
	for _, s := range m.slots {
		if s.body != nil {
			fn(s.body)
		}
	}
}

// Resolve advances every active body by dt seconds. The collision set must
// already be current; colliders are refreshed as they move.
func (m *Manager) Resolve(dt float64) {
	for _, s := range m.slots {
		b := s.body
		if b == nil || !b.Active {
			continue
		}
		switch b.Kind {
		case Static:
			continue
		case Dynamic:
			m.integrate(b, dt)
		case Kinematic:
			m.move(b, r2.Scale(dt, b.Velocity))
		}
		if b.OnResolve != nil {
			b.OnResolve(b)
		}
	}
}

// integrate moves a dynamic body one axis at a time. After each move the
// deepest correction among its physics contacts is applied, and velocity on
// that axis is dropped if the correction pushes against it.
func (m *Manager) integrate(b *Body, dt float64) {
	if b.Gravity > 0 {
		b.Velocity.Y -= b.Gravity * dt
	}

	for axis := 0; axis < 2; axis++ {
		m.move(b, geom.AxisVec(axis, geom.Component(b.Velocity, axis)*dt))

		correction := m.correction(b, axis)
		if correction == 0 {
			continue
		}
		m.move(b, geom.AxisVec(axis, correction))

		v := geom.Component(b.Velocity, axis)
		if v != 0 && (correction > 0) != (v > 0) {
			b.Velocity = zeroAxis(b.Velocity, axis)
		}
	}
}

// correction returns the signed displacement on axis with the greatest
// magnitude among the body's physics contacts. Ties keep the first found.
func (m *Manager) correction(b *Body, axis int) float64 {
	var best float64
	for _, cid := range b.ColliderIDs {
		c := m.colliders.Get(cid)
		if c == nil || !c.Physics {
			continue
		}
		for _, col := range m.colliders.CollisionsFor(cid) {
			if !col.Remote.Physics || b.Owns(col.Remote.ID()) {
				continue
			}
			d := geom.Component(col.Resolution.Displacement, axis) * col.Resolution.Penetration
			if math.Abs(d) > math.Abs(best) {
				best = d
			}
		}
	}
	return best
}

// move shifts the body and its colliders by delta and refreshes their
// collisions. Colliders are refreshed even for a zero delta so contacts
// with things that moved this step stay current.
func (m *Manager) move(b *Body, delta r2.Vec) {
	b.Position = r2.Add(b.Position, delta)
	for _, cid := range b.ColliderIDs {
		if c := m.colliders.Get(cid); c != nil {
			c.Shape.Translate(delta)
		}
	}
	for _, cid := range b.ColliderIDs {
		m.colliders.RefreshCollider(cid)
	}
}

func zeroAxis(v r2.Vec, axis int) r2.Vec {
	if axis == 0 {
		v.X = 0
	} else {
		v.Y = 0
	}
	return v
}
