// Package scene keeps an ECS world in step with a physics world. Entities
// hold collider and body handles; the physics world stays the owner of all
// simulation state.
package scene

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/collision"
	"github.com/pthm-cable/collide2d/components"
	"github.com/pthm-cable/collide2d/geom"
	"github.com/pthm-cable/collide2d/physics"
	"github.com/pthm-cable/collide2d/rigidbody"
)

// Spawn describes an entity with one collider and one body.
type Spawn struct {
	Shape    *geom.Shape
	Position r2.Vec
	Rotation float64
	Layer    string
	Group    string
	Kind     rigidbody.Kind
	Velocity r2.Vec
	// Sensor colliders report overlaps but never push bodies.
	Sensor bool
	Tint   components.Tint
}

// Scene mirrors physics bodies into ECS entities.
type Scene struct {
	world *ecs.World
	phys  *physics.World

	mapper *ecs.Map5[
		components.Transform,
		components.ColliderRef,
		components.BodyRef,
		components.Contacts,
		components.Tint,
	]
	filter *ecs.Filter4[
		components.Transform,
		components.ColliderRef,
		components.BodyRef,
		components.Contacts,
	]
	drawFilter *ecs.Filter3[
		components.ColliderRef,
		components.Contacts,
		components.Tint,
	]
	colliderMap *ecs.Map[components.ColliderRef]
	bodyMap     *ecs.Map[components.BodyRef]

	count int
}

// New creates an empty scene over phys.
func New(phys *physics.World) *Scene {
	world := ecs.NewWorld()
	return &Scene{
		world: world,
		phys:  phys,
		mapper: ecs.NewMap5[
			components.Transform,
			components.ColliderRef,
			components.BodyRef,
			components.Contacts,
			components.Tint,
		](world),
		filter: ecs.NewFilter4[
			components.Transform,
			components.ColliderRef,
			components.BodyRef,
			components.Contacts,
		](world),
		drawFilter: ecs.NewFilter3[
			components.ColliderRef,
			components.Contacts,
			components.Tint,
		](world),
		colliderMap: ecs.NewMap[components.ColliderRef](world),
		bodyMap:     ecs.NewMap[components.BodyRef](world),
	}
}

// World returns the ECS world.
func (s *Scene) World() *ecs.World { return s.world }

// Physics returns the physics world the scene is bound to.
func (s *Scene) Physics() *physics.World { return s.phys }

// Len returns the number of spawned entities.
func (s *Scene) Len() int { return s.count }

// Spawn registers a collider and body in the physics world and creates the
// entity referencing them.
func (s *Scene) Spawn(sp Spawn) (ecs.Entity, error) {
	pos, rot := sp.Position, sp.Rotation
	c, err := s.phys.AddCollider(collision.Descriptor{
		Shape:            sp.Shape,
		Layer:            sp.Layer,
		Group:            sp.Group,
		Physics:          !sp.Sensor,
		UpdateCollisions: sp.Kind != rigidbody.Static,
		Position:         &pos,
		Rotation:         &rot,
	})
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("spawning collider: %w", err)
	}
	b, err := s.phys.AddBody(rigidbody.Descriptor{
		Kind:        sp.Kind,
		ColliderIDs: []collision.ID{c.ID()},
		Velocity:    sp.Velocity,
	})
	if err != nil {
		s.phys.RemoveCollider(c.ID())
		return ecs.Entity{}, fmt.Errorf("spawning body: %w", err)
	}

	tr := components.Transform{X: pos.X, Y: pos.Y, Rotation: rot}
	cref := components.ColliderRef{ID: c.ID()}
	bref := components.BodyRef{ID: b.ID()}
	contacts := components.Contacts{}
	tint := sp.Tint
	s.count++
	return s.mapper.NewEntity(&tr, &cref, &bref, &contacts, &tint), nil
}

// Adopt creates an entity for a body that is already registered, such as
// one restored from a snapshot. The body's first collider is referenced.
func (s *Scene) Adopt(b *rigidbody.Body, tint components.Tint) (ecs.Entity, error) {
	if b == nil || len(b.ColliderIDs) == 0 {
		return ecs.Entity{}, rigidbody.ErrNoColliders
	}
	c := s.phys.Collider(b.ColliderIDs[0])
	if c == nil {
		return ecs.Entity{}, fmt.Errorf("body %s: collider %s not registered", b.ID(), b.ColliderIDs[0])
	}

	tr := components.Transform{X: b.Position.X, Y: b.Position.Y, Rotation: c.Shape.Rotation}
	cref := components.ColliderRef{ID: c.ID()}
	bref := components.BodyRef{ID: b.ID()}
	contacts := components.Contacts{}
	s.count++
	return s.mapper.NewEntity(&tr, &cref, &bref, &contacts, &tint), nil
}

// Despawn removes the entity and its physics registrations. Despawning a
// dead entity does nothing.
func (s *Scene) Despawn(e ecs.Entity) {
	if !s.world.Alive(e) || !s.colliderMap.Has(e) {
		return
	}
	s.phys.RemoveBody(s.bodyMap.Get(e).ID)
	s.phys.RemoveCollider(s.colliderMap.Get(e).ID)
	s.world.RemoveEntity(e)
	s.count--
}

// Collider returns the collider of entity e, or nil.
func (s *Scene) Collider(e ecs.Entity) *collision.Collider {
	if !s.world.Alive(e) || !s.colliderMap.Has(e) {
		return nil
	}
	return s.phys.Collider(s.colliderMap.Get(e).ID)
}

// Body returns the body of entity e, or nil.
func (s *Scene) Body(e ecs.Entity) *rigidbody.Body {
	if !s.world.Alive(e) || !s.bodyMap.Has(e) {
		return nil
	}
	return s.phys.Body(s.bodyMap.Get(e).ID)
}

// Pick returns the entity whose collider contains p. When several do, the
// one with the smallest bounding box wins.
func (s *Scene) Pick(p r2.Vec) (ecs.Entity, bool) {
	var (
		best     ecs.Entity
		bestArea = math.Inf(1)
		found    bool
	)
	query := s.filter.Query()
	for query.Next() {
		_, cref, _, _ := query.Get()
		c := s.phys.Collider(cref.ID)
		if c == nil || !c.Shape.Contains(p) {
			continue
		}
		size := c.Shape.Bounds.Size()
		if area := size.X * size.Y; area < bestArea {
			best, bestArea, found = query.Entity(), area, true
		}
	}
	return best, found
}

// Tint returns the display color of a collider's entity. The second result
// is false if no entity references the collider.
func (s *Scene) Tint(id collision.ID) (components.Tint, bool) {
	var (
		tint  components.Tint
		found bool
	)
	s.Visit(func(c *collision.Collider, _ components.Contacts, t components.Tint) {
		if !found && c.ID() == id {
			tint, found = t, true
		}
	})
	return tint, found
}

// Visit calls fn for every entity whose collider is still registered, with
// the contact summary from the last Sync. fn must not spawn or despawn.
func (s *Scene) Visit(fn func(c *collision.Collider, contacts components.Contacts, tint components.Tint)) {
	query := s.drawFilter.Query()
	for query.Next() {
		cref, contacts, tint := query.Get()
		if c := s.phys.Collider(cref.ID); c != nil {
			fn(c, *contacts, *tint)
		}
	}
}

// Sync copies body poses and contact summaries into the ECS components.
func (s *Scene) Sync() {
	query := s.filter.Query()
	for query.Next() {
		tr, cref, bref, contacts := query.Get()

		if b := s.phys.Body(bref.ID); b != nil {
			tr.X, tr.Y = b.Position.X, b.Position.Y
		}
		if c := s.phys.Collider(cref.ID); c != nil {
			tr.Rotation = c.Shape.Rotation
		}

		*contacts = components.Contacts{}
		for _, col := range s.phys.CollisionsFor(cref.ID) {
			contacts.Count++
			contacts.Deepest = max(contacts.Deepest, col.Resolution.Penetration)
		}
	}
}

// Cull despawns every entity whose transform left bounds and returns how
// many were removed.
func (s *Scene) Cull(bounds r2.Box) int {
	// Collect first; the world is locked while a query runs.
	var out []ecs.Entity
	query := s.filter.Query()
	for query.Next() {
		tr, _, _, _ := query.Get()
		if tr.X < bounds.Min.X || tr.X > bounds.Max.X || tr.Y < bounds.Min.Y || tr.Y > bounds.Max.Y {
			out = append(out, query.Entity())
		}
	}
	for _, e := range out {
		s.Despawn(e)
	}
	return len(out)
}

// Rebind points the scene at a rebuilt physics world. Entities whose
// handles have no counterpart are despawned.
func (s *Scene) Rebind(phys *physics.World, remap physics.Remap) {
	var orphans []ecs.Entity
	query := s.filter.Query()
	for query.Next() {
		_, cref, bref, _ := query.Get()
		cid, okC := remap.Colliders[cref.ID]
		bid, okB := remap.Bodies[bref.ID]
		if !okC || !okB {
			orphans = append(orphans, query.Entity())
			continue
		}
		cref.ID, bref.ID = cid, bid
	}

	s.phys = phys
	for _, e := range orphans {
		s.world.RemoveEntity(e)
		s.count--
	}
}
