// Package collision owns the collider registry and computes, once per step,
// the set of overlapping collider pairs.
package collision

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/geom"
	"github.com/pthm-cable/collide2d/narrowphase"
)

// ErrNilShape is returned when a descriptor carries no shape.
var ErrNilShape = errors.New("collider descriptor has no shape")

// ID is a generational handle to a registered collider. A handle keeps
// pointing at nothing once its collider is removed, even if the slot is
// reused by a later registration.
type ID struct {
	Index uint32
	Gen   uint32
}

// Valid reports whether the handle was ever issued. It says nothing about
// whether the collider still exists; use Manager.Get for that.
func (id ID) Valid() bool { return id.Gen != 0 }

func (id ID) String() string {
	return fmt.Sprintf("%d.%d", id.Index, id.Gen)
}

// Descriptor describes a collider to register.
type Descriptor struct {
	Shape *geom.Shape
	Layer string
	// Group suppresses collisions between colliders sharing a non-empty value.
	Group string
	// Physics allows the collider to be displaced by rigid-body resolution.
	Physics bool
	// UpdateCollisions makes the collider initiate narrow-phase queries.
	UpdateCollisions bool

	Position *r2.Vec
	Rotation *float64

	// OnCollision is called on the initiating collider for each overlap found.
	// RefreshCollider reports overlaps again, so within one step it may run
	// several times for the same pair, including for poses that a body
	// correction later undoes. It runs inside Resolve and must not add,
	// remove or refresh colliders.
	OnCollision func(Collision)
}

// Collider is a registered shape.
type Collider struct {
	Shape            *geom.Shape
	Layer            string
	Group            string
	Active           bool
	UpdateCollisions bool
	Physics          bool
	OnCollision      func(Collision)

	id ID
}

// ID returns the handle assigned at registration.
func (c *Collider) ID() ID { return c.id }

// sameGroup reports whether two colliders belong to one compound body.
func sameGroup(a, b *Collider) bool {
	return a.Group != "" && a.Group == b.Group
}

// Collision is a directional overlap record, valid for the current step only.
// Every overlap is reported twice, once from each side.
type Collision struct {
	Local      *Collider
	Remote     *Collider
	Resolution narrowphase.Resolution
}
