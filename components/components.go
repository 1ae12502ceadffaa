// Package components defines ECS components for scenes built on the physics
// world. Entities never own physics state; they hold handles into it.
package components

import (
	"github.com/pthm-cable/collide2d/collision"
	"github.com/pthm-cable/collide2d/rigidbody"
)

// Transform is an entity's world pose, copied from its body every tick.
type Transform struct {
	X, Y     float64
	Rotation float64 // radians
}

// ColliderRef points at the entity's collider.
type ColliderRef struct {
	ID collision.ID
}

// BodyRef points at the entity's rigid body.
type BodyRef struct {
	ID rigidbody.ID
}

// Contacts summarizes the collider's collisions in the last step.
type Contacts struct {
	Count   int
	Deepest float64 // largest penetration
}

// Tint is an RGBA display color.
type Tint struct {
	R, G, B, A uint8
}
