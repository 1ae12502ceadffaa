// Package rigidbody integrates bodies that own colliders, correcting their
// motion against the collision set one axis at a time.
package rigidbody

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/collision"
)

// ErrNoColliders is returned when a body is described without colliders.
var ErrNoColliders = errors.New("rigid body needs at least one collider")

// Kind selects how a body is integrated.
type Kind uint8

const (
	// Static bodies never move.
	Static Kind = iota
	// Dynamic bodies fall under gravity and are pushed out of physics colliders.
	Dynamic
	// Kinematic bodies follow their velocity and ignore collisions.
	Kinematic
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case Kinematic:
		return "kinematic"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind maps a config name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "static":
		return Static, nil
	case "dynamic":
		return Dynamic, nil
	case "kinematic":
		return Kinematic, nil
	}
	return 0, fmt.Errorf("unknown body kind %q", name)
}

// Descriptor describes a body to register.
type Descriptor struct {
	Kind        Kind
	ColliderIDs []collision.ID
	// Position defaults to the first collider's position.
	Position *r2.Vec
	// Gravity defaults to the manager's default gravity.
	Gravity  *float64
	Velocity r2.Vec
	// OnResolve runs after the body is integrated each step.
	OnResolve func(*Body)
}

// Body is a registered rigid body.
type Body struct {
	Kind        Kind
	ColliderIDs []collision.ID
	Position    r2.Vec
	Velocity    r2.Vec
	Gravity     float64
	Active      bool
	OnResolve   func(*Body)

	id ID
}

// ID is a generational body handle.
type ID struct {
	Index uint32
	Gen   uint32
}

func (id ID) String() string {
	return fmt.Sprintf("%d.%d", id.Index, id.Gen)
}

// ID returns the handle assigned at registration.
func (b *Body) ID() ID { return b.id }

// Owns reports whether the collider belongs to the body.
func (b *Body) Owns(id collision.ID) bool {
	return slices.Contains(b.ColliderIDs, id)
}
