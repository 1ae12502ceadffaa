package narrowphase

import (
	"fmt"

	"github.com/pthm-cable/collide2d/geom"
)

// Method routes a shape pair to the resolver appropriate for their kinds.
type Method interface {
	Kind() MethodKind
	Resolve(a, b *geom.Shape) (Resolution, bool)
}

// MethodKind selects the resolver family.
type MethodKind uint8

const (
	SAT MethodKind = iota
	AABB
)

func (k MethodKind) String() string {
	switch k {
	case SAT:
		return "sat"
	case AABB:
		return "aabb"
	}
	return "unknown"
}

// ParseMethod converts a config name into a MethodKind.
func ParseMethod(name string) (MethodKind, error) {
	switch name {
	case "sat", "SAT", "":
		return SAT, nil
	case "aabb", "AABB":
		return AABB, nil
	}
	return 0, fmt.Errorf("unknown collision method %q", name)
}

// NewMethod creates a method of the given kind with its own scratch state.
func NewMethod(kind MethodKind) Method {
	if kind == AABB {
		return &AABBMethod{}
	}
	return &SATMethod{}
}

// pairClass groups a pair of shape kinds by how many circles it holds.
type pairClass uint8

const (
	solidPair pairClass = iota // polygon/line vs polygon/line
	mixedPair                  // circle vs polygon/line
	roundPair                  // circle vs circle
)

func classify(a, b geom.Kind) pairClass {
	ac, bc := a == geom.Circle, b == geom.Circle
	switch {
	case ac && bc:
		return roundPair
	case ac || bc:
		return mixedPair
	default:
		return solidPair
	}
}

// SATMethod resolves polygons and lines (and circles against them) with the
// separating-axis test, and circle pairs by center distance.
type SATMethod struct {
	sat SATResolver
}

func (m *SATMethod) Kind() MethodKind { return SAT }

func (m *SATMethod) Resolve(a, b *geom.Shape) (Resolution, bool) {
	switch classify(a.Kind, b.Kind) {
	case roundPair:
		return ResolveCircles(a, b)
	case solidPair, mixedPair:
		return m.sat.Resolve(a, b)
	}
	return Resolution{}, false
}

// AABBMethod resolves everything against bounding boxes: box pairs by
// per-axis overlap, circles against boxes by closest point, and circle pairs
// by center distance.
type AABBMethod struct{}

func (m *AABBMethod) Kind() MethodKind { return AABB }

func (m *AABBMethod) Resolve(a, b *geom.Shape) (Resolution, bool) {
	switch classify(a.Kind, b.Kind) {
	case roundPair:
		return ResolveCircles(a, b)
	case mixedPair:
		return ResolveCircleBox(a, b)
	case solidPair:
		return ResolveAABB(a, b)
	}
	return Resolution{}, false
}
