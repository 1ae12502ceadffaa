// Package broadphase provides spatial indexes that narrow collider pairs down
// to candidates before exact geometric testing.
package broadphase

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Index maps bounding boxes to opaque integer ids.
type Index interface {
	// Resize changes the covered area and drops every inserted item.
	Resize(area r2.Box)
	// Clear drops every inserted item, keeping the area.
	Clear()
	// Insert registers id under box.
	Insert(id int, box r2.Box)
	// Retrieve appends to dst every distinct id whose box may overlap box.
	Retrieve(box r2.Box, dst []int) []int
}

// Adaptive is implemented by indexes whose layout depends on how many items
// they hold. Adapt returns true when the layout changed.
type Adaptive interface {
	Index
	Adapt(population int) bool
}

// Kind selects a broad-phase implementation.
type Kind uint8

const (
	QuadTreeKind Kind = iota
	GridKind
)

func (k Kind) String() string {
	switch k {
	case QuadTreeKind:
		return "quadtree"
	case GridKind:
		return "grid"
	}
	return "unknown"
}

// ParseKind converts a config name into a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "quadtree", "quad_tree", "":
		return QuadTreeKind, nil
	case "grid":
		return GridKind, nil
	}
	return 0, fmt.Errorf("unknown broad phase %q", name)
}

// Config holds tuning values for both implementations.
type Config struct {
	MaxItems          int // quad-tree split threshold
	MaxDepth          int // quad-tree depth limit
	PopulationDivisor int // grid: subdivisions = population/divisor + 1
	MaxSubdivisions   int // grid: upper clamp for subdivisions
}

// DefaultConfig returns the stock tuning values.
func DefaultConfig() Config {
	return Config{
		MaxItems:          16,
		MaxDepth:          8,
		PopulationDivisor: 10,
		MaxSubdivisions:   20,
	}
}

// New creates an index of the given kind.
func New(kind Kind, cfg Config) Index {
	switch kind {
	case GridKind:
		return NewGrid(cfg.PopulationDivisor, cfg.MaxSubdivisions)
	case QuadTreeKind:
		return NewQuadTree(cfg.MaxItems, cfg.MaxDepth)
	}
	return NewQuadTree(cfg.MaxItems, cfg.MaxDepth)
}

// marks deduplicates ids during a single retrieval without clearing memory
// between calls: an id counts as seen when its slot equals the current stamp.
type marks struct {
	stamp uint32
	seen  []uint32
}

func (m *marks) next() {
	m.stamp++
	if m.stamp == 0 {
		clear(m.seen)
		m.stamp = 1
	}
}

// visit returns true the first time id is visited under the current stamp.
func (m *marks) visit(id int) bool {
	if id >= len(m.seen) {
		grown := make([]uint32, id*2+1)
		copy(grown, m.seen)
		m.seen = grown
	}
	if m.seen[id] == m.stamp {
		return false
	}
	m.seen[id] = m.stamp
	return true
}

func clampBox(b, area r2.Box) r2.Box {
	c := b
	c.Min.X = clamp(c.Min.X, area.Min.X, area.Max.X)
	c.Min.Y = clamp(c.Min.Y, area.Min.Y, area.Max.Y)
	c.Max.X = clamp(c.Max.X, area.Min.X, area.Max.X)
	c.Max.Y = clamp(c.Max.Y, area.Min.Y, area.Max.Y)
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
