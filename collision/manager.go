package collision

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/broadphase"
	"github.com/pthm-cable/collide2d/geom"
	"github.com/pthm-cable/collide2d/narrowphase"
)

// Options configures a Manager.
type Options struct {
	Method     narrowphase.MethodKind
	BroadPhase broadphase.Kind
	Tuning     broadphase.Config
	// FixedArea, when set, replaces the per-step union of collider bounds as
	// the broad-phase area.
	FixedArea *r2.Box
	// Matrix restricts which layers interact. Nil allows everything.
	Matrix Matrix
	Logger *slog.Logger
}

// Stats holds counters for the most recent Resolve call.
type Stats struct {
	Active      int
	Candidates  int
	NarrowTests int
	Pairs       int
}

type slot struct {
	collider *Collider
	gen      uint32
}

// Manager owns every collider and the collision set of the current step.
// It is not safe for concurrent use; Resolve is a single critical section.
type Manager struct {
	method narrowphase.Method
	index  broadphase.Index
	matrix Matrix
	fixed  *r2.Box
	logger *slog.Logger

	slots []slot
	free  []uint32
	count int

	active     []*Collider
	collisions []Collision
	resolved   map[uint64]struct{}
	candidates []int

	area       r2.Box
	sized      bool
	population int
	stats      Stats
}

// NewManager creates an empty manager.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tuning := opts.Tuning
	if tuning == (broadphase.Config{}) {
		tuning = broadphase.DefaultConfig()
	}
	return &Manager{
		method:     narrowphase.NewMethod(opts.Method),
		index:      broadphase.New(opts.BroadPhase, tuning),
		matrix:     opts.Matrix,
		fixed:      opts.FixedArea,
		logger:     logger,
		resolved:   make(map[uint64]struct{}),
		population: -1,
	}
}

// Method returns the narrow-phase method in use.
func (m *Manager) Method() narrowphase.Method { return m.method }

// Add registers a collider built from desc. The collider starts active.
func (m *Manager) Add(desc Descriptor) (*Collider, error) {
	if desc.Shape == nil {
		return nil, ErrNilShape
	}
	if desc.Position != nil {
		desc.Shape.Position = *desc.Position
	}
	if desc.Rotation != nil {
		desc.Shape.Rotation = *desc.Rotation
	}
	desc.Shape.Update()

	c := &Collider{
		Shape:            desc.Shape,
		Layer:            desc.Layer,
		Group:            desc.Group,
		Active:           true,
		UpdateCollisions: desc.UpdateCollisions,
		Physics:          desc.Physics,
		OnCollision:      desc.OnCollision,
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
	s.collider = c
	c.id = ID{Index: idx, Gen: s.gen}
	m.count++

	m.logger.Debug("collider added", "id", c.id.String(), "layer", c.Layer, "shape", c.Shape.Kind.String())
	return c, nil
}

// Get returns the collider for id, or nil if it was removed.
func (m *Manager) Get(id ID) *Collider {
	if int(id.Index) >= len(m.slots) {
		return nil
	}
	s := m.slots[id.Index]
	if s.collider == nil || s.gen != id.Gen {
		return nil
	}
	return s.collider
}

// Remove unregisters the collider and drops every record naming it.
// Other handles stay valid. Returns false for a stale handle.
func (m *Manager) Remove(id ID) bool {
	c := m.Get(id)
	if c == nil {
		return false
	}
	m.purge(c)
	m.slots[id.Index].collider = nil
	m.free = append(m.free, id.Index)
	m.count--
	m.logger.Debug("collider removed", "id", id.String())
	return true
}

// Clear removes every collider. Outstanding handles become stale.
func (m *Manager) Clear() {
	for i := range m.slots {
		if m.slots[i].collider != nil {
			m.slots[i].collider = nil
			m.free = append(m.free, uint32(i))
		}
	}
	m.count = 0
	m.active = m.active[:0]
	m.collisions = m.collisions[:0]
	clear(m.resolved)
	m.index.Clear()
	m.population = -1
}

// Len returns the number of registered colliders.
func (m *Manager) Len() int { return m.count }

// Colliders calls fn for every registered collider in slot order.
func (m *Manager) Colliders(fn func(*Collider)) {
	for _, s := range m.slots {
		if s.collider != nil {
			fn(s.collider)
		}
	}
}

// Area returns the broad-phase area used by the last Resolve.
func (m *Manager) Area() r2.Box { return m.area }

// Stats returns counters for the last Resolve.
func (m *Manager) Stats() Stats { return m.stats }

// Resolve rebuilds the collision set from scratch:
// update every active shape, fit and refill the broad phase, then run the
// narrow phase once per unordered candidate pair.
func (m *Manager) Resolve() {
	m.collisions = m.collisions[:0]
	clear(m.resolved)
	m.stats = Stats{}

	m.active = m.active[:0]
	for _, s := range m.slots {
		if s.collider != nil && s.collider.Active {
			m.active = append(m.active, s.collider)
		}
	}
	m.stats.Active = len(m.active)

	for _, c := range m.active {
		c.Shape.Update()
	}

	m.fitArea()

	if a, ok := m.index.(broadphase.Adaptive); ok && len(m.active) != m.population {
		m.population = len(m.active)
		if a.Adapt(m.population) {
			m.logger.Debug("broad phase re-subdivided", "population", m.population)
		}
	}

	m.index.Clear()
	for _, c := range m.active {
		m.index.Insert(int(c.id.Index), c.Shape.Bounds)
	}

	for _, c := range m.active {
		if !c.UpdateCollisions || m.Get(c.id) != c {
			continue
		}
		m.collide(c, true)
	}
	m.stats.Pairs = len(m.collisions) / 2
}

// RefreshCollider recomputes the collisions of a single collider after it
// moved, without rebuilding the rest of the set. Existing records naming the
// collider are dropped first. The new bounds are added to the broad phase
// next to the old ones; stale entries only widen candidate sets and are
// discarded by the next Resolve.
func (m *Manager) RefreshCollider(id ID) {
	c := m.Get(id)
	if c == nil || !c.Active {
		return
	}
	m.purge(c)
	c.Shape.Update()
	m.index.Insert(int(id.Index), c.Shape.Bounds)
	m.collide(c, false)
}

// Collisions returns the current collision set. Records are valid until the
// next Resolve and must not be modified.
func (m *Manager) Collisions() []Collision { return m.collisions }

// CollisionsFor returns the records whose local side is id. Inactive or
// removed colliders have none.
func (m *Manager) CollisionsFor(id ID) []Collision {
	return m.filter(id, func(Collision) bool { return true })
}

// CollisionsForLayer returns the records whose local side is id and whose
// remote side is on layer.
func (m *Manager) CollisionsForLayer(id ID, layer string) []Collision {
	return m.filter(id, func(col Collision) bool { return col.Remote.Layer == layer })
}

func (m *Manager) filter(id ID, keep func(Collision) bool) []Collision {
	c := m.Get(id)
	if c == nil || !c.Active {
		return nil
	}
	var out []Collision
	for _, col := range m.collisions {
		if col.Local == c && keep(col) {
			out = append(out, col)
		}
	}
	return out
}

// collide runs the narrow phase between c and its broad-phase candidates.
// With once set, a pair already tested this step in either order is skipped.
func (m *Manager) collide(c *Collider, once bool) {
	m.candidates = m.index.Retrieve(c.Shape.Bounds, m.candidates[:0])
	m.stats.Candidates += len(m.candidates)

	for _, idx := range m.candidates {
		other := m.slots[idx].collider
		if other == nil || other == c || !other.Active {
			continue
		}
		if sameGroup(c, other) || !m.matrix.Allows(c.Layer, other.Layer) {
			continue
		}
		if once {
			key := pairKey(c.id.Index, other.id.Index)
			if _, done := m.resolved[key]; done {
				continue
			}
			m.resolved[key] = struct{}{}
		}

		m.stats.NarrowTests++
		res, ok := m.method.Resolve(c.Shape, other.Shape)
		if !ok {
			continue
		}
		local := Collision{Local: c, Remote: other, Resolution: res}
		m.collisions = append(m.collisions,
			local,
			Collision{Local: other, Remote: c, Resolution: res.Reverse()},
		)
		if c.OnCollision != nil {
			c.OnCollision(local)
		}
	}
}

// purge drops every record naming c, keeping the order of the rest.
func (m *Manager) purge(c *Collider) {
	kept := m.collisions[:0]
	for _, col := range m.collisions {
		if col.Local != c && col.Remote != c {
			kept = append(kept, col)
		}
	}
	clear(m.collisions[len(kept):])
	m.collisions = kept
}

// fitArea resizes the broad phase when its area changed. The area is the
// configured fixed area, or the union of every active bounding box.
func (m *Manager) fitArea() {
	var area r2.Box
	if m.fixed != nil {
		area = *m.fixed
	} else if len(m.active) > 0 {
		area = geom.EmptyBox()
		for _, c := range m.active {
			area = geom.Union(area, c.Shape.Bounds)
		}
	}

	if m.sized && geom.BoxEqual(area, m.area) {
		return
	}
	m.area = area
	m.sized = true
	m.index.Resize(area)
	m.logger.Debug("broad phase resized",
		"min_x", area.Min.X, "min_y", area.Min.Y,
		"max_x", area.Max.X, "max_y", area.Max.Y,
	)
}

func pairKey(a, b uint32) uint64 {
	if b < a {
		a, b = b, a
	}
	return uint64(a)<<32 | uint64(b)
}
