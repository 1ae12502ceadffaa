package broadphase

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/geom"
)

type quadItem struct {
	id  int
	box r2.Box
}

type quadNode struct {
	bounds   r2.Box
	depth    int
	items    []quadItem
	children [4]*quadNode
	split    bool
}

// QuadTree recursively splits its area into four quadrants once a node holds
// more than MaxItems items, down to MaxDepth levels. An item is stored in every
// quadrant it overlaps, so boxes straddling a boundary are found from either
// side.
type QuadTree struct {
	maxItems int
	maxDepth int

	area  r2.Box
	root  *quadNode
	free  []*quadNode // recycled nodes
	marks marks
}

// NewQuadTree creates an empty quad-tree.
func NewQuadTree(maxItems, maxDepth int) *QuadTree {
	if maxItems < 1 {
		maxItems = 16
	}
	if maxDepth < 0 {
		maxDepth = 8
	}
	t := &QuadTree{maxItems: maxItems, maxDepth: maxDepth}
	t.root = t.node(r2.Box{}, 0)
	return t
}

// Area returns the area covered by the root node.
func (t *QuadTree) Area() r2.Box { return t.area }

// Resize sets a new root area and drops all items.
func (t *QuadTree) Resize(area r2.Box) {
	t.area = area
	t.Clear()
}

// Clear drops all items and collapses the tree to a single root node.
func (t *QuadTree) Clear() {
	t.release(t.root)
	t.root = t.node(t.area, 0)
}

// Insert stores id in every leaf quadrant its box overlaps. Boxes reaching
// outside the area are clamped for placement only.
func (t *QuadTree) Insert(id int, box r2.Box) {
	t.insert(t.root, quadItem{id: id, box: box})
}

// Retrieve appends the ids of stored boxes overlapping box.
func (t *QuadTree) Retrieve(box r2.Box, dst []int) []int {
	t.marks.next()
	return t.retrieve(t.root, box, clampBox(box, t.area), dst)
}

// Depth returns the deepest level currently in use.
func (t *QuadTree) Depth() int {
	return depthOf(t.root)
}

func depthOf(n *quadNode) int {
	if !n.split {
		return n.depth
	}
	d := n.depth
	for _, c := range n.children {
		d = max(d, depthOf(c))
	}
	return d
}

func (t *QuadTree) insert(n *quadNode, it quadItem) {
	if n.split {
		placement := clampBox(it.box, t.area)
		// Covering every quadrant: keep one copy here instead of four.
		if covers(placement, n.bounds) {
			n.items = append(n.items, it)
			return
		}
		placed := false
		for _, c := range n.children {
			if geom.Overlaps(c.bounds, placement) {
				t.insert(c, it)
				placed = true
			}
		}
		if !placed {
			n.items = append(n.items, it)
		}
		return
	}

	n.items = append(n.items, it)
	if len(n.items) > t.maxItems && n.depth < t.maxDepth {
		t.subdivide(n)
	}
}

func (t *QuadTree) subdivide(n *quadNode) {
	b := n.bounds
	mid := r2.Vec{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
	quads := [4]r2.Box{
		{Min: r2.Vec{X: b.Min.X, Y: mid.Y}, Max: r2.Vec{X: mid.X, Y: b.Max.Y}}, // top-left
		{Min: mid, Max: b.Max}, // top-right
		{Min: b.Min, Max: mid}, // bottom-left
		{Min: r2.Vec{X: mid.X, Y: b.Min.Y}, Max: r2.Vec{X: b.Max.X, Y: mid.Y}}, // bottom-right
	}
	for i, q := range quads {
		n.children[i] = t.node(q, n.depth+1)
	}
	n.split = true

	pending := n.items
	n.items = nil
	for _, it := range pending {
		t.insert(n, it)
	}
}

func (t *QuadTree) retrieve(n *quadNode, box, clamped r2.Box, dst []int) []int {
	for _, it := range n.items {
		if geom.Overlaps(it.box, box) && t.marks.visit(it.id) {
			dst = append(dst, it.id)
		}
	}
	if !n.split {
		return dst
	}
	for _, c := range n.children {
		if geom.Overlaps(c.bounds, clamped) {
			dst = t.retrieve(c, box, clamped, dst)
		}
	}
	return dst
}

func (t *QuadTree) node(bounds r2.Box, depth int) *quadNode {
	if n := len(t.free); n > 0 {
		nd := t.free[n-1]
		t.free = t.free[:n-1]
		nd.bounds = bounds
		nd.depth = depth
		return nd
	}
	return &quadNode{bounds: bounds, depth: depth}
}

func (t *QuadTree) release(n *quadNode) {
	if n == nil {
		return
	}
	if n.split {
		for i, c := range n.children {
			t.release(c)
			n.children[i] = nil
		}
	}
	n.split = false
	n.items = n.items[:0]
	t.free = append(t.free, n)
}

func covers(outer, inner r2.Box) bool {
	return outer.Min.X <= inner.Min.X && outer.Min.Y <= inner.Min.Y &&
		outer.Max.X >= inner.Max.X && outer.Max.Y >= inner.Max.Y
}
