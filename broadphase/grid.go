package broadphase

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Grid partitions its area into subdivisions × subdivisions uniform cells.
// An item is registered in every cell its box covers.
type Grid struct {
	populationDivisor int
	maxSubdivisions   int

	area         r2.Box
	subdivisions int
	cellW, cellH float64
	cells        [][]int
	marks        marks
}

// NewGrid creates a single-cell grid. The layout grows with Adapt.
func NewGrid(populationDivisor, maxSubdivisions int) *Grid {
	if populationDivisor < 1 {
		populationDivisor = 10
	}
	if maxSubdivisions < 1 {
		maxSubdivisions = 20
	}
	g := &Grid{
		populationDivisor: populationDivisor,
		maxSubdivisions:   maxSubdivisions,
		subdivisions:      1,
	}
	g.rebuild()
	return g
}

// SubdivisionsFor returns population/divisor + 1 clamped to [1, maxSubdivisions].
func SubdivisionsFor(population, divisor, maxSubdivisions int) int {
	n := population/divisor + 1
	if n < 1 {
		return 1
	}
	if n > maxSubdivisions {
		return maxSubdivisions
	}
	return n
}

// Subdivisions returns the number of cells per side.
func (g *Grid) Subdivisions() int { return g.subdivisions }

// Adapt recomputes the subdivision count for population and rebuilds the
// grid when it changed.
func (g *Grid) Adapt(population int) bool {
	n := SubdivisionsFor(population, g.populationDivisor, g.maxSubdivisions)
	if n == g.subdivisions {
		return false
	}
	g.subdivisions = n
	g.rebuild()
	return true
}

// Resize sets a new area and rebuilds the cells.
func (g *Grid) Resize(area r2.Box) {
	g.area = area
	g.rebuild()
}

// Clear empties every cell without releasing memory.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert registers id in every cell covered by box.
func (g *Grid) Insert(id int, box r2.Box) {
	c0, r0, c1, r1 := g.cellRange(box)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			idx := row*g.subdivisions + col
			g.cells[idx] = append(g.cells[idx], id)
		}
	}
}

// Retrieve appends every distinct id registered in the cells covered by box.
func (g *Grid) Retrieve(box r2.Box, dst []int) []int {
	g.marks.next()
	c0, r0, c1, r1 := g.cellRange(box)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			for _, id := range g.cells[row*g.subdivisions+col] {
				if g.marks.visit(id) {
					dst = append(dst, id)
				}
			}
		}
	}
	return dst
}

func (g *Grid) rebuild() {
	n := g.subdivisions * g.subdivisions
	if cap(g.cells) >= n {
		g.cells = g.cells[:n]
	} else {
		g.cells = make([][]int, n)
	}
	g.Clear()

	size := g.area.Size()
	g.cellW = size.X / float64(g.subdivisions)
	g.cellH = size.Y / float64(g.subdivisions)
}

// cellRange returns the inclusive column/row range covered by box, clamped
// to the grid.
func (g *Grid) cellRange(box r2.Box) (c0, r0, c1, r1 int) {
	c0, r0 = g.cellOf(box.Min)
	c1, r1 = g.cellOf(box.Max)
	return c0, r0, c1, r1
}

func (g *Grid) cellOf(p r2.Vec) (col, row int) {
	if g.cellW > 0 {
		col = int((p.X - g.area.Min.X) / g.cellW)
	}
	if g.cellH > 0 {
		row = int((p.Y - g.area.Min.Y) / g.cellH)
	}

	last := g.subdivisions - 1
	if col < 0 {
		col = 0
	} else if col > last {
		col = last
	}
	if row < 0 {
		row = 0
	} else if row > last {
		row = last
	}
	return col, row
}
