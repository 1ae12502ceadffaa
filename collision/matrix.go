package collision

// Matrix is a symmetric allow-list of layer pairs. A nil Matrix lets every
// layer interact with every other.
type Matrix map[layerPair]struct{}

type layerPair struct{ a, b string }

func orderedPair(a, b string) layerPair {
	if b < a {
		a, b = b, a
	}
	return layerPair{a: a, b: b}
}

// NewMatrix builds a matrix from layer-name pairs.
func NewMatrix(pairs ...[2]string) Matrix {
	m := make(Matrix, len(pairs))
	for _, p := range pairs {
		m.Allow(p[0], p[1])
	}
	return m
}

// Allow permits collisions between layers a and b.
func (m Matrix) Allow(a, b string) {
	m[orderedPair(a, b)] = struct{}{}
}

// Allows reports whether layers a and b may collide.
func (m Matrix) Allows(a, b string) bool {
	if m == nil {
		return true
	}
	_, ok := m[orderedPair(a, b)]
	return ok
}
