package tree

// Restriction is called by BalancedCoarsen right before the children of
// parent are removed, so data living on them can be projected onto it.
type Restriction func(parent NodeIdx, children []NodeIdx)

// BalancedCoarsen coarsens n only if that keeps the tree 2:1 balanced.
// It does nothing and returns false when n is a leaf, when one of its
// children has children of its own, or when a neighbor of one of its
// children is finer than that child.  Otherwise restrict (which may be nil)
// sees the children, n is coarsened and it returns true.
func BalancedCoarsen[D Dimension](t *Tree[D], n NodeIdx, restrict Restriction) bool {
	if t.IsLeaf(n) {
		return false
	}
	children := t.Children(n)
	for _, c := range children {
		if !t.IsLeaf(c) {
			return false
		}
	}
	childLevel := NodeLevel(t, n) + 1
	for _, c := range children {
		for _, nb := range AllNeighbors(t, c) {
			if NodeLevel(t, nb) > childLevel {
				log.Tracef("balanced coarsen of %s blocked by %s", n, nb)
				return false
			}
		}
	}
	if restrict != nil {
		restrict(n, children)
	}
	t.Coarsen(n)
	return true
}

// IsBalanced reports whether every pair of touching leaves is at most one
// level apart.
func IsBalanced[D Dimension](t *Tree[D]) bool {
	for n := range t.Leaves() {
		lvl := NodeLevel(t, n)
		for _, nb := range AllNeighbors(t, n) {
			if levelGap(lvl, NodeLevel(t, nb)) > 1 {
				log.Debugf("unbalanced: %s at level %d touches %s at level %d",
					n, lvl, nb, NodeLevel(t, nb))
				return false
			}
		}
	}
	return true
}

func levelGap(a, b Level) Level {
	if a > b {
		return a - b
	}
	return b - a
}

// Balance refines the leaves around n until none of them is more than one
// level coarser than n, rippling outwards as needed.  It returns how many
// nodes it refined.  It panics like Refine if the arena runs out.
func Balance[D Dimension](t *Tree[D], n NodeIdx) int {
	lvl := NodeLevel(t, n)
	refined := 0
	for _, m := range Manifolds[D]() {
		for i := range Stencil[D](m) {
			for {
				nb, ok := Neighbor(t, n, m, i)
				if !ok || NodeLevel(t, nb)+1 >= lvl {
					break
				}
				t.Refine(nb)
				refined++
				for _, c := range t.Children(nb) {
					refined += Balance(t, c)
				}
			}
		}
	}
	return refined
}
