package tree

import "slices"

// Location returns the location code of n, built by walking up to the root
func Location[D Dimension](t *Tree[D], n NodeIdx) Loc[D] {
	t.checkInUse("location", n)
	l := RootLoc[D]()
	for !t.IsRoot(n) {
		l.Push(t.PositionInParent(n))
		n, _ = t.Parent(n)
	}
	l.Reverse()
	return l
}

// NodeLevel returns the level of n: its distance to the root
func NodeLevel[D Dimension](t *Tree[D], n NodeIdx) Level {
	t.checkInUse("level", n)
	var l Level
	for !t.IsRoot(n) {
		n, _ = t.Parent(n)
		l++
	}
	return l
}

// NodeOrAncestorAt walks loc down from the root and returns the deepest
// node on the way along with its level.  That's the node at loc if it
// exists, else the leaf covering it.
func NodeOrAncestorAt[D Dimension](t *Tree[D], loc Loc[D]) (NodeIdx, Level) {
	n := NodeIdx(0)
	lvl := loc.Level()
	for l := Level(1); l <= lvl; l++ {
		c, ok := t.FirstChild(n)
		if !ok {
			return n, l - 1
		}
		n = c + NodeIdx(loc.At(l))
	}
	return n, lvl
}

// NodeAt returns the node at loc, or false if the tree isn't refined that
// far.
func NodeAt[D Dimension](t *Tree[D], loc Loc[D]) (NodeIdx, bool) {
	n, l := NodeOrAncestorAt(t, loc)
	if l != loc.Level() {
		return noNode, false
	}
	return n, true
}

// Neighbor returns the neighbor of n at position i of manifold m: the node
// at the same level if there is one, else the coarser leaf covering that
// spot.  It returns false when the position lies outside of the root.
func Neighbor[D Dimension](t *Tree[D], n NodeIdx, m Manifold, i int) (NodeIdx, bool) {
	loc, ok := Location(t, n).Shift(NeighborOffset[D](m, i))
	if !ok {
		return noNode, false
	}
	nb, _ := NodeOrAncestorAt(t, loc)
	return nb, true
}

// SameLevelNeighbor is like Neighbor but only returns a node at the level
// of n.
func SameLevelNeighbor[D Dimension](t *Tree[D], n NodeIdx, m Manifold, i int) (NodeIdx, bool) {
	loc, ok := Location(t, n).Shift(NeighborOffset[D](m, i))
	if !ok {
		return noNode, false
	}
	return NodeAt(t, loc)
}

// Neighbors returns the nodes touching n across manifold m: for each
// neighbor position, the leaf covering it when that leaf is at the level
// of n or coarser, else the children of the same level node that touch n.
// The root has no neighbors.
func Neighbors[D Dimension](t *Tree[D], n NodeIdx, m Manifold) []NodeIdx {
	return appendNeighbors(nil, t, n, m)
}

func appendNeighbors[D Dimension](dst []NodeIdx, t *Tree[D], n NodeIdx, m Manifold) []NodeIdx {
	loc := Location(t, n)
	if loc.Level() == 0 {
		return dst
	}
	for i, off := range Stencil[D](m) {
		sl, ok := loc.Shift(off)
		if !ok {
			continue
		}
		nb, _ := NodeOrAncestorAt(t, sl)
		if t.IsLeaf(nb) {
			dst = append(dst, nb)
			continue
		}
		for _, p := range ChildrenSharingFace[D](m, i) {
			dst = append(dst, t.Child(nb, p))
		}
	}
	return dst
}

// AllNeighbors returns the neighbors of n across every manifold, sorted
// and without duplicates.
func AllNeighbors[D Dimension](t *Tree[D], n NodeIdx) []NodeIdx {
	ns := make([]NodeIdx, 0, MaxNoNeighbors[D]())
	for _, m := range Manifolds[D]() {
		ns = appendNeighbors(ns, t, n, m)
	}
	slices.Sort(ns)
	return slices.Compact(ns)
}
