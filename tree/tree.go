package tree

import (
	"fmt"
	"math"
	"slices"
)

// Tree is a fixed capacity 2^d-tree stored in two flat arrays.
//
// Nodes come in sibling groups of 2^d (group 0 is the root alone), so
// group s owns nodes 1+nc*(s-1) through nc*s and a node only needs to know
// its first child.  The parent link lives on the group instead of on each
// node.
//
// parents is indexed by sibling group, firstChildren by node.  A group
// whose parent entry is empty is free, except for group 0 whose parent
// is always empty.
type Tree[D Dimension] struct {
	parents       []NodeIdx
	firstChildren []NodeIdx

	// free holds groups below hwm that coarsen handed back.  Last in,
	// first out.
	free []SiblingIdx

	// hwm is the number of groups that were ever handed out.  Groups at or
	// above it have never been used.
	hwm SiblingIdx

	// size is the number of live nodes
	size uint
}

// nc is the number of children of a node in D
func nc[D Dimension]() uint { return NoChildren(rank[D]()) }

// siblingGroupOf returns the group owning node n
func siblingGroupOf[D Dimension](n NodeIdx) SiblingIdx {
	return SiblingIdx((uint(n) + nc[D]() - 1) / nc[D]())
}

// firstNodeOf returns the first node of group s
func firstNodeOf[D Dimension](s SiblingIdx) NodeIdx {
	if s == 0 {
		return 0
	}
	return NodeIdx(1 + nc[D]()*(uint(s)-1))
}

// noGroupsFor is how many groups it takes to hold n nodes
func noGroupsFor[D Dimension](n uint) SiblingIdx {
	if n == 0 {
		return 0
	}
	return siblingGroupOf[D](NodeIdx(n-1)) + 1
}

// fitsIDSpace reports whether n nodes, rounded up to whole groups, can all
// be addressed by a NodeIdx below the noNode sentinel
func fitsIDSpace[D Dimension](n uint64) bool {
	if n > math.MaxUint32 {
		return false
	}
	k := uint64(nc[D]())
	groups := 1 + (n-1+k-1)/k
	return 1+(groups-1)*k <= math.MaxUint32
}

// noNodesIn is how many nodes live in the first g groups
func noNodesIn[D Dimension](g SiblingIdx) uint {
	if g == 0 {
		return 0
	}
	return (uint(g)-1)*nc[D]() + 1
}

// New returns a tree with room for at least capacity nodes holding a
// single root leaf.  The capacity is rounded up to whole sibling groups.
func New[D Dimension](capacity uint) (*Tree[D], error) {
	t, err := newEmpty[D](capacity)
	if err != nil {
		return nil, err
	}
	t.hwm = 1
	t.size = 1
	log.Debugf("new %dd tree with capacity %d", rank[D](), t.Capacity())
	return t, nil
}

// newEmpty allocates the arena without the root
func newEmpty[D Dimension](capacity uint) (*Tree[D], error) {
	if capacity == 0 {
		return nil, ErrZeroCapacity
	}
	if !fitsIDSpace[D](uint64(capacity)) {
		return nil, fmt.Errorf("%w: capacity %d", ErrOutOfBounds, capacity)
	}
	groups := noGroupsFor[D](capacity)
	t := &Tree[D]{
		parents:       make([]NodeIdx, groups),
		firstChildren: make([]NodeIdx, noNodesIn[D](groups)),
	}
	for i := range t.parents {
		t.parents[i] = noNode
	}
	for i := range t.firstChildren {
		t.firstChildren[i] = noNode
	}
	return t, nil
}

// Capacity is the number of nodes the arena can hold
func (t *Tree[D]) Capacity() uint { return uint(len(t.firstChildren)) }

// SiblingGroupCapacity is the number of sibling groups the arena can hold
func (t *Tree[D]) SiblingGroupCapacity() uint { return uint(len(t.parents)) }

// Size is the number of live nodes
func (t *Tree[D]) Size() uint { return t.size }

// HighWater is the number of node ids that were ever handed out.  Live ids
// are all below it; with holes unless the tree is compact.
func (t *Tree[D]) HighWater() uint { return noNodesIn[D](t.hwm) }

// Empty reports whether the tree holds no nodes at all
func (t *Tree[D]) Empty() bool { return t.size == 0 }

// Full reports whether the next refine would run out of capacity
func (t *Tree[D]) Full() bool {
	return len(t.free) == 0 && uint(t.hwm) == t.SiblingGroupCapacity()
}

// IsCompact reports whether the live nodes are exactly [0, HighWater())
func (t *Tree[D]) IsCompact() bool { return len(t.free) == 0 }

// checkNode panics if n is outside the arena
func (t *Tree[D]) checkNode(op string, n NodeIdx) {
	if uint(n) >= t.Capacity() {
		fatal(op, n, fmt.Errorf("%w: capacity %d", ErrOutOfBounds, t.Capacity()))
	}
}

// checkInUse panics if n is not a live node
func (t *Tree[D]) checkInUse(op string, n NodeIdx) {
	t.checkNode(op, n)
	if !t.InUse(n) {
		fatal(op, n, ErrFreeNode)
	}
}

// InUse reports whether n is a live node
func (t *Tree[D]) InUse(n NodeIdx) bool {
	if uint(n) >= t.Capacity() {
		return false
	}
	s := siblingGroupOf[D](n)
	if s >= t.hwm {
		return false
	}
	return s == 0 || t.parents[s].valid()
}

// IsLeaf reports whether n has no children
func (t *Tree[D]) IsLeaf(n NodeIdx) bool {
	t.checkNode("is_leaf", n)
	return !t.firstChildren[n].valid()
}

// IsRoot reports whether n is the root
func (t *Tree[D]) IsRoot(n NodeIdx) bool { return n == 0 }

// FirstChild returns the first child of n, or false if n is a leaf
func (t *Tree[D]) FirstChild(n NodeIdx) (NodeIdx, bool) {
	t.checkNode("first_child", n)
	c := t.firstChildren[n]
	return c, c.valid()
}

// Children returns the 2^d children of n.  n must not be a leaf.
func (t *Tree[D]) Children(n NodeIdx) []NodeIdx {
	c, ok := t.FirstChild(n)
	if !ok {
		fatal("children", n, ErrLeaf)
	}
	cs := make([]NodeIdx, nc[D]())
	for i := range cs {
		cs[i] = c + NodeIdx(i)
	}
	return cs
}

// Child returns the child of n at position p.  n must not be a leaf.
func (t *Tree[D]) Child(n NodeIdx, p ChildPos) NodeIdx {
	c, ok := t.FirstChild(n)
	if !ok {
		fatal("child", n, ErrLeaf)
	}
	if uint(p) >= nc[D]() {
		fatal("child", n, fmt.Errorf("%w: child position %d", ErrOutOfBounds, p))
	}
	return c + NodeIdx(p)
}

// NoChildrenOf is 0 for a leaf and 2^d otherwise
func (t *Tree[D]) NoChildrenOf(n NodeIdx) uint {
	if t.IsLeaf(n) {
		return 0
	}
	return nc[D]()
}

// ChildrenGroup returns the sibling group holding the children of n
func (t *Tree[D]) ChildrenGroup(n NodeIdx) (SiblingIdx, bool) {
	c, ok := t.FirstChild(n)
	if !ok {
		return noSiblings, false
	}
	return siblingGroupOf[D](c), true
}

// Parent returns the parent of n, or false for the root
func (t *Tree[D]) Parent(n NodeIdx) (NodeIdx, bool) {
	t.checkNode("parent", n)
	p := t.parents[siblingGroupOf[D](n)]
	return p, p.valid()
}

// SiblingGroup returns the group owning n
func (t *Tree[D]) SiblingGroup(n NodeIdx) SiblingIdx {
	t.checkNode("sibling_group", n)
	return siblingGroupOf[D](n)
}

// FirstNode returns the first node of group s
func (t *Tree[D]) FirstNode(s SiblingIdx) NodeIdx {
	if uint(s) >= t.SiblingGroupCapacity() {
		fatal("first_node", noNode, fmt.Errorf("%w: %s", ErrOutOfBounds, s))
	}
	return firstNodeOf[D](s)
}

// Siblings returns the nodes of group s: the root alone for group 0
func (t *Tree[D]) Siblings(s SiblingIdx) []NodeIdx {
	first := t.FirstNode(s)
	if s == 0 {
		return []NodeIdx{0}
	}
	ns := make([]NodeIdx, nc[D]())
	for i := range ns {
		ns[i] = first + NodeIdx(i)
	}
	return ns
}

// PositionInParent returns where n sits among its siblings.  The root is
// at position 0.
func (t *Tree[D]) PositionInParent(n NodeIdx) ChildPos {
	t.checkNode("position_in_parent", n)
	if n == 0 {
		return 0
	}
	return ChildPos(n - firstNodeOf[D](siblingGroupOf[D](n)))
}

// Refine gives the leaf n 2^d leaf children and returns their sibling
// group.  It panics if n isn't a live leaf, if n is already at
// MaxLevel or if the arena is full.
func (t *Tree[D]) Refine(n NodeIdx) SiblingIdx {
	t.checkInUse("refine", n)
	if !t.IsLeaf(n) {
		fatal("refine", n, ErrNotLeaf)
	}
	if NodeLevel(t, n) >= MaxLevel[D]() {
		fatal("refine", n, fmt.Errorf("%w (level %d)", ErrMaxLevel, MaxLevel[D]()))
	}

	var s SiblingIdx
	switch {
	case len(t.free) > 0:
		s = t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
	case uint(t.hwm) < t.SiblingGroupCapacity():
		s = t.hwm
		t.hwm++
	default:
		fatal("refine", n, fmt.Errorf("%w (capacity: %d nodes)",
			ErrCapacityExhausted, t.Capacity()))
	}

	first := firstNodeOf[D](s)
	t.parents[s] = n
	t.firstChildren[n] = first
	for c := first; c < first+NodeIdx(nc[D]()); c++ {
		t.firstChildren[c] = noNode
	}
	t.size += nc[D]()
	log.Tracef("refine %s -> %s", n, s)
	return s
}

// Coarsen removes the children of n, turning it back into a leaf.  The
// children must all be leaves.  Ids outside the removed group are not
// touched; the group goes back on the free list.
func (t *Tree[D]) Coarsen(n NodeIdx) {
	t.checkInUse("coarsen", n)
	first, ok := t.FirstChild(n)
	if !ok {
		fatal("coarsen", n, ErrLeaf)
	}
	for c := first; c < first+NodeIdx(nc[D]()); c++ {
		if !t.IsLeaf(c) {
			fatal("coarsen", n, fmt.Errorf("%w: %s", ErrNonLeafChild, c))
		}
	}

	s := siblingGroupOf[D](first)
	t.parents[s] = noNode
	t.firstChildren[n] = noNode
	t.free = append(t.free, s)
	t.size -= nc[D]()
	log.Tracef("coarsen %s <- %s", n, s)
}

// swap exchanges the positions of two sibling groups in the arena, fixing
// up every link into and out of them.  Either group may be free.
//
// It's a renaming: node i of a becomes node i of b and vice versa.  Every
// entry that lives in a or b moves, and every entry that points into a or
// b gets renamed.
func (t *Tree[D]) swap(a, b SiblingIdx) {
	if a == b {
		return
	}
	if a == 0 || b == 0 {
		fatal("swap", noNode, fmt.Errorf("%w: can't move the root group", ErrOutOfBounds))
	}
	fa, fb := firstNodeOf[D](a), firstNodeOf[D](b)
	width := NodeIdx(nc[D]())

	rename := func(n NodeIdx) NodeIdx {
		switch {
		case !n.valid():
			return n
		case n >= fa && n < fa+width:
			return n - fa + fb
		case n >= fb && n < fb+width:
			return n - fb + fa
		}
		return n
	}
	inAB := func(n NodeIdx) bool { return rename(n) != n }

	pa, pb := t.parents[a], t.parents[b]

	// the groups of the children of a's and b's nodes, before anything moves
	var kids []SiblingIdx
	for i := NodeIdx(0); i < width; i++ {
		for _, c := range []NodeIdx{t.firstChildren[fa+i], t.firstChildren[fb+i]} {
			if c.valid() {
				kids = append(kids, siblingGroupOf[D](c))
			}
		}
	}

	// swap the node blocks, renaming what they point to
	for i := NodeIdx(0); i < width; i++ {
		ca, cb := t.firstChildren[fa+i], t.firstChildren[fb+i]
		t.firstChildren[fa+i] = rename(cb)
		t.firstChildren[fb+i] = rename(ca)
	}

	// swap the group entries
	t.parents[a] = rename(pb)
	t.parents[b] = rename(pa)

	// parents outside of a and b now point to the other block.  The ones
	// inside got renamed above.
	if pa.valid() && !inAB(pa) {
		t.firstChildren[pa] = fb
	}
	if pb.valid() && !inAB(pb) {
		t.firstChildren[pb] = fa
	}

	for _, k := range kids {
		if k == a || k == b {
			continue
		}
		t.parents[k] = rename(t.parents[k])
	}

	for i, s := range t.free {
		switch s {
		case a:
			t.free[i] = b
		case b:
			t.free[i] = a
		}
	}
}

// Clone returns a deep copy of t
func (t *Tree[D]) Clone() *Tree[D] {
	return &Tree[D]{
		parents:       slices.Clone(t.parents),
		firstChildren: slices.Clone(t.firstChildren),
		free:          slices.Clone(t.free),
		hwm:           t.hwm,
		size:          t.size,
	}
}

// Equal reports whether a and b hold the same graph: the same live nodes
// with the same links.  Capacity and free list order don't matter.
func Equal[D Dimension](a, b *Tree[D]) bool {
	if a.size != b.size {
		return false
	}
	hw := max(a.HighWater(), b.HighWater())
	for i := uint(0); i < hw; i++ {
		n := NodeIdx(i)
		ua, ub := a.InUse(n), b.InUse(n)
		if ua != ub {
			return false
		}
		if !ua {
			continue
		}
		if a.firstChildren[n] != b.firstChildren[n] {
			return false
		}
		pa, _ := a.Parent(n)
		pb, _ := b.Parent(n)
		if pa != pb {
			return false
		}
	}
	return true
}

// rebuild recomputes the live count and the free list from the arrays.
// The arrays hold the truth after a load or a sort; the free list order
// is lost, lowest groups get handed out first.
func (t *Tree[D]) rebuild(hwm SiblingIdx) {
	t.hwm = hwm
	t.free = t.free[:0]
	t.size = 0
	if hwm == 0 {
		return
	}
	t.size = 1
	for s := hwm - 1; s > 0; s-- {
		if t.parents[s].valid() {
			t.size += nc[D]()
		} else {
			t.free = append(t.free, s)
		}
	}
}

func (t *Tree[D]) String() string {
	return fmt.Sprintf("tree{dim: %d, size: %d, hwm: %d, capacity: %d}",
		rank[D](), t.size, t.HighWater(), t.Capacity())
}
