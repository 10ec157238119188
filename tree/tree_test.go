package tree

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requirePanicsWith fails unless fn panics with an error wrapping target
func requirePanicsWith(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic wrapping %v", target)
		err, ok := r.(error)
		require.True(t, ok, "panicked with %v, not an error", r)
		require.ErrorIs(t, err, target)
		var ie *InvariantError
		require.True(t, errors.As(err, &ie))
	}()
	fn()
}

// uniform2D returns a quad tree refined uniformly to level 2:
//
//	root 0, level 1: 1-4, children of 1: 5-8, of 2: 9-12, of 3: 13-16,
//	of 4: 17-20
func uniform2D(t *testing.T) *Tree[D2] {
	tr, err := New[D2](64)
	require.NoError(t, err)
	for _, n := range []NodeIdx{0, 1, 2, 3, 4} {
		tr.Refine(n)
	}
	require.EqualValues(t, 21, tr.Size())
	return tr
}

func TestNewTree(t *testing.T) {
	_, err := New[D2](0)
	require.ErrorIs(t, err, ErrZeroCapacity)

	tr, err := New[D3](1)
	require.NoError(t, err)
	require.EqualValues(t, 1, tr.Size())
	require.EqualValues(t, 1, tr.Capacity())
	require.EqualValues(t, 1, tr.HighWater())
	require.True(t, tr.IsLeaf(0))
	require.True(t, tr.IsRoot(0))
	require.True(t, tr.Full())
	require.True(t, tr.IsCompact())
	require.False(t, tr.Empty())
	_, ok := tr.Parent(0)
	require.False(t, ok)
}

func TestCapacityRounding(t *testing.T) {
	cases := []struct {
		dim       uint
		capacity  uint
		nodes     uint
		siblingGs uint
	}{
		{1, 1, 1, 1}, {1, 2, 3, 2}, {1, 3, 3, 2}, {1, 4, 5, 3},
		{2, 1, 1, 1}, {2, 2, 5, 2}, {2, 5, 5, 2}, {2, 6, 9, 3},
		{2, 9, 9, 3}, {2, 10, 13, 4},
		{3, 2, 9, 2}, {3, 9, 9, 2}, {3, 10, 17, 3},
	}
	for _, c := range cases {
		var nodes, groups uint
		switch c.dim {
		case 1:
			tr, err := New[D1](c.capacity)
			require.NoError(t, err)
			nodes, groups = tr.Capacity(), tr.SiblingGroupCapacity()
		case 2:
			tr, err := New[D2](c.capacity)
			require.NoError(t, err)
			nodes, groups = tr.Capacity(), tr.SiblingGroupCapacity()
		case 3:
			tr, err := New[D3](c.capacity)
			require.NoError(t, err)
			nodes, groups = tr.Capacity(), tr.SiblingGroupCapacity()
		}
		assert.Equal(t, c.nodes, nodes, "%dd capacity %d", c.dim, c.capacity)
		assert.Equal(t, c.siblingGs, groups, "%dd capacity %d", c.dim, c.capacity)
	}
}

func TestSiblingGroupMath(t *testing.T) {
	tr, err := New[D2](13)
	require.NoError(t, err)
	assert.EqualValues(t, 0, tr.SiblingGroup(0))
	assert.EqualValues(t, 1, tr.SiblingGroup(1))
	assert.EqualValues(t, 1, tr.SiblingGroup(4))
	assert.EqualValues(t, 2, tr.SiblingGroup(5))
	assert.EqualValues(t, 3, tr.SiblingGroup(12))
	assert.EqualValues(t, 9, tr.FirstNode(3))
	assert.Equal(t, []NodeIdx{0}, tr.Siblings(0))
	assert.Equal(t, []NodeIdx{5, 6, 7, 8}, tr.Siblings(2))
	assert.EqualValues(t, 0, tr.PositionInParent(0))
	assert.EqualValues(t, 3, tr.PositionInParent(8))
	assert.EqualValues(t, 0, tr.PositionInParent(9))
	requirePanicsWith(t, ErrOutOfBounds, func() { tr.IsLeaf(13) })
	requirePanicsWith(t, ErrOutOfBounds, func() { tr.FirstNode(4) })
}

// refine(root) on a quad tree with room for 9 nodes, then coarsen a child
// (wrong target) and the root
func TestRefineCoarsenCapacity9(t *testing.T) {
	tr, err := New[D2](9)
	require.NoError(t, err)
	require.EqualValues(t, 1, tr.Size())

	s := tr.Refine(0)
	require.EqualValues(t, 1, s)
	require.EqualValues(t, 5, tr.Size())
	require.False(t, tr.IsLeaf(0))
	require.Equal(t, []NodeIdx{1, 2, 3, 4}, tr.Children(0))
	for _, c := range tr.Children(0) {
		require.True(t, tr.IsLeaf(c))
		require.EqualValues(t, 1, NodeLevel(tr, c))
		p, ok := tr.Parent(c)
		require.True(t, ok)
		require.EqualValues(t, 0, p)
	}

	requirePanicsWith(t, ErrLeaf, func() { tr.Coarsen(1) })

	tr.Coarsen(0)
	require.EqualValues(t, 1, tr.Size())
	require.True(t, tr.IsLeaf(0))
}

func TestRefinePreconditions(t *testing.T) {
	tr, err := New[D2](5)
	require.NoError(t, err)
	tr.Refine(0)
	require.True(t, tr.Full())

	requirePanicsWith(t, ErrNotLeaf, func() { tr.Refine(0) })
	requirePanicsWith(t, ErrCapacityExhausted, func() { tr.Refine(1) })

	tr, err = New[D2](13)
	require.NoError(t, err)
	requirePanicsWith(t, ErrFreeNode, func() { tr.Refine(3) })
	tr.Refine(0)
	tr.Refine(2)
	requirePanicsWith(t, ErrNonLeafChild, func() { tr.Coarsen(0) })
	requirePanicsWith(t, ErrLeaf, func() { tr.Coarsen(1) })
	requirePanicsWith(t, ErrLeaf, func() { tr.Children(1) })
}

func TestRefineStopsAtMaxLevel(t *testing.T) {
	tr, err := New[D3](1 + 8*25)
	require.NoError(t, err)

	n := NodeIdx(0)
	for i := Level(0); i < MaxLevel[D3](); i++ {
		tr.Refine(n)
		n, _ = tr.FirstChild(n)
	}
	require.Equal(t, MaxLevel[D3](), NodeLevel(tr, n))
	require.Equal(t, MaxLevel[D3](), Location(tr, n).Level())
	requirePanicsWith(t, ErrMaxLevel, func() { tr.Refine(n) })
	require.True(t, tr.IsLeaf(n))
	require.EqualValues(t, 1+8*19, tr.Size())

	// only the siblings touch the deepest corner
	require.Len(t, AllNeighbors(tr, n), 7)

	// a level above still refines
	p, _ := tr.Parent(n)
	gp, _ := tr.Parent(p)
	u := tr.Children(gp)[7]
	require.Equal(t, MaxLevel[D3]()-1, NodeLevel(tr, u))
	require.EqualValues(t, 20, tr.Refine(u))
}

func TestNewOutOfBounds(t *testing.T) {
	_, err := New[D2](math.MaxUint32)
	require.ErrorIs(t, err, ErrOutOfBounds)
	big := uint64(math.MaxUint32) + 1
	_, err = New[D1](uint(big))
	require.ErrorIs(t, err, ErrOutOfBounds)

	require.True(t, fitsIDSpace[D1](math.MaxUint32))
	require.False(t, fitsIDSpace[D2](math.MaxUint32))
	require.True(t, fitsIDSpace[D2](math.MaxUint32-2))
	require.False(t, fitsIDSpace[D3](math.MaxUint32-2))
}

func TestFreeListReuse(t *testing.T) {
	tr, err := New[D2](13)
	require.NoError(t, err)
	tr.Refine(0) // group 1: 1-4
	tr.Refine(1) // group 2: 5-8
	tr.Refine(2) // group 3: 9-12
	require.True(t, tr.Full())
	require.True(t, tr.IsCompact())

	tr.Coarsen(1)
	require.EqualValues(t, 9, tr.Size())
	require.EqualValues(t, 13, tr.HighWater())
	require.False(t, tr.IsCompact())
	require.False(t, tr.Full())
	require.False(t, tr.InUse(5))
	require.True(t, tr.InUse(9))

	s := tr.Refine(3)
	require.EqualValues(t, 2, s)
	require.Equal(t, []NodeIdx{5, 6, 7, 8}, tr.Children(3))
	p, ok := tr.Parent(5)
	require.True(t, ok)
	require.EqualValues(t, 3, p)
	require.True(t, tr.IsCompact())
}

// refining and coarsening a leaf leaves every other node untouched
func TestRefineCoarsenRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		tr, err := New[D3](1 + 8*64)
		require.NoError(t, err)
		grow(tr, rnd, 30)

		leaves := leavesOf(tr)
		n := leaves[rnd.Intn(len(leaves))]
		if tr.Full() {
			continue
		}
		before := tr.Clone()
		tr.Refine(n)
		checkComplete(t, tr)
		tr.Coarsen(n)
		require.True(t, tr.IsLeaf(n))
		require.True(t, Equal(before, tr), "round %d node %s", round, n)
		checkComplete(t, tr)
	}
}

func TestCloneEqual(t *testing.T) {
	a := uniform2D(t)
	b := a.Clone()
	require.True(t, Equal(a, b))

	b.Refine(5)
	require.False(t, Equal(a, b))
	b.Coarsen(5)
	require.True(t, Equal(a, b))

	// same graph, different capacity
	c, err := New[D2](128)
	require.NoError(t, err)
	for _, n := range []NodeIdx{0, 1, 2, 3, 4} {
		c.Refine(n)
	}
	require.True(t, Equal(a, c))

	// same size, different shape
	d, err := New[D2](64)
	require.NoError(t, err)
	for _, n := range []NodeIdx{0, 1, 2, 3, 5} {
		d.Refine(n)
	}
	require.False(t, Equal(a, d))
}

func TestTreeString(t *testing.T) {
	tr := uniform2D(t)
	require.Equal(t, "tree{dim: 2, size: 21, hwm: 21, capacity: 65}", tr.String())
	require.Equal(t, "n:5", NodeIdx(5).String())
	require.Equal(t, "n:-", noNode.String())
	require.Equal(t, "sg:2", SiblingIdx(2).String())
	require.Equal(t, "sg:-", noSiblings.String())
}

func TestInvariantError(t *testing.T) {
	e := &InvariantError{Op: "refine", Node: 3, Err: ErrNotLeaf}
	require.Equal(t, fmt.Sprintf("refine(n:3): %s", ErrNotLeaf), e.Error())
	require.ErrorIs(t, e, ErrNotLeaf)
}

// grow refines up to k random leaves of tr while there is room
func grow[D Dimension](tr *Tree[D], rnd *rand.Rand, k int) {
	for i := 0; i < k && !tr.Full(); i++ {
		leaves := leavesOf(tr)
		tr.Refine(leaves[rnd.Intn(len(leaves))])
	}
}

func leavesOf[D Dimension](tr *Tree[D]) []NodeIdx {
	var ls []NodeIdx
	for n := range tr.Leaves() {
		ls = append(ls, n)
	}
	return ls
}

// checkComplete checks that every node has no children or a whole live
// sibling group pointing back at it, and that Size counts the live nodes.
func checkComplete[D Dimension](t *testing.T, tr *Tree[D]) {
	t.Helper()
	live := uint(0)
	for n := range tr.Nodes() {
		live++
		if tr.IsLeaf(n) {
			require.EqualValues(t, 0, tr.NoChildrenOf(n))
			continue
		}
		cs := tr.Children(n)
		require.Len(t, cs, int(NoChildren(rank[D]())))
		for i, c := range cs {
			require.True(t, tr.InUse(c))
			require.EqualValues(t, i, tr.PositionInParent(c))
			p, ok := tr.Parent(c)
			require.True(t, ok)
			require.Equal(t, n, p)
		}
	}
	require.Equal(t, tr.Size(), live)
}
