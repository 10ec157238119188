package tree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const none = noNode

// sameLevel collects SameLevelNeighbor over a whole manifold, noNode where
// there is none
func sameLevel[D Dimension](tr *Tree[D], n NodeIdx, m Manifold) []NodeIdx {
	ns := make([]NodeIdx, NoNeighbors[D](m))
	for k := range ns {
		nb, ok := SameLevelNeighbor(tr, n, m, k)
		if !ok {
			nb = noNode
		}
		ns[k] = nb
	}
	return ns
}

func TestLocationOfNodes(t *testing.T) {
	tr := uniform2D(t)
	tr.Refine(8) // 21-24

	assert.Equal(t, RootLoc[D2](), Location(tr, 0))
	assert.Equal(t, []ChildPos{2}, Location(tr, 3).Digits())
	assert.Equal(t, []ChildPos{0, 3}, Location(tr, 8).Digits())
	assert.Equal(t, []ChildPos{0, 3, 3}, Location(tr, 24).Digits())
	assert.EqualValues(t, 3, NodeLevel(tr, 24))
	assert.EqualValues(t, 0, NodeLevel(tr, 0))

	requirePanicsWith(t, ErrFreeNode, func() { Location(tr, 30) })
}

// walking the location of every node from the root lands on that node
func TestLocationBijection(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	tr, err := New[D3](1 + 8*100)
	require.NoError(t, err)
	grow(tr, rnd, 100)

	seen := make(map[uint64]NodeIdx)
	for n := range tr.Nodes() {
		loc := Location(tr, n)
		got, ok := NodeAt(tr, loc)
		require.True(t, ok)
		require.Equal(t, n, got)
		require.Equal(t, loc.Level(), NodeLevel(tr, n))
		_, dup := seen[loc.Morton()]
		require.False(t, dup, "two nodes at %s", loc)
		seen[loc.Morton()] = n
	}

	// one past a leaf resolves to the leaf
	for n := range tr.Leaves() {
		loc := Location(tr, n)
		if loc.Level() == MaxLevel[D3]() {
			continue
		}
		deeper := loc.Child(5)
		_, ok := NodeAt(tr, deeper)
		require.False(t, ok)
		got, lvl := NodeOrAncestorAt(tr, deeper)
		require.Equal(t, n, got)
		require.Equal(t, loc.Level(), lvl)
	}
}

func TestFaceNeighborsUniform2D(t *testing.T) {
	tr := uniform2D(t)

	cases := map[NodeIdx][]NodeIdx{
		1:  {none, 2, none, 3},
		6:  {5, 9, none, 8},
		8:  {7, 11, 6, 14},
		11: {8, 12, 9, 17},
		14: {13, 17, 8, 16},
		17: {14, 18, 11, 19},
	}
	for n, want := range cases {
		assert.Equal(t, want, sameLevel(tr, n, Face), "face neighbors of %s", n)
	}
	assert.Equal(t, []NodeIdx{none, none, none, none}, sameLevel(tr, 0, Face))
}

func TestEdgeNeighborsUniform2D(t *testing.T) {
	tr := uniform2D(t)

	cases := map[NodeIdx][]NodeIdx{
		1:  {none, none, none, 4},
		8:  {5, 9, 13, 17},
		11: {6, 10, 14, 18},
	}
	for n, want := range cases {
		assert.Equal(t, want, sameLevel(tr, n, Edge), "edge neighbors of %s", n)
	}
}

func TestAllNeighbors2D(t *testing.T) {
	tr := uniform2D(t)
	tr.Refine(8)  // 21-24
	tr.Refine(17) // 25-28
	require.EqualValues(t, 29, tr.Size())

	cases := map[NodeIdx][]NodeIdx{
		5:  {6, 7, 21},
		6:  {5, 7, 9, 11, 21, 22},
		8:  {5, 6, 7, 9, 11, 13, 14, 25},
		11: {6, 9, 10, 12, 14, 18, 22, 24, 25, 26},
		24: {11, 14, 21, 22, 23, 25},
		25: {11, 14, 24, 26, 27, 28},
		17: {11, 12, 14, 16, 18, 19, 20, 24},
	}
	for n, want := range cases {
		assert.Equal(t, want, AllNeighbors(tr, n), "neighbors of %s", n)
	}
	assert.Empty(t, AllNeighbors(tr, 0))

	tr.Coarsen(2)
	require.EqualValues(t, 25, tr.Size())
	tr.Coarsen(3)
	require.EqualValues(t, 21, tr.Size())
	require.False(t, tr.IsCompact())

	assert.Equal(t, []NodeIdx{3, 6, 8, 17, 18}, AllNeighbors(tr, 2))
	assert.Equal(t, []NodeIdx{2, 7, 8, 17, 19}, AllNeighbors(tr, 3))
	assert.Equal(t, []NodeIdx{2, 5, 7, 21, 22}, AllNeighbors(tr, 6))
	assert.Equal(t, []NodeIdx{5, none, none, 8}, sameLevel(tr, 6, Face))

	// the coarser leaf stands in for the missing same level node
	nb, ok := Neighbor(tr, 6, Face, 1)
	require.True(t, ok)
	assert.EqualValues(t, 2, nb)
	_, ok = Neighbor(tr, 6, Face, 2)
	assert.False(t, ok)
}

func TestNeighbors1D(t *testing.T) {
	tr, err := New[D1](15)
	require.NoError(t, err)
	tr.Refine(0) // 1 2
	tr.Refine(2) // 3 4
	tr.Refine(3) // 5 6

	assert.Equal(t, []NodeIdx{3}, AllNeighbors(tr, 1))
	assert.Equal(t, []NodeIdx{1, 6}, AllNeighbors(tr, 5))
	assert.Equal(t, []NodeIdx{4, 5}, AllNeighbors(tr, 6))
	assert.Equal(t, []NodeIdx{6}, AllNeighbors(tr, 4))
	assert.Equal(t, []NodeIdx{1, 4}, Neighbors(tr, 3, Face))
}

func TestNeighbors3D(t *testing.T) {
	tr, err := New[D3](1 + 8*3)
	require.NoError(t, err)
	tr.Refine(0) // 1-8
	tr.Refine(1) // 9-16

	// 8 is the +x+y+z octant.  It touches 1 at a corner only, so from
	// 8 the finer side shows up as the single child of 1 in that corner.
	assert.Equal(t, []NodeIdx{16}, Neighbors(tr, 8, Corner))

	// 2 is +x of 1: it sees the four +x children of 1 across its -x face
	assert.Equal(t, []NodeIdx{3, 4, 5, 6, 7, 8, 10, 12, 14, 16}, AllNeighbors(tr, 2))
	assert.Equal(t, []NodeIdx{10, 11, 12, 13, 14, 15, 16}, AllNeighbors(tr, 9))
}

// going to a neighbor and back returns to the node, or to its ancestor
// when the neighbor is coarser
func TestNeighborSymmetry(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	tr, err := New[D3](1 + 8*60)
	require.NoError(t, err)
	grow(tr, rnd, 60)

	for n := range tr.Nodes() {
		loc := Location(tr, n)
		for _, m := range Manifolds[D3]() {
			for k := range Stencil[D3](m) {
				nb, ok := Neighbor(tr, n, m, k)
				if !ok {
					continue
				}
				sameLvl := NodeLevel(tr, nb) == loc.Level()
				if m != Face && !sameLvl {
					continue
				}
				back, ok := Neighbor(tr, nb, m, Opposite[D3](m, k))
				require.True(t, ok)
				if sameLvl {
					require.Equal(t, n, back, "%s %s %d", n, m, k)
				} else {
					require.True(t, Location(tr, back).IsAncestorOf(loc),
						"%s %s %d came back to %s", n, m, k, back)
				}
			}
		}
	}
}

func BenchmarkAllNeighbors3D(b *testing.B) {
	tr, _ := New[D3](1 + 8*(1+8+64))
	for l := Level(0); l < 3; l++ {
		var ns []NodeIdx
		for n := range tr.NodesAtLevel(l) {
			ns = append(ns, n)
		}
		for _, n := range ns {
			tr.Refine(n)
		}
	}
	b.ResetTimer()
	for k := 0; k < b.N; k++ {
		AllNeighbors(tr, NodeIdx(100))
	}
}
