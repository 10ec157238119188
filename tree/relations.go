package tree

import "fmt"

// NoChildren is the number of children of a refined node in d dimensions
func NoChildren(d uint) uint { return 1 << d }

// NoSiblings is the size of a sibling group in d dimensions
func NoSiblings(d uint) uint { return NoChildren(d) }

// NoNodesSharingFace is how many same-level nodes meet at a face of
// codimension m in d dimensions: 2 at a face, 4 at an edge, 8 at a corner.
func NoNodesSharingFace(d, m uint) uint {
	if m > d {
		return 0
	}
	return 1 << m
}

// NoNodesSharingFaceAtLevel is how many nodes l levels below a node touch
// one of its faces of codimension m.
func NoNodesSharingFaceAtLevel(d, m uint, l Level) uint64 {
	nsf := uint64(NoNodesSharingFace(d, m))
	if nsf == 0 && l == 0 {
		return 0
	}
	return ipow(nsf, uint64(l))
}

// NoFaces is the number of m-dimensional faces of a d-cube, so
// NoFaces(3, 0) is 8 vertices and NoFaces(3, 2) is 6 faces.
func NoFaces(d, m uint) uint {
	if m > d {
		return 0
	}
	return (1 << (d - m)) * binomial(d, m)
}

// NoNodesAtUniformLevel is the number of nodes at level l of a tree that is
// fully refined down to l.
func NoNodesAtUniformLevel(d uint, l Level) uint64 {
	return ipow(uint64(NoChildren(d)), uint64(l))
}

// NoNodesUntilUniformLevel is the number of nodes in a tree that is fully
// refined down to l, all levels included.
func NoNodesUntilUniformLevel(d uint, l Level) uint64 {
	var n uint64
	for i := Level(0); i <= l; i++ {
		n += NoNodesAtUniformLevel(d, i)
	}
	return n
}

// RelativeChildPosition gives, per axis, which side of its parent's center
// the child at p lies on: -1 or +1.
func RelativeChildPosition(d uint, p ChildPos) (o Offset) {
	for a := uint(0); a < d; a++ {
		if p>>a&1 == 1 {
			o[a] = 1
		} else {
			o[a] = -1
		}
	}
	return
}

func ipow(b, e uint64) uint64 {
	r := uint64(1)
	for ; e > 0; e-- {
		r *= b
	}
	return r
}

func binomial(n, k uint) uint {
	if k > n {
		return 0
	}
	r := uint(1)
	for i := uint(1); i <= k; i++ {
		r = r * (n - k + i) / i
	}
	return r
}

// Manifold selects a family of neighbors by the codimension of the
// boundary piece they share with a node.
type Manifold uint8

const (
	// Face neighbors share a (d-1)-dimensional face
	Face Manifold = 1
	// Edge neighbors share a (d-2)-dimensional piece.  In 2D that is a
	// single point: the diagonal neighbors.
	Edge Manifold = 2
	// Corner neighbors share a single point in 3D
	Corner Manifold = 3
)

func (m Manifold) String() string {
	switch m {
	case Face:
		return "face"
	case Edge:
		return "edge"
	case Corner:
		return "corner"
	}
	return fmt.Sprintf("manifold(%d)", uint8(m))
}

// Codim is the codimension of the shared piece
func (m Manifold) Codim() uint { return uint(m) }

// Manifolds lists the manifolds that exist in D, faces first
func Manifolds[D Dimension]() []Manifold {
	ms := []Manifold{Face, Edge, Corner}
	return ms[:rank[D]()]
}

// neighbor offset tables, indexed by [d-1][codim-1]
var stencils = [3][3][]Offset{
	{
		{{-1}, {1}},
		nil,
		nil,
	},
	{
		{{-1, 0}, {1, 0}, {0, -1}, {0, 1}},
		{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}},
		nil,
	},
	{
		{
			{-1, 0, 0}, {1, 0, 0},
			{0, -1, 0}, {0, 1, 0},
			{0, 0, -1}, {0, 0, 1},
		},
		{
			{-1, -1, 0}, {1, -1, 0}, {-1, 1, 0}, {1, 1, 0},
			{-1, 0, -1}, {1, 0, -1}, {0, -1, -1}, {0, 1, -1},
			{-1, 0, 1}, {1, 0, 1}, {0, -1, 1}, {0, 1, 1},
		},
		{
			{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {1, 1, -1},
			{-1, -1, 1}, {1, -1, 1}, {-1, 1, 1}, {1, 1, 1},
		},
	},
}

// Stencil returns the ordered neighbor offsets of manifold m in D.
// It's empty when m doesn't exist in D.  Don't modify the result.
func Stencil[D Dimension](m Manifold) []Offset {
	d := rank[D]()
	if m == 0 || uint(m) > d {
		return nil
	}
	return stencils[d-1][m-1]
}

// NoNeighbors is the number of neighbor positions across manifold m
func NoNeighbors[D Dimension](m Manifold) int {
	return len(Stencil[D](m))
}

// NeighborOffset returns offset i of manifold m
func NeighborOffset[D Dimension](m Manifold, i int) Offset {
	s := Stencil[D](m)
	if i < 0 || i >= len(s) {
		panic(fmt.Sprintf("%s neighbor %d out of bounds [0, %d)", m, i, len(s)))
	}
	return s[i]
}

// Opposite returns the index of the neighbor position facing position i
// from the other side: the one whose offset is -offset(i).
func Opposite[D Dimension](m Manifold, i int) int {
	o := NeighborOffset[D](m, i)
	for j, p := range Stencil[D](m) {
		if p[0] == -o[0] && p[1] == -o[1] && p[2] == -o[2] {
			return j
		}
	}
	panic(fmt.Sprintf("%s stencil has no opposite of %v", m, o))
}

// ChildrenSharingFace lists the child positions of the neighbor at
// position i that touch the node: those lying on the neighbor's side
// facing back towards the node.
func ChildrenSharingFace[D Dimension](m Manifold, i int) []ChildPos {
	d := rank[D]()
	o := NeighborOffset[D](m, i)
	ps := make([]ChildPos, 0, 1<<(d-m.Codim()))
	for p := ChildPos(0); uint(p) < NoChildren(d); p++ {
		touches := true
		for a := uint(0); a < d; a++ {
			if o[a] == 0 {
				continue
			}
			want := ChildPos(0)
			if o[a] < 0 {
				want = 1
			}
			if p>>a&1 != want {
				touches = false
				break
			}
		}
		if touches {
			ps = append(ps, p)
		}
	}
	return ps
}

// MaxNoNeighbors bounds the size of a leaf's neighbor set in a balanced
// tree: every neighbor position holds at most the finer children touching
// the node.
func MaxNoNeighbors[D Dimension]() int {
	d := rank[D]()
	n := 0
	for _, m := range Manifolds[D]() {
		n += NoNeighbors[D](m) * (1 << (d - m.Codim()))
	}
	return n
}
