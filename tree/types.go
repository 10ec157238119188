package tree

import (
	"fmt"
	"math"
)

// Dimension is the spatial dimension of a tree, given as a type so that a
// Tree[D2] and a Tree[D3] can't be mixed up.
type Dimension interface {
	D1 | D2 | D3
	Rank() uint
}

// D1 is a binary tree (line segments)
type D1 struct{}

// D2 is a quad-tree
type D2 struct{}

// D3 is an oct-tree
type D3 struct{}

func (D1) Rank() uint { return 1 }
func (D2) Rank() uint { return 2 }
func (D3) Rank() uint { return 3 }

// rank returns the spatial dimension of D
func rank[D Dimension]() uint {
	var d D
	return d.Rank()
}

// NodeIdx is the index of a node within the arena of a tree.
// The root is always node 0.
type NodeIdx uint32

// SiblingIdx is the index of a sibling group: the 2^d nodes created by a
// single refine.  Group 0 only contains the root.
type SiblingIdx uint32

// Level is the distance from a node to the root.  The root is at level 0.
type Level uint8

// ChildPos is the position of a node within its sibling group, in
// [0, 2^d).  Bit i of the position is set when the child lies on the
// positive side of its parent's center along axis i.
type ChildPos uint8

// noNode and noSiblings are what the arrays hold for "nothing here".
// They never leave the package: every lookup that can come up empty returns
// an (idx, ok) pair instead.
const (
	noNode     = NodeIdx(math.MaxUint32)
	noSiblings = SiblingIdx(math.MaxUint32)
)

func (n NodeIdx) valid() bool { return n != noNode }

func (s SiblingIdx) valid() bool { return s != noSiblings }

func (n NodeIdx) String() string {
	if !n.valid() {
		return "n:-"
	}
	return fmt.Sprintf("n:%d", uint32(n))
}

func (s SiblingIdx) String() string {
	if !s.valid() {
		return "sg:-"
	}
	return fmt.Sprintf("sg:%d", uint32(s))
}

// Offset is a signed displacement in units of node length at the level
// of the node it's applied to.  Only the first Rank() entries are used.
type Offset [3]int
