package tree

import (
	"fmt"
	"math/bits"
)

// Loc is the location code of a node: the child positions on the path from
// the root down to the node.
//
// The positions are packed as an interleaved Morton index into a single
// uint64, one d-bit digit per level, below a leading 1 bit that marks where
// the code starts.  For a quad-tree:
//
//	root          0b1
//	{2}           0b1_10
//	{2, 1}        0b1_10_01
//	{2, 1, 3}     0b1_10_01_11
//
// Bit i of a digit is the position along axis i, so reading the i-th bit of
// every digit from the top gives the integer coordinate of the node along
// axis i at its level.  That's what makes Shift cheap.
//
// The zero value is not a valid location; start from RootLoc.
type Loc[D Dimension] struct {
	v uint64
}

// MaxLevel is the deepest level a Loc[D] can hold
func MaxLevel[D Dimension]() Level {
	d := rank[D]()
	return Level((64-d)/d - 1)
}

// RootLoc is the location of the root node
func RootLoc[D Dimension]() Loc[D] {
	return Loc[D]{v: 1}
}

// LocFromDigits builds a location from child positions given root first
func LocFromDigits[D Dimension](ps ...ChildPos) Loc[D] {
	l := RootLoc[D]()
	for _, p := range ps {
		l.Push(p)
	}
	return l
}

// LocFromCoords builds the location of the node at level lvl whose integer
// coordinates along each axis are xs.  Coordinates must be in [0, 2^lvl).
func LocFromCoords[D Dimension](xs [3]uint64, lvl Level) Loc[D] {
	d := rank[D]()
	if lvl > MaxLevel[D]() {
		panic(fmt.Sprintf("level %d exceeds max level %d", lvl, MaxLevel[D]()))
	}
	l := RootLoc[D]()
	for i := Level(1); i <= lvl; i++ {
		shift := lvl - i
		var p ChildPos
		for a := uint(0); a < d; a++ {
			p |= ChildPos((xs[a]>>shift)&1) << a
		}
		l.Push(p)
	}
	return l
}

// Valid reports whether l holds a location (the zero value doesn't)
func (l Loc[D]) Valid() bool { return l.v != 0 }

// Morton returns the raw interleaved code, sentinel bit included
func (l Loc[D]) Morton() uint64 { return l.v }

// Level is the number of digits in the code
func (l Loc[D]) Level() Level {
	if !l.Valid() {
		panic("level of invalid location")
	}
	return Level(uint(63-bits.LeadingZeros64(l.v)) / rank[D]())
}

// Push descends to the child at position p
func (l *Loc[D]) Push(p ChildPos) {
	d := rank[D]()
	if uint(p) >= 1<<d {
		panic(fmt.Sprintf("child position %d out of bounds [0, %d)", p, 1<<d))
	}
	if l.Level() >= MaxLevel[D]() {
		panic(fmt.Sprintf("location full: level equals max level %d",
			MaxLevel[D]()))
	}
	l.v = l.v<<d | uint64(p)
}

// Pop ascends to the parent and returns the position the node had in it
func (l *Loc[D]) Pop() ChildPos {
	if l.Level() == 0 {
		panic("cannot pop the root from a location")
	}
	d := rank[D]()
	p := ChildPos(l.v & (1<<d - 1))
	l.v >>= d
	return p
}

// At returns the digit at level lvl, in [1, Level()]
func (l Loc[D]) At(lvl Level) ChildPos {
	cur := l.Level()
	if lvl == 0 || lvl > cur {
		panic(fmt.Sprintf("level %d out of bounds [1, %d]", lvl, cur))
	}
	d := rank[D]()
	return ChildPos((l.v >> (uint(cur-lvl) * d)) & (1<<d - 1))
}

// Digits returns the child positions from the root down to l
func (l Loc[D]) Digits() []ChildPos {
	lvl := l.Level()
	ps := make([]ChildPos, lvl)
	for i := Level(1); i <= lvl; i++ {
		ps[i-1] = l.At(i)
	}
	return ps
}

// Parent returns the location one level up
func (l Loc[D]) Parent() Loc[D] {
	l.Pop()
	return l
}

// Child returns the location of child p
func (l Loc[D]) Child(p ChildPos) Loc[D] {
	l.Push(p)
	return l
}

// Reverse flips the digit order in place (root-to-node becomes
// node-to-root and back).
func (l *Loc[D]) Reverse() {
	r := RootLoc[D]()
	for tmp := *l; tmp.Level() > 0; {
		r.Push(tmp.Pop())
	}
	*l = r
}

// Coords decodes the integer coordinates of l along each axis.
// Unused axes are zero.
func (l Loc[D]) Coords() (xs [3]uint64) {
	d := rank[D]()
	lvl := l.Level()
	for i := Level(1); i <= lvl; i++ {
		p := l.At(i)
		for a := uint(0); a < d; a++ {
			xs[a] |= uint64((p>>a)&1) << (lvl - i)
		}
	}
	return
}

// Shift moves l by off nodes along each axis, staying at the same level.
// It returns false if the result falls outside of the root node.
func (l Loc[D]) Shift(off Offset) (Loc[D], bool) {
	d := rank[D]()
	lvl := l.Level()
	xs := l.Coords()
	limit := int64(1) << lvl
	for a := uint(0); a < d; a++ {
		x := int64(xs[a]) + int64(off[a])
		if x < 0 || x >= limit {
			return Loc[D]{}, false
		}
		xs[a] = uint64(x)
	}
	return LocFromCoords[D](xs, lvl), true
}

// IsAncestorOf reports whether a lies on the path from the root to b
// (a location is its own ancestor).
func (a Loc[D]) IsAncestorOf(b Loc[D]) bool {
	la, lb := a.Level(), b.Level()
	if la > lb {
		return false
	}
	return b.v>>(uint(lb-la)*rank[D]()) == a.v
}

// Compare orders locations lexicographically on their digits: -1 if a comes
// first, 0 if equal, +1 otherwise.  A location sorts before its descendants.
func Compare[D Dimension](a, b Loc[D]) int {
	la, lb := a.Level(), b.Level()
	m := la
	if lb < m {
		m = lb
	}
	d := rank[D]()
	pa := a.v >> (uint(la-m) * d)
	pb := b.v >> (uint(lb-m) * d)
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	case la < lb:
		return -1
	case la > lb:
		return 1
	}
	return 0
}

func (l Loc[D]) String() string {
	if !l.Valid() {
		return "loc{-}"
	}
	return fmt.Sprintf("loc{lvl: %d, pip: %v}", l.Level(), l.Digits())
}
