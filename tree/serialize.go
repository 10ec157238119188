package tree

import (
	"fmt"

	"github.com/ndtree/ndtree/session"
)

// Field names of a tree in a session file
const (
	FieldSpatialDimension = "spatial_dimension"
	FieldNoTreeNodes      = "no_tree_nodes"
	FieldParents          = "parents"
	FieldFirstChildren    = "first_children"
)

// ToFileUnwritten sets the constants of t on f and maps its arrays, up to
// the high-water mark, without writing anything.  t must not be mutated
// until f is written.
func ToFileUnwritten[D Dimension](f *session.File, t *Tree[D]) {
	hw := t.HighWater()
	f.SetConst(FieldSpatialDimension, int64(rank[D]()))
	f.SetConst(FieldNoTreeNodes, int64(hw))
	session.MapArray(f, FieldParents, t.parents[:t.hwm])
	session.MapArray(f, FieldFirstChildren, t.firstChildren[:hw])
}

// ToFile writes t to f
func ToFile[D Dimension](f *session.File, t *Tree[D]) error {
	ToFileUnwritten(f, t)
	if err := f.Write(); err != nil {
		return fmt.Errorf("tree: write %s: %w", f.Name(), err)
	}
	log.Debugf("wrote %s to %s", t, f.Name())
	return nil
}

// FromFileUnread checks the constants in f and returns a tree whose arrays
// are mapped onto f but not read yet: it is empty until f.ReadArrays()
// runs.  capacity overrides the stored node count when non-zero and must
// not be smaller than it.
func FromFileUnread[D Dimension](f *session.File, capacity uint) (*Tree[D], error) {
	dim, err := f.Const(FieldSpatialDimension)
	if err != nil {
		return nil, err
	}
	if dim != int64(rank[D]()) {
		return nil, errDimensionMismatch(dim, int64(rank[D]()))
	}
	nodes, err := f.Const(FieldNoTreeNodes)
	if err != nil {
		return nil, err
	}
	if nodes <= 0 || !fitsIDSpace[D](uint64(nodes)) {
		return nil, errCorrupt("%s is %d", FieldNoTreeNodes, nodes)
	}
	if capacity == 0 {
		capacity = uint(nodes)
	}
	if uint64(capacity) < uint64(nodes) {
		return nil, errInsufficientCapacity(nodes, capacity)
	}
	groups := noGroupsFor[D](uint(nodes))
	if noNodesIn[D](groups) != uint(nodes) {
		return nil, errCorrupt("%s %d is not a whole number of sibling groups",
			FieldNoTreeNodes, nodes)
	}

	t, err := newEmpty[D](capacity)
	if err != nil {
		return nil, err
	}
	session.MapArray(f, FieldParents, t.parents[:groups])
	session.MapArray(f, FieldFirstChildren, t.firstChildren[:nodes])
	f.OnRead(func() error {
		t.rebuild(groups)
		if err := t.validate(); err != nil {
			return fmt.Errorf("tree: read %s: %w", f.Name(), err)
		}
		log.Debugf("read %s from %s", t, f.Name())
		return nil
	})
	return t, nil
}

// FromFile reads a tree out of f
func FromFile[D Dimension](f *session.File, capacity uint) (*Tree[D], error) {
	t, err := FromFileUnread[D](f, capacity)
	if err != nil {
		return nil, err
	}
	if err := f.ReadArrays(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustFromFile is FromFile for callers that can't go on without the tree
func MustFromFile[D Dimension](f *session.File, capacity uint) *Tree[D] {
	t, err := FromFile[D](f, capacity)
	if err != nil {
		log.Criticalf("%v", err)
		panic(err)
	}
	return t
}

// validate checks that the arrays describe a proper tree: every used
// group hangs off a live node that points back at it, no pointer
// leaves the high-water mark and no node is deeper than MaxLevel.
func (t *Tree[D]) validate() error {
	hw := NodeIdx(t.HighWater())
	if t.hwm > 0 && t.parents[0].valid() {
		return errCorrupt("root group has parent %s", t.parents[0])
	}
	for s := SiblingIdx(1); s < t.hwm; s++ {
		p := t.parents[s]
		if !p.valid() {
			continue
		}
		if p >= hw || !t.InUse(p) {
			return errCorrupt("%s has parent %s which is not in use", s, p)
		}
		if t.firstChildren[p] != firstNodeOf[D](s) {
			return errCorrupt("%s has parent %s whose first child is %s",
				s, p, t.firstChildren[p])
		}
		// groups hanging off a later group are fine as long as they
		// don't loop
		if siblingGroupOf[D](p) >= s {
			if err := t.checkRooted(s); err != nil {
				return err
			}
		}
	}
	for i := NodeIdx(0); i < hw; i++ {
		c := t.firstChildren[i]
		if !c.valid() {
			continue
		}
		if !t.InUse(i) {
			return errCorrupt("free node %s has first child %s", i, c)
		}
		if c >= hw || t.PositionInParent(c) != 0 {
			return errCorrupt("%s has first child %s", i, c)
		}
		if t.parents[siblingGroupOf[D](c)] != i {
			return errCorrupt("%s has first child %s whose parent is %s",
				i, c, t.parents[siblingGroupOf[D](c)])
		}
	}
	for s := SiblingIdx(1); s < t.hwm; s++ {
		if !t.parents[s].valid() {
			continue
		}
		if l := NodeLevel(t, firstNodeOf[D](s)); l > MaxLevel[D]() {
			return errCorrupt("%s is at level %d, deeper than %d", s, l, MaxLevel[D]())
		}
	}
	return nil
}

// checkRooted walks up from group s and fails if it loops before reaching
// the root
func (t *Tree[D]) checkRooted(s SiblingIdx) error {
	seen := 0
	for cur := s; cur != 0; {
		p := t.parents[cur]
		if !p.valid() {
			return errCorrupt("%s hangs off a free group", s)
		}
		cur = siblingGroupOf[D](p)
		seen++
		if seen > int(t.hwm) {
			return errCorrupt("%s is part of a parent cycle", s)
		}
	}
	return nil
}
