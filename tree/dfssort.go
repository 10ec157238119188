package tree

// SwapFunc is told about every pair of nodes whose ids DFSSort exchanges,
// so that data indexed by node id can follow along.
type SwapFunc func(a, b NodeIdx)

// DFSSort renumbers the sibling groups of t in depth first order, with
// the siblings of each group in Morton order.  Afterwards the tree is
// compact: the live nodes are exactly [0, HighWater()).
//
// swap, if not nil, is called for each pair of node ids exchanged.  Run it
// after a batch of refines and coarsens; every id can change.
func DFSSort[D Dimension](t *Tree[D], swap SwapFunc) {
	last := dfsSort(t, 0, swap)
	for s := last + 1; s < t.hwm; s++ {
		if t.parents[s].valid() {
			fatal("dfs_sort", firstNodeOf[D](s),
				errCorrupt("%s still in use past the last sorted group %s", s, last))
		}
	}
	t.rebuild(last + 1)
	log.Debugf("sorted %s", t)
}

// dfsSort puts the groups below s in place, assuming s already is.  It
// returns the last group it placed.
func dfsSort[D Dimension](t *Tree[D], s SiblingIdx, swap SwapFunc) SiblingIdx {
	should := s
	for _, n := range t.Siblings(s) {
		cg, ok := t.ChildrenGroup(n)
		if !ok {
			continue
		}
		should++
		if cg != should {
			t.swap(cg, should)
			if swap != nil {
				fa, fb := firstNodeOf[D](cg), firstNodeOf[D](should)
				for i := NodeIdx(0); i < NodeIdx(nc[D]()); i++ {
					swap(fa+i, fb+i)
				}
			}
		}
		should = dfsSort(t, should, swap)
	}
	return should
}

// IsSorted reports whether t is in the order DFSSort leaves it in
func IsSorted[D Dimension](t *Tree[D]) bool {
	_, ok := isSorted(t, 0)
	return ok
}

func isSorted[D Dimension](t *Tree[D], s SiblingIdx) (SiblingIdx, bool) {
	should := s
	for _, n := range t.Siblings(s) {
		cg, ok := t.ChildrenGroup(n)
		if !ok {
			continue
		}
		should++
		if cg != should {
			return should, false
		}
		if should, ok = isSorted(t, cg); !ok {
			return should, false
		}
	}
	return should, true
}
